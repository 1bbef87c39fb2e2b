package docview

import (
	"testing"

	"care-portal-server/internal/models"
)

func share(senderID, senderName, docID string) models.DocumentShare {
	return models.DocumentShare{
		SenderID: senderID,
		Sender:   models.User{BaseModel: models.BaseModel{ID: senderID}, FirstName: senderName},
		Document: models.Document{BaseModel: models.BaseModel{ID: docID}},
	}
}

func TestSyntheticFolders_GroupsBySender(t *testing.T) {
	shares := []models.DocumentShare{
		share("u1", "Zoe", "d1"),
		share("u2", "Ana", "d2"),
		share("u1", "Zoe", "d3"),
	}

	folders := SyntheticFolders(shares)
	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(folders))
	}

	// sorted by sender name
	if folders[0].SenderName != "Ana" || folders[1].SenderName != "Zoe" {
		t.Fatalf("bad order: %s, %s", folders[0].SenderName, folders[1].SenderName)
	}
	if len(folders[1].Documents) != 2 {
		t.Fatalf("Zoe should hold 2 documents, got %d", len(folders[1].Documents))
	}
}

func TestSyntheticFolders_Empty(t *testing.T) {
	if got := SyntheticFolders(nil); len(got) != 0 {
		t.Fatalf("expected no folders, got %d", len(got))
	}
}

func TestSyntheticFolders_NamelessSenderFallsBack(t *testing.T) {
	folders := SyntheticFolders([]models.DocumentShare{share("u9", "", "d9")})
	if len(folders) != 1 {
		t.Fatalf("expected 1 folder, got %d", len(folders))
	}
	if folders[0].SenderName != "?" {
		t.Fatalf("expected fallback name ?, got %q", folders[0].SenderName)
	}
}
