// Package docview computes the virtual pieces of the document browser that
// are never persisted: per-sender folders grouping the documents shared with
// a user. Keeping this a pure function over share records avoids merging
// synthetic and real folders in storage.
package docview

import (
	"sort"

	"care-portal-server/internal/models"
)

// SyntheticFolder groups the documents one sender has shared with the user.
// Synthetic folders appear at the root of the browser only and cannot
// receive moves.
type SyntheticFolder struct {
	SenderID   string            `json:"senderId"`
	SenderName string            `json:"senderName"`
	Documents  []models.Document `json:"documents"`
}

// SyntheticFolders builds one virtual folder per distinct sender from the
// user's share records, documents newest-share-first within each folder and
// folders sorted by sender name.
func SyntheticFolders(shares []models.DocumentShare) []SyntheticFolder {
	bySender := make(map[string]*SyntheticFolder)
	order := []string{}

	for _, share := range shares {
		folder, ok := bySender[share.SenderID]
		if !ok {
			folder = &SyntheticFolder{
				SenderID:   share.SenderID,
				SenderName: share.Sender.FullName(),
			}
			bySender[share.SenderID] = folder
			order = append(order, share.SenderID)
		}
		folder.Documents = append(folder.Documents, share.Document)
	}

	folders := make([]SyntheticFolder, 0, len(order))
	for _, id := range order {
		folders = append(folders, *bySender[id])
	}
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].SenderName == folders[j].SenderName {
			return folders[i].SenderID < folders[j].SenderID
		}
		return folders[i].SenderName < folders[j].SenderName
	})
	return folders
}
