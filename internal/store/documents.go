package store

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"care-portal-server/internal/models"
)

// LegacySharedFolderPrefix marks folders that older releases materialized for
// shared documents. Shared views are now computed from share records, so any
// folder with this prefix is a migration artifact and gets cleaned up on load.
const LegacySharedFolderPrefix = "Compartido de "

// DocumentStore is the data access layer for documents, folders and shares.
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// GetDocument fetches one document by id.
func (s *DocumentStore) GetDocument(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("document not found")
		}
		return nil, InternalError("failed to fetch document", err)
	}
	return &doc, nil
}

// CreateDocument inserts a document row.
func (s *DocumentStore) CreateDocument(doc *models.Document) error {
	if err := s.db.Create(doc).Error; err != nil {
		return InternalError("failed to create document", err)
	}
	return nil
}

// UpdateFileSize records the stored size after the file lands on disk.
func (s *DocumentStore) UpdateFileSize(id string, size int64) error {
	if err := s.db.Model(&models.Document{}).Where("id = ?", id).Update("file_size", size).Error; err != nil {
		return InternalError("failed to update file size", err)
	}
	return nil
}

// DeleteDocument removes a document owned by ownerID. A zero-affected-row
// result is reported as a failure, never a silent success.
func (s *DocumentStore) DeleteDocument(id, ownerID string) error {
	res := s.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Document{})
	if res.Error != nil {
		return InternalError("failed to delete document", res.Error)
	}
	if res.RowsAffected == 0 {
		return ForbiddenError("document not found or not owned by you")
	}
	return nil
}

// MoveDocument sets the document's folder. Only the owner may move a
// document; the ownership check rides on the WHERE clause so a policy
// rejection surfaces as zero rows affected.
func (s *DocumentStore) MoveDocument(id, actorID string, folderID *string) error {
	res := s.db.Model(&models.Document{}).
		Where("id = ? AND owner_id = ?", id, actorID).
		Update("folder_id", folderID)
	if res.Error != nil {
		return InternalError("failed to move document", res.Error)
	}
	if res.RowsAffected == 0 {
		return ForbiddenError("document not found or not owned by you")
	}
	return nil
}

// ListFolderContents returns the subfolders and documents directly under
// folderID (nil means the root) for the given owner.
func (s *DocumentStore) ListFolderContents(ownerID string, folderID *string) ([]models.Folder, []models.Document, error) {
	folders := []models.Folder{}
	documents := []models.Document{}

	folderQuery := s.db.Where("owner_id = ?", ownerID).Order("name asc")
	docQuery := s.db.Where("owner_id = ?", ownerID).Order("created_at desc")
	if folderID == nil {
		folderQuery = folderQuery.Where("parent_id IS NULL")
		docQuery = docQuery.Where("folder_id IS NULL")
	} else {
		folderQuery = folderQuery.Where("parent_id = ?", *folderID)
		docQuery = docQuery.Where("folder_id = ?", *folderID)
	}

	if err := folderQuery.Find(&folders).Error; err != nil {
		return nil, nil, InternalError("failed to list folders", err)
	}
	if err := docQuery.Find(&documents).Error; err != nil {
		return nil, nil, InternalError("failed to list documents", err)
	}
	return folders, documents, nil
}

// GetFolder fetches one folder by id, scoped to its owner.
func (s *DocumentStore) GetFolder(id, ownerID string) (*models.Folder, error) {
	var folder models.Folder
	if err := s.db.First(&folder, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("folder not found")
		}
		return nil, InternalError("failed to fetch folder", err)
	}
	return &folder, nil
}

// CreateFolder inserts a folder row.
func (s *DocumentStore) CreateFolder(folder *models.Folder) error {
	if strings.HasPrefix(folder.Name, LegacySharedFolderPrefix) {
		return ValidationError("folder name is reserved")
	}
	if err := s.db.Create(folder).Error; err != nil {
		return InternalError("failed to create folder", err)
	}
	return nil
}

// DeleteFolder removes an empty folder owned by ownerID.
func (s *DocumentStore) DeleteFolder(id, ownerID string) error {
	var count int64
	if err := s.db.Model(&models.Document{}).Where("folder_id = ?", id).Count(&count).Error; err != nil {
		return InternalError("failed to check folder contents", err)
	}
	if count > 0 {
		return ConflictError("folder is not empty")
	}

	res := s.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Folder{})
	if res.Error != nil {
		return InternalError("failed to delete folder", res.Error)
	}
	if res.RowsAffected == 0 {
		return ForbiddenError("folder not found or not owned by you")
	}
	return nil
}

// CleanupLegacySharedFolders silently deletes materialized shared folders
// left behind by the old sharing implementation. Documents inside them fall
// back to the root. Failures are logged, not surfaced; the cleanup retries on
// the next load.
func (s *DocumentStore) CleanupLegacySharedFolders(ownerID string) {
	var legacy []models.Folder
	if err := s.db.Where("owner_id = ? AND name LIKE ?", ownerID, LegacySharedFolderPrefix+"%").
		Find(&legacy).Error; err != nil {
		log.Warn().Err(err).Msg("legacy shared folder lookup failed")
		return
	}

	for _, folder := range legacy {
		if err := s.db.Model(&models.Document{}).
			Where("folder_id = ?", folder.ID).
			Update("folder_id", nil).Error; err != nil {
			log.Warn().Err(err).Msg("failed to detach documents from legacy shared folder")
			continue
		}
		if err := s.db.Delete(&models.Folder{}, "id = ?", folder.ID).Error; err != nil {
			log.Warn().Err(err).Msg("failed to delete legacy shared folder")
		}
	}
}

// ShareDocument grants recipientID access to a document owned by senderID.
func (s *DocumentStore) ShareDocument(documentID, senderID, recipientID string) (*models.DocumentShare, error) {
	doc, err := s.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != senderID {
		return nil, ForbiddenError("only the owner can share a document")
	}

	var existing models.DocumentShare
	err = s.db.First(&existing, "document_id = ? AND recipient_id = ?", documentID, recipientID).Error
	if err == nil {
		return nil, ConflictError("document is already shared with this user")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, InternalError("failed to check existing share", err)
	}

	share := models.DocumentShare{
		DocumentID:  documentID,
		RecipientID: recipientID,
		SenderID:    senderID,
	}
	if err := s.db.Create(&share).Error; err != nil {
		return nil, InternalError("failed to share document", err)
	}
	return &share, nil
}

// ListSharesForRecipient returns every share targeting the user, with the
// document and sender profile embedded for the shared-folder view.
func (s *DocumentStore) ListSharesForRecipient(recipientID string) ([]models.DocumentShare, error) {
	shares := []models.DocumentShare{}
	if err := s.db.Preload("Document").Preload("Sender").
		Where("recipient_id = ?", recipientID).
		Order("created_at desc").
		Find(&shares).Error; err != nil {
		return nil, InternalError("failed to list shared documents", err)
	}
	return shares, nil
}

// CanRead reports whether userID may read the document, either as owner or as
// a share recipient.
func (s *DocumentStore) CanRead(doc *models.Document, userID string) (bool, error) {
	if doc.OwnerID == userID {
		return true, nil
	}
	var count int64
	if err := s.db.Model(&models.DocumentShare{}).
		Where("document_id = ? AND recipient_id = ?", doc.ID, userID).
		Count(&count).Error; err != nil {
		return false, InternalError("failed to check document access", err)
	}
	return count > 0, nil
}
