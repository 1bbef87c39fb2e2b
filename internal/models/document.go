package models

// DocumentCategory classifies an uploaded document
type DocumentCategory string

const (
	CategoryLabResult    DocumentCategory = "lab_result"
	CategoryPrescription DocumentCategory = "prescription"
	CategoryImaging      DocumentCategory = "imaging"
	CategoryReferral     DocumentCategory = "referral"
	CategoryInsurance    DocumentCategory = "insurance"
	CategoryOther        DocumentCategory = "other"
)

// Folder is a user-owned container for documents. Folders nest through
// ParentID; the tree is shallow and navigated by listing one level at a time.
type Folder struct {
	BaseModel
	OwnerID  string  `gorm:"size:36;index" json:"ownerId"`
	ParentID *string `gorm:"size:36;index" json:"parentId,omitempty"`
	Name     string  `gorm:"size:255;not null" json:"name"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// Document represents a stored file with metadata. The file contents live in
// the file store under {ownerId}/{documentId}/{fileName}.
type Document struct {
	BaseModel
	OwnerID  string           `gorm:"size:36;index" json:"ownerId"`
	FolderID *string          `gorm:"size:36;index" json:"folderId,omitempty"`
	Category DocumentCategory `gorm:"size:30;default:'other'" json:"category"`
	Title    string           `gorm:"size:255;not null" json:"title"`
	FileName string           `gorm:"size:255;not null" json:"fileName"`
	FileType string           `gorm:"size:100" json:"fileType"`
	FileSize int64            `json:"fileSize"`

	Owner  User            `gorm:"foreignKey:OwnerID" json:"-"`
	Folder *Folder         `gorm:"foreignKey:FolderID" json:"-"`
	Shares []DocumentShare `gorm:"foreignKey:DocumentID" json:"shares,omitempty"`
}

// DocumentShare grants a recipient read access to a document. SenderID is
// denormalized from the document owner so shared views can group by sender
// without joining through documents.
type DocumentShare struct {
	BaseModel
	DocumentID  string `gorm:"size:36;index;uniqueIndex:idx_doc_recipient" json:"documentId"`
	RecipientID string `gorm:"size:36;index;uniqueIndex:idx_doc_recipient" json:"recipientId"`
	SenderID    string `gorm:"size:36;index" json:"senderId"`

	Document  Document `gorm:"foreignKey:DocumentID" json:"document"`
	Recipient User     `gorm:"foreignKey:RecipientID" json:"-"`
	Sender    User     `gorm:"foreignKey:SenderID" json:"sender"`
}
