package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"care-portal-server/internal/config"
	"care-portal-server/internal/docview"
	"care-portal-server/internal/middleware"
	"care-portal-server/internal/models"
	"care-portal-server/internal/presence"
	"care-portal-server/internal/store"
	"care-portal-server/internal/storage"
	"care-portal-server/internal/utils"
)

// DocumentHandler handles the document browser: folders, uploads, moves,
// shares and signed downloads.
type DocumentHandler struct {
	Documents     *store.DocumentStore
	Users         *store.UserStore
	Files         *storage.FileStore
	Notifications Notifier
	Hub           RealtimePusher
	Cfg           *config.Config
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(db *gorm.DB, files *storage.FileStore, hub *presence.Hub, cfg *config.Config) *DocumentHandler {
	return &DocumentHandler{
		Documents:     store.NewDocumentStore(db),
		Users:         store.NewUserStore(db),
		Files:         files,
		Notifications: store.NewNotificationStore(db),
		Hub:           hub,
		Cfg:           cfg,
	}
}

// Browse lists one level of the document tree. At the root the response also
// carries the synthetic per-sender folders for documents shared with the
// caller; leftover materialized share folders are swept before listing.
func (h *DocumentHandler) Browse(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var folderID *string
	if id := c.Query("folderId"); id != "" {
		if _, err := h.Documents.GetFolder(id, userID); err != nil {
			utils.StoreError(c, err)
			return
		}
		folderID = &id
	}

	if folderID == nil {
		h.Documents.CleanupLegacySharedFolders(userID)
	}

	folders, documents, err := h.Documents.ListFolderContents(userID, folderID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	payload := gin.H{
		"folders":   folders,
		"documents": documents,
	}
	if folderID == nil {
		shares, err := h.Documents.ListSharesForRecipient(userID)
		if err != nil {
			utils.StoreError(c, err)
			return
		}
		payload["sharedFolders"] = docview.SyntheticFolders(shares)
	}

	utils.Success(c, "Folder contents fetched", payload)
}

// CreateFolderRequest represents the request body for creating a folder.
type CreateFolderRequest struct {
	Name     string  `json:"name" binding:"required,max=255"`
	ParentID *string `json:"parentId"`
}

// CreateFolder creates a folder under the caller's tree.
func (h *DocumentHandler) CreateFolder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req CreateFolderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.ParentID != nil {
		if _, err := h.Documents.GetFolder(*req.ParentID, userID); err != nil {
			utils.StoreError(c, err)
			return
		}
	}

	folder := models.Folder{
		OwnerID:  userID,
		ParentID: req.ParentID,
		Name:     req.Name,
	}
	if err := h.Documents.CreateFolder(&folder); err != nil {
		utils.StoreError(c, err)
		return
	}

	utils.Created(c, "Folder created", folder)
}

// DeleteFolder removes an empty folder owned by the caller.
func (h *DocumentHandler) DeleteFolder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Documents.DeleteFolder(c.Param("id"), userID); err != nil {
		utils.StoreError(c, err)
		return
	}
	utils.Success(c, "Folder deleted", nil)
}

// Upload stores a multipart file and its metadata row. Form fields: file
// (required), title, category, folderId.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "A file is required")
		return
	}
	if fileHeader.Size > h.Cfg.Storage.MaxUploadSize {
		utils.BadRequest(c, "File exceeds the maximum upload size")
		return
	}

	var folderID *string
	if id := c.PostForm("folderId"); id != "" {
		if _, err := h.Documents.GetFolder(id, userID); err != nil {
			utils.StoreError(c, err)
			return
		}
		folderID = &id
	}

	fileName := filepath.Base(fileHeader.Filename)
	title := c.PostForm("title")
	if title == "" {
		title = fileName
	}
	category := models.DocumentCategory(c.DefaultPostForm("category", string(models.CategoryOther)))

	fileType := fileHeader.Header.Get("Content-Type")
	if fileType == "" {
		fileType = mime.TypeByExtension(filepath.Ext(fileName))
	}

	doc := models.Document{
		OwnerID:  userID,
		FolderID: folderID,
		Category: category,
		Title:    title,
		FileName: fileName,
		FileType: fileType,
	}
	if err := h.Documents.CreateDocument(&doc); err != nil {
		utils.StoreError(c, err)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.Documents.DeleteDocument(doc.ID, userID)
		utils.InternalServerError(c, "Failed to read uploaded file")
		return
	}
	defer src.Close()

	size, err := h.Files.Save(userID, doc.ID, fileName, src)
	if err != nil {
		h.Documents.DeleteDocument(doc.ID, userID)
		utils.InternalServerError(c, "Failed to store file")
		return
	}
	doc.FileSize = size
	if err := h.Documents.UpdateFileSize(doc.ID, size); err != nil {
		log.Warn().Err(err).Str("documentID", doc.ID).Msg("failed to record file size")
	}

	utils.Created(c, "Document uploaded", doc)
}

// MoveRequest represents the request body for moving a document.
type MoveRequest struct {
	FolderID *string `json:"folderId"`
}

// Move relocates a document to another folder, or to the root when folderId
// is null. Synthetic shared folders are not movable targets.
func (h *DocumentHandler) Move(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.FolderID != nil {
		if _, err := h.Documents.GetFolder(*req.FolderID, userID); err != nil {
			utils.StoreError(c, err)
			return
		}
	}

	if err := h.Documents.MoveDocument(c.Param("id"), userID, req.FolderID); err != nil {
		utils.StoreError(c, err)
		return
	}
	utils.Success(c, "Document moved", nil)
}

// Delete removes a document and its stored file.
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	docID := c.Param("id")

	if err := h.Documents.DeleteDocument(docID, userID); err != nil {
		utils.StoreError(c, err)
		return
	}
	if err := h.Files.Remove(userID, docID); err != nil {
		log.Warn().Err(err).Str("documentID", docID).Msg("failed to remove stored file")
	}
	utils.Success(c, "Document deleted", nil)
}

// ShareRequest represents the request body for sharing a document.
type ShareRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
}

// Share grants another user read access to a document and notifies them.
func (h *DocumentHandler) Share(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req ShareRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.RecipientID == userID {
		utils.BadRequest(c, "You cannot share a document with yourself")
		return
	}
	if _, err := h.Users.GetByID(req.RecipientID); err != nil {
		utils.StoreError(c, err)
		return
	}

	share, err := h.Documents.ShareDocument(c.Param("id"), userID, req.RecipientID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	sender, err := h.Users.GetByID(userID)
	senderName := "?"
	if err == nil {
		senderName = sender.FullName()
	}
	h.Notifications.Notify(req.RecipientID, models.NotifyDocumentShared,
		"Document shared with you",
		senderName+" shared a document with you",
		"documents", share.DocumentID)
	if h.Hub != nil {
		h.Hub.SendToUser(req.RecipientID, presence.Event{
			Type: presence.EventNotification,
			Data: gin.H{
				"type":       models.NotifyDocumentShared,
				"documentId": share.DocumentID,
			},
		})
	}

	utils.Created(c, "Document shared", share)
}

// DownloadLink issues a short-lived signed download URL for a document the
// caller may read.
func (h *DocumentHandler) DownloadLink(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	doc, err := h.Documents.GetDocument(c.Param("id"))
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	ok, err := h.Documents.CanRead(doc, userID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	if !ok {
		utils.Forbidden(c, "You do not have access to this document")
		return
	}

	token, expiresAt, err := h.Files.IssueToken(c.Request.Context(), doc.OwnerID, doc.ID, doc.FileName, doc.FileType)
	if err != nil {
		utils.InternalServerError(c, "Failed to issue download link")
		return
	}

	utils.Success(c, "Download link issued", gin.H{
		"url":       h.Cfg.AppURL + "/api/v1/documents/download/" + token,
		"expiresAt": expiresAt,
	})
}

// Download streams the file behind a signed token. No auth: the token is the
// credential.
func (h *DocumentHandler) Download(c *gin.Context) {
	reader, fileName, fileType, err := h.Files.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidToken) || errors.Is(err, storage.ErrFileNotFound) {
			utils.NotFound(c, "Download link is invalid or expired")
			return
		}
		utils.InternalServerError(c, "Failed to open file")
		return
	}
	defer reader.Close()

	if fileType == "" {
		fileType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Header("Content-Type", fileType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Warn().Err(err).Msg("download stream interrupted")
	}
}
