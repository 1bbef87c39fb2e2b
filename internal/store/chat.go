package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"care-portal-server/internal/models"
)

// ChatStore is the data access layer for conversations and messages.
type ChatStore struct {
	db *gorm.DB
}

// NewChatStore creates a new ChatStore.
func NewChatStore(db *gorm.DB) *ChatStore {
	return &ChatStore{db: db}
}

// FindOrCreateConversation returns the conversation between a patient and a
// doctor, creating it on first contact. Creating a conversation also upserts
// a chat-sourced care link between the two parties.
func (s *ChatStore) FindOrCreateConversation(patientID, doctorID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.Preload("Patient").Preload("Doctor").
		First(&conversation, "patient_id = ? AND doctor_id = ?", patientID, doctorID).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, InternalError("failed to look up conversation", err)
	}

	conversation = models.Conversation{PatientID: patientID, DoctorID: doctorID}
	if err := s.db.Create(&conversation).Error; err != nil {
		return nil, InternalError("failed to create conversation", err)
	}

	s.upsertCareLink(patientID, doctorID)

	if err := s.db.Preload("Patient").Preload("Doctor").
		First(&conversation, "id = ?", conversation.ID).Error; err != nil {
		return nil, InternalError("failed to reload conversation", err)
	}
	return &conversation, nil
}

// upsertCareLink links the pair with a chat source if no link exists yet.
// Best effort: a failed link never blocks the conversation.
func (s *ChatStore) upsertCareLink(patientID, doctorID string) {
	var link models.CareLink
	err := s.db.First(&link, "patient_id = ? AND doctor_id = ?", patientID, doctorID).Error
	if err == nil {
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		link = models.CareLink{PatientID: patientID, DoctorID: doctorID, Source: models.CareLinkFromChat}
		s.db.Create(&link)
	}
}

// GetConversation fetches one conversation by id.
func (s *ChatStore) GetConversation(id string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := s.db.Preload("Patient").Preload("Doctor").First(&conversation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("conversation not found")
		}
		return nil, InternalError("failed to fetch conversation", err)
	}
	return &conversation, nil
}

// ConversationPreview is a conversation plus its unread count for list views.
type ConversationPreview struct {
	Conversation models.Conversation `json:"conversation"`
	UnreadCount  int64               `json:"unreadCount"`
}

// ListConversations returns the user's conversations ordered by most recent
// activity, with unread counts.
func (s *ChatStore) ListConversations(userID string) ([]ConversationPreview, error) {
	conversations := []models.Conversation{}
	if err := s.db.Preload("Patient").Preload("Doctor").
		Where("patient_id = ? OR doctor_id = ?", userID, userID).
		Order("last_message_at desc").
		Find(&conversations).Error; err != nil {
		return nil, InternalError("failed to list conversations", err)
	}

	previews := make([]ConversationPreview, 0, len(conversations))
	for _, conversation := range conversations {
		var unread int64
		s.db.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversation.ID, userID).
			Count(&unread)
		previews = append(previews, ConversationPreview{Conversation: conversation, UnreadCount: unread})
	}
	return previews, nil
}

// ListMessages returns a conversation's messages ascending by creation time.
func (s *ChatStore) ListMessages(conversationID string) ([]models.Message, error) {
	messages := []models.Message{}
	if err := s.db.Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		return nil, InternalError("failed to list messages", err)
	}
	return messages, nil
}

// SendMessage appends a message and refreshes the conversation's denormalized
// last-message fields in the same transaction.
func (s *ChatStore) SendMessage(conversationID, senderID, content string) (*models.Message, error) {
	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Updates(map[string]interface{}{
				"last_message_at":   now,
				"last_message_text": content,
			}).Error
	})
	if err != nil {
		return nil, InternalError("failed to send message", err)
	}

	if err := s.db.Preload("Sender").First(&message, "id = ?", message.ID).Error; err != nil {
		return nil, InternalError("failed to reload message", err)
	}
	return &message, nil
}

// MarkRead stamps every unread message sent by the counterpart as read.
func (s *ChatStore) MarkRead(conversationID, readerID string) error {
	now := time.Now()
	if err := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", now).Error; err != nil {
		return InternalError("failed to mark messages read", err)
	}
	return nil
}

// ListCareLinksForDoctor returns the patients linked to a doctor.
func (s *ChatStore) ListCareLinksForDoctor(doctorID string) ([]models.CareLink, error) {
	links := []models.CareLink{}
	if err := s.db.Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Find(&links).Error; err != nil {
		return nil, InternalError("failed to list care links", err)
	}
	return links, nil
}
