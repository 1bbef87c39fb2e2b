package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"care-portal-server/internal/middleware"
	"care-portal-server/internal/models"
	"care-portal-server/internal/presence"
	"care-portal-server/internal/store"
	"care-portal-server/internal/utils"
)

// MessageHandler handles patient-doctor conversations.
type MessageHandler struct {
	Chat          *store.ChatStore
	Users         *store.UserStore
	Notifications Notifier
	Hub           *presence.Hub
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB, hub *presence.Hub) *MessageHandler {
	return &MessageHandler{
		Chat:          store.NewChatStore(db),
		Users:         store.NewUserStore(db),
		Notifications: store.NewNotificationStore(db),
		Hub:           hub,
	}
}

// StartConversationRequest represents the request body for opening a chat.
type StartConversationRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// StartConversation finds or creates the conversation between the caller and
// the given counterpart. The pair must be one patient and one doctor.
func (h *MessageHandler) StartConversation(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var req StartConversationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.UserID == userID {
		utils.BadRequest(c, "You cannot start a conversation with yourself")
		return
	}

	other, err := h.Users.GetByID(req.UserID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	var patientID, doctorID string
	switch {
	case role == models.RolePatient && other.Role == models.RoleDoctor:
		patientID, doctorID = userID, other.ID
	case role == models.RoleDoctor && other.Role == models.RolePatient:
		patientID, doctorID = other.ID, userID
	default:
		utils.BadRequest(c, "Conversations connect a patient with a doctor")
		return
	}

	conversation, err := h.Chat.FindOrCreateConversation(patientID, doctorID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	utils.Success(c, "Conversation ready", conversation)
}

// ListConversations returns the caller's conversations with unread counts,
// most recent first. Each entry also reports whether the counterpart is
// online and when they were last seen.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	previews, err := h.Chat.ListConversations(userID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	type entry struct {
		store.ConversationPreview
		CounterpartOnline   bool        `json:"counterpartOnline"`
		CounterpartLastSeen interface{} `json:"counterpartLastSeen,omitempty"`
	}
	entries := make([]entry, 0, len(previews))
	for _, preview := range previews {
		counterpart := preview.Conversation.Counterpart(userID)
		e := entry{ConversationPreview: preview}
		if h.Hub != nil {
			e.CounterpartOnline = h.Hub.IsOnline(counterpart)
		}
		if !e.CounterpartOnline {
			if lastSeen, err := h.Users.LastSeen(counterpart); err == nil && lastSeen != nil {
				e.CounterpartLastSeen = lastSeen
			}
		}
		entries = append(entries, e)
	}

	utils.Success(c, "Conversations fetched", entries)
}

// ListMessages returns a conversation's messages. Participants only.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	conversation, err := h.Chat.GetConversation(c.Param("id"))
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	if !conversation.HasParticipant(userID) {
		utils.Forbidden(c, "You are not a participant of this conversation")
		return
	}

	messages, err := h.Chat.ListMessages(conversation.ID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	utils.Success(c, "Messages fetched", messages)
}

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// SendMessage appends a message to a conversation. The counterpart gets a
// realtime push when online and a notification either way.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	conversation, err := h.Chat.GetConversation(c.Param("id"))
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	if !conversation.HasParticipant(userID) {
		utils.Forbidden(c, "You are not a participant of this conversation")
		return
	}

	message, err := h.Chat.SendMessage(conversation.ID, userID, req.Content)
	if err != nil {
		utils.StoreError(c, err)
		return
	}

	counterpart := conversation.Counterpart(userID)
	senderName := message.Sender.FullName()
	h.Notifications.Notify(counterpart, models.NotifyNewMessage,
		"New message from "+senderName,
		truncate(req.Content, 120),
		"messages", message.ID)
	if h.Hub != nil {
		h.Hub.SendToUser(counterpart, presence.Event{
			Type: presence.EventNewMessage,
			Data: message,
		})
	}

	utils.Created(c, "Message sent", message)
}

// MarkRead stamps the counterpart's messages in the conversation as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	conversation, err := h.Chat.GetConversation(c.Param("id"))
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	if !conversation.HasParticipant(userID) {
		utils.Forbidden(c, "You are not a participant of this conversation")
		return
	}

	if err := h.Chat.MarkRead(conversation.ID, userID); err != nil {
		utils.StoreError(c, err)
		return
	}
	utils.Success(c, "Messages marked as read", nil)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
