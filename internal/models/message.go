package models

import (
	"time"
)

// Conversation is a two-party message thread. LastMessageAt/LastMessageText
// are denormalized for conversation-list rendering.
type Conversation struct {
	BaseModel
	PatientID       string     `gorm:"size:36;index;uniqueIndex:idx_conv_pair" json:"patientId"`
	DoctorID        string     `gorm:"size:36;index;uniqueIndex:idx_conv_pair" json:"doctorId"`
	LastMessageAt   *time.Time `json:"lastMessageAt,omitempty"`
	LastMessageText string     `gorm:"size:512" json:"lastMessageText,omitempty"`

	Patient  User      `gorm:"foreignKey:PatientID" json:"patient"`
	Doctor   User      `gorm:"foreignKey:DoctorID" json:"doctor"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"-"`
}

// Message belongs to a conversation and a sender
type Message struct {
	BaseModel
	ConversationID string     `gorm:"size:36;index" json:"conversationId"`
	SenderID       string     `gorm:"size:36;index" json:"senderId"`
	Content        string     `gorm:"type:text" json:"content"`
	ReadAt         *time.Time `json:"readAt,omitempty"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender"`
}

// ParticipantIDs returns both party ids of the conversation.
func (c *Conversation) ParticipantIDs() (string, string) {
	return c.PatientID, c.DoctorID
}

// Counterpart returns the id of the participant that is not userID.
func (c *Conversation) Counterpart(userID string) string {
	if c.PatientID == userID {
		return c.DoctorID
	}
	return c.PatientID
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.PatientID == userID || c.DoctorID == userID
}
