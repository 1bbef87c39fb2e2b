package models

import (
	"time"
)

// UserStatus tracks the last time a user was seen online. Live online state
// is held by the presence hub; this row is only written when a connection
// drops so offline users still show a last-seen timestamp.
type UserStatus struct {
	BaseModel
	UserID   string    `gorm:"size:36;uniqueIndex" json:"userId"`
	LastSeen time.Time `json:"lastSeen"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
