package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationTypeNewMessage is the default notification type tag
const NotificationTypeNewMessage = "new_message"

// Notification tells a user that a message addressed to them arrived.
// Exactly one is created per message creation. Unlike message actor
// references, notifications are hard-deleted when their recipient or
// their triggering message is removed.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;not null;size:36" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	MessageID string    `gorm:"index;not null;size:36" json:"message_id"`
	Message   *Message  `gorm:"foreignKey:MessageID" json:"-"`
	Type      string    `gorm:"not null;size:50;default:'new_message'" json:"type"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns a UUID primary key when none was provided
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = NotificationTypeNewMessage
	}
	return nil
}
