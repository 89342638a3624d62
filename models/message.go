package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message represents a direct message between two users.
//
// SenderID and ReceiverID are nullable: when an actor is removed their
// references are tombstoned to NULL rather than deleting the message
// outright. A message whose sender and receiver are both NULL is fully
// orphaned and removed by the actor-removal cascade.
//
// ParentID links a reply to the message it answers. Parent links form a
// forest: a message has at most one parent and root messages have none.
type Message struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	SenderID      *string    `gorm:"index:idx_messages_conversation,priority:1;size:36" json:"sender_id"`
	Sender        *User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID    *string    `gorm:"index:idx_messages_conversation,priority:2;size:36" json:"receiver_id"`
	Receiver      *User      `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Body          string     `gorm:"type:text;not null" json:"body"`
	Timestamp     time.Time  `gorm:"index:idx_messages_conversation,priority:3;index:idx_messages_thread,priority:2" json:"timestamp"`
	Read          bool       `gorm:"not null;default:false" json:"read"`
	Edited        bool       `gorm:"not null;default:false" json:"edited"`
	LastEdited    *time.Time `json:"last_edited,omitempty"`
	ParentID      *string    `gorm:"index:idx_messages_thread,priority:1;size:36" json:"parent_id,omitempty"`
	AttachmentKey *string    `gorm:"size:512" json:"attachment_key,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate assigns a UUID primary key and a send timestamp when none
// was provided
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return nil
}

// IsReply reports whether this message answers another message
func (m *Message) IsReply() bool {
	return m.ParentID != nil
}

// Orphaned reports whether both actor references have been tombstoned
func (m *Message) Orphaned() bool {
	return m.SenderID == nil && m.ReceiverID == nil
}
