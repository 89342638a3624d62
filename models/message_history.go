package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageHistory records the previous body of a message before an edit
// overwrote it. Entries are written once and never mutated; they are only
// removed together with their owning message or by the editor-cleanup
// cascade.
type MessageHistory struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	MessageID string    `gorm:"index;not null;size:36" json:"message_id"`
	Message   *Message  `gorm:"foreignKey:MessageID" json:"-"`
	OldBody   string    `gorm:"type:text;not null" json:"old_body"`
	EditedBy  *string   `gorm:"index;size:36" json:"edited_by"`
	Editor    *User     `gorm:"foreignKey:EditedBy" json:"-"`
	EditedAt  time.Time `json:"edited_at"`
}

// TableName specifies the table name for the MessageHistory model
func (MessageHistory) TableName() string {
	return "message_histories"
}

// BeforeCreate assigns a UUID primary key and an edit timestamp when none
// was provided
func (h *MessageHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.EditedAt.IsZero() {
		h.EditedAt = time.Now()
	}
	return nil
}
