// Package engine implements the messaging consistency core: message
// submission through the moderation/rate gate, notification-on-create,
// edit-history capture, unread tracking, thread resolution, and the
// cascade that runs when an actor is removed.
//
// Side effects are performed inline and synchronously as part of each
// operation; there is no background event dispatch.
package engine

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mboyle/threadline-api/gate"
	"github.com/mboyle/threadline-api/models"
	"github.com/mboyle/threadline-api/stores"
)

// Engine coordinates the message and notification stores and enforces the
// lifecycle rules around them
type Engine struct {
	db            *gorm.DB
	messages      stores.MessageStore
	notifications stores.NotificationStore
	gate          *gate.Gate
}

// Submission is an inbound message-creating request. Source identifies
// where the submission came from for rate-limiting purposes.
type Submission struct {
	SenderID   string
	ReceiverID string
	Body       string
	ParentID   *string
	Source     string
}

// New creates an Engine over db, gated by g
func New(db *gorm.DB, g *gate.Gate) *Engine {
	return &Engine{
		db:            db,
		messages:      stores.NewMessageStore(db),
		notifications: stores.NewNotificationStore(db),
		gate:          g,
	}
}

// Messages exposes the message store for read-side queries
func (e *Engine) Messages() stores.MessageStore {
	return e.messages
}

// Notifications exposes the notification store for read-side queries
func (e *Engine) Notifications() stores.NotificationStore {
	return e.notifications
}

// SubmitMessage runs a submission through the gate, persists the message
// and creates exactly one notification for the receiver.
//
// Notification creation is deliberately not transactional with the
// message: a notification failure is logged and the created message is
// returned anyway. History capture on edits, by contrast, commits
// atomically with the edit.
func (e *Engine) SubmitMessage(ctx context.Context, sub Submission) (*models.Message, error) {
	if err := validateBody(sub.Body); err != nil {
		return nil, err
	}
	if err := e.gate.Check(sub.Source, sub.Body); err != nil {
		return nil, err
	}

	var receiver models.User
	if err := e.db.WithContext(ctx).Where("id = ?", sub.ReceiverID).First(&receiver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: sub.ReceiverID}
		}
		return nil, err
	}

	if sub.ParentID != nil {
		if _, err := e.messages.ByID(ctx, *sub.ParentID); err != nil {
			if errors.Is(err, stores.ErrMessageNotFound) {
				return nil, &NotFoundError{Resource: "message", ID: *sub.ParentID}
			}
			return nil, err
		}
	}

	senderID := sub.SenderID
	receiverID := sub.ReceiverID
	msg := &models.Message{
		SenderID:   &senderID,
		ReceiverID: &receiverID,
		Body:       sub.Body,
		ParentID:   sub.ParentID,
	}
	if err := e.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	e.notifyReceiver(ctx, msg)
	return msg, nil
}

// Reply creates a child message under parentID, addressed to the parent's
// sender. Replies pass the same gate as top-level submissions.
func (e *Engine) Reply(ctx context.Context, parentID, senderID, body, source string) (*models.Message, error) {
	if err := validateBody(body); err != nil {
		return nil, err
	}
	if err := e.gate.Check(source, body); err != nil {
		return nil, err
	}

	parent, err := e.messages.ByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, stores.ErrMessageNotFound) {
			return nil, &NotFoundError{Resource: "message", ID: parentID}
		}
		return nil, err
	}

	// A reply answers the parent's sender. If that sender was tombstoned
	// the reply lands with no receiver and no notification is sent.
	msg := &models.Message{
		SenderID:   &senderID,
		ReceiverID: parent.SenderID,
		Body:       body,
		ParentID:   &parent.ID,
	}
	if err := e.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	e.notifyReceiver(ctx, msg)
	return msg, nil
}

// notifyReceiver writes the new-message notification. Failures are
// reported in the log but never unwind the message creation.
func (e *Engine) notifyReceiver(ctx context.Context, msg *models.Message) {
	if msg.ReceiverID == nil {
		return
	}
	notification := &models.Notification{
		UserID:    *msg.ReceiverID,
		MessageID: msg.ID,
		Type:      models.NotificationTypeNewMessage,
	}
	if err := e.notifications.Create(ctx, notification); err != nil {
		log.Printf("Failed to create notification for message %s: %v", msg.ID, err)
	}
}

// EditMessage replaces the body of a message. When the new body differs
// from the stored one, a history entry capturing the old body is written
// in the same transaction as the edit, and the message is flagged edited.
// Editing with an identical body is a no-op and records nothing.
func (e *Engine) EditMessage(ctx context.Context, id, editorID, newBody string) (*models.Message, error) {
	if err := validateBody(newBody); err != nil {
		return nil, err
	}

	msg, err := e.messages.Update(ctx, id, func(tx *gorm.DB, msg *models.Message) error {
		if msg.SenderID == nil || *msg.SenderID != editorID {
			return &ForbiddenError{Message: "only the sender can edit a message"}
		}

		// Exact byte comparison of the body as read in this transaction.
		// Non-content changes (read flags) never reach this path.
		if msg.Body == newBody {
			return nil
		}

		history := &models.MessageHistory{
			MessageID: msg.ID,
			OldBody:   msg.Body,
			EditedBy:  &editorID,
		}
		if err := tx.Create(history).Error; err != nil {
			return err
		}

		now := time.Now()
		msg.Body = newBody
		msg.Edited = true
		msg.LastEdited = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, stores.ErrMessageNotFound) {
			return nil, &NotFoundError{Resource: "message", ID: id}
		}
		return nil, err
	}
	return msg, nil
}

// History returns the edit history of a message, newest first
func (e *Engine) History(ctx context.Context, messageID string) ([]*models.MessageHistory, error) {
	if _, err := e.messages.ByID(ctx, messageID); err != nil {
		if errors.Is(err, stores.ErrMessageNotFound) {
			return nil, &NotFoundError{Resource: "message", ID: messageID}
		}
		return nil, err
	}
	var history []*models.MessageHistory
	err := e.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("edited_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// UnreadFor returns unread messages addressed to user, oldest first
func (e *Engine) UnreadFor(ctx context.Context, userID string) ([]*models.Message, error) {
	return e.messages.UnreadFor(ctx, userID)
}

// MarkRead marks messages addressed to user as read and returns how many
// were updated. With no ids, every unread message for the user is marked.
// Marking read never touches the edit flag or history.
func (e *Engine) MarkRead(ctx context.Context, userID string, messageIDs []string) (int64, error) {
	return e.messages.MarkRead(ctx, userID, messageIDs)
}

// Conversation returns the messages exchanged between two users ordered
// by timestamp, optionally bounded to a time range
func (e *Engine) Conversation(ctx context.Context, userID, otherID string, after, before *time.Time) ([]*models.Message, error) {
	return e.messages.Conversation(ctx, userID, otherID, after, before)
}

// OnActorRemoved runs the cleanup cascade after an actor is deleted, as a
// single transaction:
//
//  1. sender/receiver references to the actor are set to NULL,
//  2. messages left with both references NULL are deleted together with
//     their replies, history and notifications,
//  3. history editor references to the actor are set to NULL, then every
//     history row without an editor is deleted,
//  4. notifications addressed to the actor are deleted.
//
// The nullify-before-delete order is load-bearing: both-NULL messages can
// only be detected after step 1 has run.
func (e *Engine) OnActorRemoved(ctx context.Context, actorID string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).
			Where("sender_id = ?", actorID).
			Update("sender_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Message{}).
			Where("receiver_id = ?", actorID).
			Update("receiver_id", nil).Error; err != nil {
			return err
		}

		var orphans []*models.Message
		if err := tx.Where("sender_id IS NULL AND receiver_id IS NULL").
			Find(&orphans).Error; err != nil {
			return err
		}
		if len(orphans) > 0 {
			doomed := make([]string, 0, len(orphans))
			for _, msg := range orphans {
				doomed = append(doomed, msg.ID)
			}
			doomed, err := collectDescendants(tx, doomed)
			if err != nil {
				return err
			}
			if err := tx.Where("message_id IN ?", doomed).
				Delete(&models.Notification{}).Error; err != nil {
				return err
			}
			if err := tx.Where("message_id IN ?", doomed).
				Delete(&models.MessageHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", doomed).
				Delete(&models.Message{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.MessageHistory{}).
			Where("edited_by = ?", actorID).
			Update("edited_by", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("edited_by IS NULL").
			Delete(&models.MessageHistory{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", actorID).
			Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return nil
	})
}

// collectDescendants expands ids with every reply reachable below them so
// deleting a thread root takes the whole subtree with it
func collectDescendants(tx *gorm.DB, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	all := make([]string, 0, len(ids))
	frontier := ids
	for _, id := range ids {
		seen[id] = true
		all = append(all, id)
	}

	for len(frontier) > 0 {
		var children []*models.Message
		if err := tx.Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, child := range children {
			if !seen[child.ID] {
				seen[child.ID] = true
				all = append(all, child.ID)
				frontier = append(frontier, child.ID)
			}
		}
	}
	return all, nil
}

// validateBody rejects empty or too-short message bodies
func validateBody(body string) error {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return &ValidationError{Field: "body", Message: "message body is required"}
	}
	if len(trimmed) < 2 {
		return &ValidationError{Field: "body", Message: "message is too short"}
	}
	return nil
}
