package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mboyle/threadline-api/engine"
	"github.com/mboyle/threadline-api/middleware"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	ReceiverID string  `json:"receiver_id" binding:"required"`
	Body       string  `json:"body" binding:"required"`
	ParentID   *string `json:"parent_id"`
}

// EditMessageRequest represents the request body for editing a message
type EditMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// ReplyRequest represents the request body for replying to a message
type ReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

// MarkReadRequest represents the request body for marking messages read.
// With no ids, every unread message for the caller is marked.
type MarkReadRequest struct {
	MessageIDs []string `json:"message_ids"`
}

// SendMessage handles POST /api/v1/messages - submits a new message
func SendMessage(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	msg, err := GetEngine().SubmitMessage(c.Request.Context(), engine.Submission{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
		ParentID:   req.ParentID,
		Source:     submissionSource(c, userID),
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}

	respondData(c, http.StatusCreated, msg)
}

// EditMessage handles PUT /api/v1/messages/:id - edits a message body
func EditMessage(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	msg, err := GetEngine().EditMessage(c.Request.Context(), c.Param("id"), userID, req.Body)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	respondData(c, http.StatusOK, msg)
}

// ReplyToMessage handles POST /api/v1/messages/:id/replies - replies to a
// message, addressing the reply to the original sender
func ReplyToMessage(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	msg, err := GetEngine().Reply(c.Request.Context(), c.Param("id"), userID, req.Body, submissionSource(c, userID))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	respondData(c, http.StatusCreated, msg)
}

// ListConversation handles GET /api/v1/messages?with=<user_id> - lists the
// conversation between the caller and another user, oldest first.
// Optional after/before query parameters bound the time range (RFC 3339).
func ListConversation(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	otherID := c.Query("with")
	if otherID == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter 'with' is required")
		return
	}

	var after, before *time.Time
	if raw := c.Query("after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid 'after' timestamp, expected RFC 3339")
			return
		}
		after = &t
	}
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid 'before' timestamp, expected RFC 3339")
			return
		}
		before = &t
	}

	messages, err := GetEngine().Conversation(c.Request.Context(), userID, otherID, after, before)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	respondData(c, http.StatusOK, messages)
}

// UnreadMessages handles GET /api/v1/messages/unread - lists unread
// messages addressed to the caller
func UnreadMessages(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	messages, err := GetEngine().UnreadFor(c.Request.Context(), userID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	respondData(c, http.StatusOK, messages)
}

// MarkMessagesRead handles POST /api/v1/messages/read - marks messages
// addressed to the caller as read and returns the updated count
func MarkMessagesRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req MarkReadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
			return
		}
	}

	count, err := GetEngine().MarkRead(c.Request.Context(), userID, req.MessageIDs)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"marked_read": count})
}

// GetMessageHistory handles GET /api/v1/messages/:id/history - returns the
// edit history of a message, newest first. Only the sender or receiver of
// the message may view its history.
func GetMessageHistory(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	msg, err := GetEngine().Messages().ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Message not found")
		return
	}
	if !isParticipant(msg.SenderID, msg.ReceiverID, userID) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this message")
		return
	}

	history, err := GetEngine().History(c.Request.Context(), msg.ID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	respondData(c, http.StatusOK, history)
}

// isParticipant reports whether userID is the sender or receiver
func isParticipant(senderID, receiverID *string, userID string) bool {
	if senderID != nil && *senderID == userID {
		return true
	}
	if receiverID != nil && *receiverID == userID {
		return true
	}
	return false
}
