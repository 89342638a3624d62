package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mboyle/threadline-api/engine"
	"github.com/mboyle/threadline-api/middleware"
)

// GetThread handles GET /api/v1/messages/:id/thread - resolves the thread
// containing a message: its root and the flat member list (root plus
// direct replies, oldest first)
func GetThread(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	eng := GetEngine()
	thread, err := eng.GetThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, engine.ErrThreadCycle) {
			respondError(c, http.StatusInternalServerError, "DATA_INTEGRITY_ERROR", "Thread structure is corrupted")
			return
		}
		respondEngineError(c, err)
		return
	}

	if !isParticipant(thread.Root.SenderID, thread.Root.ReceiverID, userID) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this thread")
		return
	}

	depth, err := eng.Depth(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	lastActivity, err := eng.LastActivity(c.Request.Context(), thread.Root.ID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"root":          thread.Root,
		"members":       thread.Members,
		"reply_count":   len(thread.Members) - 1,
		"depth":         depth,
		"last_activity": lastActivity,
	})
}
