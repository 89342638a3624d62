package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mboyle/threadline-api/middleware"
	"github.com/mboyle/threadline-api/stores"
)

// ListNotifications handles GET /api/v1/notifications - lists the
// caller's notifications, newest first. ?unread=true restricts the list
// to unread notifications.
func ListNotifications(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := GetEngine().Notifications().ByUser(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch notifications")
		return
	}

	respondData(c, http.StatusOK, notifications)
}

// UnreadNotificationCount handles GET /api/v1/notifications/unread-count
func UnreadNotificationCount(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	count, err := GetEngine().Notifications().UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count notifications")
		return
	}

	respondData(c, http.StatusOK, gin.H{"unread": count})
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	err = GetEngine().Notifications().MarkRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, stores.ErrNotificationNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to mark notification as read")
		return
	}

	respondData(c, http.StatusOK, gin.H{"read": true})
}
