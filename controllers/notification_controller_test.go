package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mboyle/threadline-api/engine"
)

func TestNotificationEndpoints(t *testing.T) {
	db := setupControllerTest(t)
	alice := seedUser(t, db, "alice", "password123")
	bob := seedUser(t, db, "bob", "password123")

	// Two incoming messages give bob two unread notifications
	for _, body := range []string{"first hello", "second hello"} {
		_, err := GetEngine().SubmitMessage(context.Background(), engine.Submission{
			SenderID: alice.ID, ReceiverID: bob.ID, Body: body, Source: "test",
		})
		assert.NoError(t, err)
	}

	router := setupTestRouter()
	router.GET("/notifications", mockAuthMiddleware(bob.ID), ListNotifications)
	router.GET("/notifications/unread-count", mockAuthMiddleware(bob.ID), UnreadNotificationCount)
	router.POST("/notifications/:id/read", mockAuthMiddleware(bob.ID), MarkNotificationRead)

	w := doJSON(router, http.MethodGet, "/notifications", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(t, w)
	notifications := response["data"].([]interface{})
	assert.Len(t, notifications, 2)
	first := notifications[0].(map[string]interface{})
	assert.Equal(t, "new_message", first["type"])
	assert.Equal(t, bob.ID, first["user_id"])

	w = doJSON(router, http.MethodGet, "/notifications/unread-count", nil)
	response = parseResponse(t, w)
	assert.Equal(t, float64(2), response["data"].(map[string]interface{})["unread"])

	// Mark one read and the unread filter drops it
	w = doJSON(router, http.MethodPost, "/notifications/"+first["id"].(string)+"/read", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/notifications?unread=true", nil)
	response = parseResponse(t, w)
	assert.Len(t, response["data"].([]interface{}), 1)

	w = doJSON(router, http.MethodGet, "/notifications/unread-count", nil)
	response = parseResponse(t, w)
	assert.Equal(t, float64(1), response["data"].(map[string]interface{})["unread"])

	// A notification belonging to someone else cannot be marked
	strangerRouter := setupTestRouter()
	strangerRouter.POST("/notifications/:id/read", mockAuthMiddleware(alice.ID), MarkNotificationRead)
	w = doJSON(strangerRouter, http.MethodPost, "/notifications/"+first["id"].(string)+"/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
