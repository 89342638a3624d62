package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mboyle/threadline-api/engine"
	"github.com/mboyle/threadline-api/services"
)

func doMultipart(router *gin.Engine, method, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile(field, filename)
	_, _ = part.Write(content)
	_ = writer.Close()

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAttachment(t *testing.T) {
	db := setupControllerTest(t)
	alice := seedUser(t, db, "alice", "password123")
	bob := seedUser(t, db, "bob", "password123")

	mock := services.NewMockS3Service()
	mock.SetAsMockForTesting()

	msg, err := GetEngine().SubmitMessage(context.Background(), engine.Submission{
		SenderID: alice.ID, ReceiverID: bob.ID, Body: "see attached", Source: "test",
	})
	assert.NoError(t, err)

	router := setupTestRouter()
	router.POST("/messages/:id/attachment", mockAuthMiddleware(alice.ID), UploadAttachment)

	w := doMultipart(router, http.MethodPost, "/messages/"+msg.ID+"/attachment",
		"file", "photo.png", []byte("png bytes"))
	assert.Equal(t, http.StatusCreated, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	key := data["attachment_key"].(string)
	assert.NotEmpty(t, key)

	stored, ok := mock.StoredAttachment(key)
	assert.True(t, ok)
	assert.Equal(t, []byte("png bytes"), stored)

	// The key is recorded on the message
	fresh, err := GetEngine().Messages().ByID(context.Background(), msg.ID)
	assert.NoError(t, err)
	assert.NotNil(t, fresh.AttachmentKey)
	assert.Equal(t, key, *fresh.AttachmentKey)

	// Attaching is not an edit, so no history is written
	history, err := GetEngine().History(context.Background(), msg.ID)
	assert.NoError(t, err)
	assert.Empty(t, history)
}

func TestUploadAttachmentAuthorization(t *testing.T) {
	db := setupControllerTest(t)
	alice := seedUser(t, db, "alice", "password123")
	bob := seedUser(t, db, "bob", "password123")

	services.NewMockS3Service().SetAsMockForTesting()

	msg, err := GetEngine().SubmitMessage(context.Background(), engine.Submission{
		SenderID: alice.ID, ReceiverID: bob.ID, Body: "see attached", Source: "test",
	})
	assert.NoError(t, err)

	// Only the sender may attach
	router := setupTestRouter()
	router.POST("/messages/:id/attachment", mockAuthMiddleware(bob.ID), UploadAttachment)
	w := doMultipart(router, http.MethodPost, "/messages/"+msg.ID+"/attachment",
		"file", "photo.png", []byte("png bytes"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unknown message
	router = setupTestRouter()
	router.POST("/messages/:id/attachment", mockAuthMiddleware(alice.ID), UploadAttachment)
	w = doMultipart(router, http.MethodPost, "/messages/no-such-id/attachment",
		"file", "photo.png", []byte("png bytes"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Disallowed extension
	w = doMultipart(router, http.MethodPost, "/messages/"+msg.ID+"/attachment",
		"file", "script.exe", []byte("mz"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := parseResponse(t, w)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_FILE_FORMAT", errorData["code"])
}

func TestGetAttachment(t *testing.T) {
	db := setupControllerTest(t)
	alice := seedUser(t, db, "alice", "password123")
	bob := seedUser(t, db, "bob", "password123")
	carol := seedUser(t, db, "carol", "password123")

	services.NewMockS3Service().SetAsMockForTesting()

	msg, err := GetEngine().SubmitMessage(context.Background(), engine.Submission{
		SenderID: alice.ID, ReceiverID: bob.ID, Body: "see attached", Source: "test",
	})
	assert.NoError(t, err)

	uploadRouter := setupTestRouter()
	uploadRouter.POST("/messages/:id/attachment", mockAuthMiddleware(alice.ID), UploadAttachment)
	w := doMultipart(uploadRouter, http.MethodPost, "/messages/"+msg.ID+"/attachment",
		"file", "notes.txt", []byte("notes"))
	assert.Equal(t, http.StatusCreated, w.Code)

	// The receiver can fetch a download URL
	router := setupTestRouter()
	router.GET("/messages/:id/attachment", mockAuthMiddleware(bob.ID), GetAttachment)
	w = doJSON(router, http.MethodGet, "/messages/"+msg.ID+"/attachment", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Contains(t, data["url"].(string), "attachments/"+msg.ID+"/")

	// A non-participant cannot
	strangerRouter := setupTestRouter()
	strangerRouter.GET("/messages/:id/attachment", mockAuthMiddleware(carol.ID), GetAttachment)
	w = doJSON(strangerRouter, http.MethodGet, "/messages/"+msg.ID+"/attachment", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A message without an attachment is a 404
	bare, err := GetEngine().SubmitMessage(context.Background(), engine.Submission{
		SenderID: alice.ID, ReceiverID: bob.ID, Body: "no attachment", Source: "test",
	})
	assert.NoError(t, err)
	w = doJSON(router, http.MethodGet, "/messages/"+bare.ID+"/attachment", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
