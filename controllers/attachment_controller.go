package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mboyle/threadline-api/config"
	"github.com/mboyle/threadline-api/middleware"
	"github.com/mboyle/threadline-api/models"
	"github.com/mboyle/threadline-api/services"
	"github.com/mboyle/threadline-api/utils"
)

// UploadAttachment handles POST /api/v1/messages/:id/attachment - attaches
// a file to a message the caller sent
func UploadAttachment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	var msg models.Message
	if err := db.Where("id = ?", c.Param("id")).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Message not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load message")
		return
	}
	if msg.SenderID == nil || *msg.SenderID != userID {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only the sender can attach files to a message")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "A 'file' form field is required")
		return
	}
	if err := utils.ValidateAttachment(fileHeader); err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	key, err := services.GetS3Service().UploadAttachment(msg.ID, fileHeader)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store attachment")
		return
	}

	// Attaching a file is not a content edit; no history entry is written
	if err := db.Model(&msg).Update("attachment_key", key).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record attachment")
		return
	}

	respondData(c, http.StatusCreated, gin.H{"attachment_key": key})
}

// GetAttachment handles GET /api/v1/messages/:id/attachment - returns a
// time-limited download URL for the message's attachment. Only the sender
// or receiver may fetch it.
func GetAttachment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	var msg models.Message
	if err := db.Where("id = ?", c.Param("id")).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Message not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load message")
		return
	}
	if !isParticipant(msg.SenderID, msg.ReceiverID, userID) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this message")
		return
	}
	if msg.AttachmentKey == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Message has no attachment")
		return
	}

	url, err := services.GetS3Service().GetPresignedURL(*msg.AttachmentKey)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to generate download URL")
		return
	}

	respondData(c, http.StatusOK, gin.H{"url": url})
}
