package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"sync"
)

// MockS3Service is an in-memory implementation of S3Interface for testing
type MockS3Service struct {
	attachments map[string][]byte // map of S3 key to file content
	mu          sync.RWMutex
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		attachments: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global S3 service instance
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

// UploadAttachment simulates uploading an attachment
func (m *MockS3Service) UploadAttachment(messageID string, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("attachments/%s/mock%s", messageID, filepath.Ext(fileHeader.Filename))

	m.mu.Lock()
	m.attachments[key] = content
	m.mu.Unlock()

	return key, nil
}

// GetPresignedURL returns a stable fake URL for a stored attachment
func (m *MockS3Service) GetPresignedURL(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.attachments[key]; !ok {
		return "", fmt.Errorf("attachment not found: %s", key)
	}
	return "https://mock-s3.local/" + key, nil
}

// DeleteAttachment removes a stored attachment
func (m *MockS3Service) DeleteAttachment(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.attachments[key]; !ok {
		return fmt.Errorf("attachment not found: %s", key)
	}
	delete(m.attachments, key)
	return nil
}

// StoredAttachment returns the stored content for a key (test helper)
func (m *MockS3Service) StoredAttachment(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.attachments[key]
	return content, ok
}
