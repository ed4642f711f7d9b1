// Package media forwards image uploads to the hosted media service.
package media

import (
	"context"
	"fmt"

	"github.com/creator-platform/creator_service/pkg/logger"
)

// Uploader interface for the media host adapter
type Uploader interface {
	UploadImage(ctx context.Context, filePath string) (string, error)
}

// Service proxies image uploads
type Service struct {
	uploader Uploader
	log      *logger.Logger
}

// NewService creates a media service
func NewService(uploader Uploader, log *logger.Logger) *Service {
	return &Service{uploader: uploader, log: log}
}

// UploadImage forwards the file at filePath to the media host and returns the hosted URL.
// The caller owns the file and removes it on both success and failure paths.
func (s *Service) UploadImage(ctx context.Context, filePath string) (string, error) {
	url, err := s.uploader.UploadImage(ctx, filePath)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	s.log.Info("Image uploaded", "url", url)
	return url, nil
}
