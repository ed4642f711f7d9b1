// Package media proxies image uploads to the hosted media service.
package media

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/creator-platform/creator_service/internal/infrastructure/config"
	"github.com/creator-platform/creator_service/pkg/errors"
	"github.com/creator-platform/creator_service/pkg/logger"
)

// Client uploads images to the media host
type Client struct {
	http   *resty.Client
	preset string
	log    *logger.Logger
}

// NewClient creates a media upload client
func NewClient(cfg config.MediaConfig, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.UploadURL).
		SetTimeout(60 * time.Second)

	return &Client{http: httpClient, preset: cfg.UploadPreset, log: log}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// UploadImage sends the file at filePath to the media host and returns the hosted URL
func (c *Client) UploadImage(ctx context.Context, filePath string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFile("file", filePath).
		SetFormData(map[string]string{"upload_preset": c.preset}).
		Post("")
	if err != nil {
		return "", &errors.GatewayError{
			Provider: "media",
			Message:  "media host unreachable",
			Err:      err,
		}
	}
	if resp.IsError() {
		c.log.Warn("Media host rejected upload", "status", resp.StatusCode())
		return "", &errors.GatewayError{
			Provider:   "media",
			StatusCode: resp.StatusCode(),
			Message:    "media host rejected the upload",
		}
	}

	var out uploadResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", errors.NewInternalError("malformed media host response", err)
	}

	url := out.SecureURL
	if url == "" {
		url = out.URL
	}
	if url == "" {
		return "", errors.NewInternalError("media host response missing url", nil)
	}
	return url, nil
}
