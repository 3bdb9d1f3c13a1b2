// Package storage uploads brand poster images to Supabase object storage
// and hands back the public URL stored on the brand row.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

// ErrNotConfigured is returned when the Supabase credentials are absent.
var ErrNotConfigured = errors.New("object storage is not configured")

const posterBucket = "posters"

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// SupabaseClient talks to the Supabase storage REST API.
type SupabaseClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewSupabaseClient returns nil when url or key is empty; callers treat a
// nil client as storage disabled.
func NewSupabaseClient(url, serviceKey string, log *logger.Logger) *SupabaseClient {
	if url == "" || serviceKey == "" {
		return nil
	}
	return &SupabaseClient{
		baseURL:    strings.TrimRight(url, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.WithComponent("storage"),
	}
}

// UploadPoster stores the image under a random name in the posters bucket
// and returns its public URL.
func (c *SupabaseClient) UploadPoster(data []byte, contentType string) (string, error) {
	if c == nil {
		return "", ErrNotConfigured
	}

	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	objectName := uuid.NewString() + ext
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, posterBucket, objectName)

	req, err := http.NewRequest(http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s", c.baseURL, path.Join(posterBucket, objectName))
	c.logger.Info("Uploaded poster", "object", objectName)
	return publicURL, nil
}
