package supabase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client     *storage.Client
	bucket     string
	baseURL    string
	httpClient *http.Client
}

func NewStorageClient(supabaseURL, apiKey, bucket string) (*StorageClient, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", apiKey, nil)

	return &StorageClient{
		client:     client,
		bucket:     bucket,
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}, nil
}

// Upload writes data under objectName, replacing any existing object.
func (s *StorageClient) Upload(ctx context.Context, objectName string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	upsert := true
	_, err := s.client.UploadFile(s.bucket, objectName, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	return nil
}

func (s *StorageClient) PublicURL(objectName string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, strings.TrimPrefix(objectName, "/"))
}

// Exists issues a HEAD request against the public URL of objectName. Any
// non-2xx answer means the object is not there (yet); only transport failures
// are returned as errors.
func (s *StorageClient) Exists(ctx context.Context, objectName string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.PublicURL(objectName), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to probe %s: %w", objectName, err)
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
