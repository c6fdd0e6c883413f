package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/pkg/httpclient"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/buildlink/onboarding-api/pkg/metrics"
	"github.com/buildlink/onboarding-api/pkg/objectstorage"
	"github.com/buildlink/onboarding-api/pkg/retry"
	"go.uber.org/zap"
)

// DocumentClient uploads files to the document service, one multipart POST
// per file. Each call fails independently; the orchestrator decides how to
// tally failures.
type DocumentClient struct {
	baseURL    string
	token      string
	httpClient httpclient.Client
	retryCfg   retry.Config
}

// NewDocumentClient creates a document service client.
func NewDocumentClient(baseURL, token string, httpClient httpclient.Client) *DocumentClient {
	return &DocumentClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		retryCfg:   retry.StorageConfig(),
	}
}

// UploadDocument stores one file under the given category.
func (c *DocumentClient) UploadDocument(ctx context.Context, userID int, category models.DocumentCategory, meta models.FileMetadata, data []byte) (*models.DocumentDescriptor, error) {
	start := time.Now()
	operation := "uploadDocument"

	desc, err := retry.DoWithResult(ctx, c.retryCfg, operation, func() (*models.DocumentDescriptor, error) {
		return c.doUpload(ctx, userID, category, meta, data)
	})

	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RemoteCallDuration.WithLabelValues("document", operation, status).Observe(duration)
	metrics.RemoteCallTotal.WithLabelValues("document", operation, status).Inc()
	logger.LogAPICall(ctx, "document_service", operation, status, duration,
		zap.String("category", string(category)),
		zap.String("file", meta.Name),
		zap.Int("size_bytes", len(data)),
	)

	return desc, err
}

func (c *DocumentClient) doUpload(ctx context.Context, userID int, category models.DocumentCategory, meta models.FileMetadata, data []byte) (*models.DocumentDescriptor, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", meta.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file payload: %w", err)
	}
	if err := writer.WriteField("category", string(category)); err != nil {
		return nil, fmt.Errorf("failed to write category field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/users/%d/documents", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document service unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4*1024)) //nolint:errcheck
		return nil, fmt.Errorf("document service returned status %d: %s", httpResp.StatusCode, bytes.TrimSpace(body))
	}

	var desc models.DocumentDescriptor
	if err := json.NewDecoder(httpResp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to decode document descriptor: %w", err)
	}

	return &desc, nil
}

// StorageDocumentClient satisfies DocumentAPI by writing straight to
// S3-compatible object storage, bypassing the document service. Used where
// the platform owns its bucket.
type StorageDocumentClient struct {
	storage *objectstorage.Client
}

// NewStorageDocumentClient wraps an object storage client as a DocumentAPI.
func NewStorageDocumentClient(storage *objectstorage.Client) *StorageDocumentClient {
	return &StorageDocumentClient{storage: storage}
}

// UploadDocument stores the file in the bucket and synthesizes a descriptor
// from the resulting object URL.
func (c *StorageDocumentClient) UploadDocument(ctx context.Context, userID int, category models.DocumentCategory, meta models.FileMetadata, data []byte) (*models.DocumentDescriptor, error) {
	key := c.storage.ObjectKey(userID, string(category), meta.Name)

	url, err := c.storage.Upload(ctx, data, key, meta.ContentType)
	if err != nil {
		return nil, err
	}

	return &models.DocumentDescriptor{
		ID:       key,
		URL:      url,
		Category: category,
		Name:     meta.Name,
		Size:     meta.Size,
	}, nil
}
