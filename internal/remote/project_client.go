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
)

// ProjectClient talks to the project service. Both operations are treated
// as best-effort by the orchestrator; the client just reports errors.
type ProjectClient struct {
	baseURL    string
	token      string
	httpClient httpclient.Client
}

// NewProjectClient creates a project service client.
func NewProjectClient(baseURL, token string, httpClient httpclient.Client) *ProjectClient {
	return &ProjectClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
	}
}

// CreateProject creates a remote project and returns its record, including
// the identifier used to tag subsequent media uploads.
func (c *ProjectClient) CreateProject(ctx context.Context, payload map[string]any) (*models.ProjectRecord, error) {
	start := time.Now()
	operation := "createProject"

	var record models.ProjectRecord
	err := c.post(ctx, "/api/v1/projects", payload, &record)

	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RemoteCallDuration.WithLabelValues("project", operation, status).Observe(duration)
	metrics.RemoteCallTotal.WithLabelValues("project", operation, status).Inc()
	logger.LogAPICall(ctx, "project_service", operation, status, duration)

	if err != nil {
		return nil, err
	}
	return &record, nil
}

// AttachMedia uploads one media file tagged to a created project.
func (c *ProjectClient) AttachMedia(ctx context.Context, projectID string, meta models.FileMetadata, data []byte) error {
	start := time.Now()
	operation := "attachMedia"

	err := c.postMultipart(ctx, fmt.Sprintf("/api/v1/projects/%s/media", projectID), meta, data)

	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RemoteCallDuration.WithLabelValues("project", operation, status).Observe(duration)
	metrics.RemoteCallTotal.WithLabelValues("project", operation, status).Inc()
	logger.LogAPICall(ctx, "project_service", operation, status, duration)

	return err
}

// CreatePortfolio creates the optional portfolio record for a developer.
func (c *ProjectClient) CreatePortfolio(ctx context.Context, payload map[string]any) error {
	start := time.Now()
	operation := "createPortfolio"

	err := c.post(ctx, "/api/v1/portfolios", payload, nil)

	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RemoteCallDuration.WithLabelValues("project", operation, status).Observe(duration)
	metrics.RemoteCallTotal.WithLabelValues("project", operation, status).Inc()
	logger.LogAPICall(ctx, "project_service", operation, status, duration)

	return err
}

func (c *ProjectClient) postMultipart(ctx context.Context, path string, meta models.FileMetadata, data []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", meta.Name)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write file payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("project service unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4*1024)) //nolint:errcheck
		return fmt.Errorf("project service returned status %d: %s", httpResp.StatusCode, bytes.TrimSpace(raw))
	}

	return nil
}

func (c *ProjectClient) post(ctx context.Context, path string, payload map[string]any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("project service unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4*1024)) //nolint:errcheck
		return fmt.Errorf("project service returned status %d: %s", httpResp.StatusCode, bytes.TrimSpace(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode project response: %w", err)
	}
	return nil
}
