package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/pkg/circuitbreaker"
	"github.com/buildlink/onboarding-api/pkg/httpclient"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/buildlink/onboarding-api/pkg/metrics"
	"github.com/buildlink/onboarding-api/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ProfileClient talks to the account/profile service over JSON HTTP. The
// profile write is wrapped in retry plus a circuit breaker: it is the one
// call whose failure aborts a submission, so a flapping account service
// should not be hammered.
type ProfileClient struct {
	baseURL    string
	token      string
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
	retryCfg   retry.Config
}

// NewProfileClient creates a profile service client.
func NewProfileClient(baseURL, token string, httpClient httpclient.Client) *ProfileClient {
	retryCfg := retry.ProfileServiceConfig()
	retryCfg.RetryableErrors = func(err error) bool {
		// A structured rejection will not get better on retry.
		var ve *models.RemoteValidationError
		return !errors.As(err, &ve)
	}

	return &ProfileClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("profile-service")),
		retryCfg:   retryCfg,
	}
}

// UpdateProfile sends the assembled profile payload. A 4xx with a
// structured body is returned as *models.RemoteValidationError so the
// orchestrator can surface per-field messages.
func (c *ProfileClient) UpdateProfile(ctx context.Context, payload map[string]any) (*models.UpdateProfileResponse, error) {
	start := time.Now()
	operation := "updateProfile"

	resp, err := retry.DoWithResult(ctx, c.retryCfg, operation, func() (*models.UpdateProfileResponse, error) {
		return circuitbreaker.Execute(c.breaker, func() (*models.UpdateProfileResponse, error) {
			return c.doUpdateProfile(ctx, payload)
		})
	})

	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RemoteCallDuration.WithLabelValues("profile", operation, status).Observe(duration)
	metrics.RemoteCallTotal.WithLabelValues("profile", operation, status).Inc()
	logger.LogAPICall(ctx, "profile_service", operation, status, duration)

	if err != nil {
		return nil, circuitbreaker.FormatError("profile-service", err)
	}
	return resp, nil
}

func (c *ProfileClient) doUpdateProfile(ctx context.Context, payload map[string]any) (*models.UpdateProfileResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/v1/profile", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile service unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 && httpResp.StatusCode < 500 {
		return nil, parseValidationError(httpResp.Body, httpResp.StatusCode)
	}
	if httpResp.StatusCode >= 500 {
		return nil, fmt.Errorf("profile service returned status %d", httpResp.StatusCode)
	}

	var resp models.UpdateProfileResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		// The service confirmed the write; an unreadable body is not a failure.
		logger.Warn("Could not decode profile response body", zap.Error(err))
		return &models.UpdateProfileResponse{}, nil
	}

	return &resp, nil
}

// GetCurrentUser fetches the authenticated account record.
func (c *ProfileClient) GetCurrentUser(ctx context.Context) (*models.UserRecord, error) {
	start := time.Now()
	operation := "getCurrentUser"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpClient.Do(req)

	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil || (httpResp != nil && httpResp.StatusCode >= 400) {
		status = "error"
	}
	metrics.RemoteCallDuration.WithLabelValues("profile", operation, status).Observe(duration)
	metrics.RemoteCallTotal.WithLabelValues("profile", operation, status).Inc()

	if err != nil {
		return nil, fmt.Errorf("profile service unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile service returned status %d", httpResp.StatusCode)
	}

	var user models.UserRecord
	if err := json.NewDecoder(httpResp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user record: %w", err)
	}

	return &user, nil
}

// parseValidationError decodes a structured rejection body, falling back to
// a plain status error when the body is not in the expected shape.
func parseValidationError(body io.Reader, statusCode int) error {
	raw, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return fmt.Errorf("profile service returned status %d", statusCode)
	}

	var ve models.RemoteValidationError
	if err := json.Unmarshal(raw, &ve); err == nil && len(ve.Fields) > 0 {
		return &ve
	}

	return fmt.Errorf("profile service returned status %d: %s", statusCode, bytes.TrimSpace(raw))
}
