// Package apiclient wraps outbound calls to the ads backend: bearer-token
// attachment, bounded retries for transient network failures, and the
// centralized reaction to authentication failures.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/instantlly/ads-admin/apierrors"
	"github.com/instantlly/ads-admin/config"
	"github.com/instantlly/ads-admin/metrics"
	"github.com/instantlly/ads-admin/session"
)

// Marker the backend puts in 401 payloads when the token itself is
// malformed rather than merely expired or absent.
const malformedTokenMarker = "Invalid user ID format in token"

// Message surfaced to the caller for the malformed-token case.
const sessionExpiredMessage = "Session expired. Please log in again."

// Client talks to the ads backend. All endpoints live under /api relative
// to the configured base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	session    *session.Session
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

func New(cfg config.APIConfig, sess *session.Session, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log:        log,
		session:    sess,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

type errorBody struct {
	Message string `json:"message"`
}

// Do performs one JSON round trip against the backend. body, if non-nil,
// is marshalled as the request body; out, if non-nil, receives the decoded
// response. Transient network failures are retried up to MaxRetries times
// with a fixed delay; authentication failures are terminal for the session
// and never retried.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	start := time.Now()
	err := c.do(ctx, method, path, body, out)
	metrics.RecordRequest(method, outcomeLabel(err), time.Since(start).Seconds())
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	url := c.baseURL + "/api" + path
	requestID := uuid.New().String()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RequestRetries.Inc()
			select {
			case <-ctx.Done():
				return &apierrors.NetworkError{Err: ctx.Err()}
			case <-time.After(c.retryDelay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return &apierrors.NetworkError{Err: err}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &apierrors.NetworkError{Err: err}
			c.log.Warn("request failed, will retry",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		err = c.handleResponse(resp, out)
		if err != nil {
			return err
		}
		return nil
	}

	return lastErr
}

func (c *Client) handleResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.AuthFailures.Inc()
		var eb errorBody
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &eb)

		c.session.OnAuthFailure(eb.Message)

		if strings.Contains(eb.Message, malformedTokenMarker) {
			return &apierrors.AuthError{Message: sessionExpiredMessage}
		}
		msg := eb.Message
		if msg == "" {
			msg = "authentication required"
		}
		return &apierrors.AuthError{Message: msg}
	}

	if resp.StatusCode == http.StatusNotFound {
		return apierrors.ErrNotFound
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &eb)
		return &apierrors.ServerError{StatusCode: resp.StatusCode, Message: eb.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apierrors.IsAuth(err):
		return "auth"
	case apierrors.IsRetryable(err):
		return "network"
	case errors.Is(err, apierrors.ErrNotFound):
		return "not_found"
	default:
		return "server"
	}
}

// Image slots an advertisement can carry.
const (
	ImageSlotBottom     = "bottom"
	ImageSlotFullscreen = "fullscreen"
)

// AdImageURL constructs the URL for an ad's image in the given slot. The
// client never fetches or decodes image bytes itself.
func (c *Client) AdImageURL(adID, slot string) string {
	return fmt.Sprintf("%s/api/ads/image/%s/%s", c.baseURL, adID, slot)
}

// ImageRefURL constructs the URL for a standalone stored image reference,
// as carried by pending submissions.
func (c *Client) ImageRefURL(imageID string) string {
	return fmt.Sprintf("%s/api/ads/images/%s", c.baseURL, imageID)
}
