// Package backend is the typed client of the recruitment REST API. Every
// call either decodes the JSON response into its result or returns one of the
// domain error types; nothing is retried or cached.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// DefaultUserAgent identifies the portal to the API
const DefaultUserAgent = "zen-portal/1.0"

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// Config holds API client configuration
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client calls the recruitment API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client with its own http.Client using cfg.Timeout
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewClientWithHTTP creates a client on top of an existing http.Client
func NewClientWithHTTP(cfg *Config, httpClient *http.Client, logger *slog.Logger) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger,
	}
}

// request describes one API call
type request struct {
	op          string
	method      string
	path        string
	token       string
	auth        bool
	body        io.Reader
	contentType string
}

func jsonRequest(op, method, path string, payload any) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to marshal %s request: %w", op, err)
	}
	return request{
		op:          op,
		method:      method,
		path:        path,
		body:        bytes.NewReader(body),
		contentType: "application/json",
	}, nil
}

// do executes req and decodes a 2xx JSON body into out (when out is non-nil)
func (c *Client) do(ctx context.Context, req request, out any) error {
	if req.auth && req.token == "" {
		return &domain.AuthError{Reason: "no session token for " + req.op}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Token "+req.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Backend request failed",
			slog.String("op", req.op),
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Any("error", err),
		)
		return &domain.NetworkError{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend request completed",
		slog.String("op", req.op),
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(req, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return &domain.APIError{
			Status:  resp.StatusCode,
			Message: domain.ErrUnexpectedResponse.Error(),
			Err:     fmt.Errorf("%w: decode %s response: %v", domain.ErrUnexpectedResponse, req.op, err),
		}
	}
	return nil
}

func (c *Client) errorFromResponse(req request, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message, ok := parseErrorMessage(body)
	if !ok {
		c.logger.Warn("Backend returned a non-JSON error",
			slog.String("op", req.op),
			slog.Int("status", resp.StatusCode),
			slog.String("content_type", resp.Header.Get("Content-Type")),
		)
		return &domain.APIError{
			Status:  resp.StatusCode,
			Message: domain.ErrUnexpectedResponse.Error(),
			Err:     domain.ErrUnexpectedResponse,
		}
	}

	if req.token != "" && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return &domain.AuthError{Reason: message}
	}

	return &domain.APIError{Status: resp.StatusCode, Message: message}
}

// parseErrorMessage extracts the user-facing message of a JSON error body.
// It prefers "message", then "detail" and "error", then the first field
// error of a validation payload such as {"email": ["already exists"]}.
func parseErrorMessage(body []byte) (string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", false
	}

	for _, key := range []string{"message", "detail", "error"} {
		if msg := rawText(fields[key]); msg != "" {
			return msg, true
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := rawText(fields[k]); msg != "" {
			if k == "non_field_errors" {
				return msg, true
			}
			return k + ": " + msg, true
		}
	}
	return "", true
}

// rawText returns a string value, or the first string of an array value
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// ack is the body of endpoints that only acknowledge a request
type ack struct {
	Message string `json:"message"`
}
