// Package newsletter is a thin client of the external email subscription
// service.
package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/codeboost/internal/apperr"
)

// DefaultEndpoint is the subscription service base URL.
const DefaultEndpoint = "https://email.code-boost.com"

// minIDLength is the length an id must exceed before it is sent.
const minIDLength = 20

// Status is the observable outcome of a subscribe call.
type Status string

const (
	// StatusNone is the inert state: nothing is shown to the visitor.
	StatusNone              Status = ""
	StatusAlreadyRegistered Status = "already-registered"
	StatusConfirmationSent  Status = "confirmation-sent"
)

// Client posts to the subscription service. Requests are never retried.
type Client struct {
	endpoint string
	hc       *http.Client
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the logger used for failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the service at endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		hc:       &http.Client{Timeout: 10 * time.Second},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type idRequest struct {
	ID string `json:"_id"`
}

type serviceReply struct {
	Message string `json:"message"`
	ID      string `json:"_id"`
}

// Subscribe registers email. Transport failures and unexpected responses
// return StatusNone together with the error, which callers only log.
func (c *Client) Subscribe(ctx context.Context, email string) (Status, error) {
	email = strings.TrimSpace(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return StatusNone, fmt.Errorf("%w: email %v", apperr.ErrInvalidInput, err)
	}

	code, body, err := c.post(ctx, "/api/users", subscribeRequest{Email: email})
	if err != nil {
		c.logger.Warn("newsletter: subscribe failed", slog.String("error", err.Error()))
		return StatusNone, err
	}

	var reply serviceReply
	_ = json.Unmarshal(body, &reply)

	switch {
	case code == http.StatusConflict || strings.Contains(strings.ToLower(reply.Message), "already exists"):
		return StatusAlreadyRegistered, nil
	case code >= 200 && code < 300:
		return StatusConfirmationSent, nil
	}
	err = fmt.Errorf("newsletter: subscribe: unexpected status %d", code)
	c.logger.Warn("newsletter: subscribe failed", slog.Int("status", code))
	return StatusNone, err
}

// Confirm marks the subscription id as confirmed. Ids of 20 characters or
// fewer are ignored and report false.
func (c *Client) Confirm(ctx context.Context, id string) (bool, error) {
	return c.postID(ctx, "/api/users/confirm", id)
}

// Unsubscribe removes the subscription id. Short ids are ignored as in Confirm.
func (c *Client) Unsubscribe(ctx context.Context, id string) (bool, error) {
	return c.postID(ctx, "/api/users/unsubscribe", id)
}

func (c *Client) postID(ctx context.Context, path, id string) (bool, error) {
	if len(id) <= minIDLength {
		return false, nil
	}
	code, _, err := c.post(ctx, path, idRequest{ID: id})
	if err != nil {
		c.logger.Warn("newsletter: request failed", slog.String("path", path), slog.String("error", err.Error()))
		return false, err
	}
	if code < 200 || code >= 300 {
		c.logger.Warn("newsletter: request rejected", slog.String("path", path), slog.Int("status", code))
		return false, fmt.Errorf("newsletter: %s: unexpected status %d", path, code)
	}
	return true, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("newsletter: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, fmt.Errorf("newsletter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: newsletter: %v", apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("newsletter: read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
