package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
)

// Config holds the backend location and transport limits.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the GNF Invest REST backend. Every authenticated call takes
// the credential explicitly; the client never stores a token.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
	now      func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client for the backend at cfg.BaseURL.
func NewClient(cfg Config, observer Observer, opts ...Option) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authMode int

const (
	authNone authMode = iota
	authUser
	authAdmin
)

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   authMode
	cred   domain.Credential
}

func (c *Client) do(ctx context.Context, in call, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, in, out)
	c.observer.OnCallComplete(CallEvent{
		Method:    in.method,
		Path:      in.path,
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, in call, out any) (int, error) {
	if in.auth != authNone {
		if err := CheckCredential(in.cred, in.auth == authAdmin, c.now()); err != nil {
			return 0, err
		}
	}

	var body io.Reader
	if in.body != nil {
		data, err := json.Marshal(in.body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.cfg.BaseURL + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, in.method, target, body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.auth != authNone {
		req.Header.Set("Authorization", "Bearer "+in.cred.Token)
	}

	op := in.method + " " + in.path
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &domain.NetworkError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, responseError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %s: %v", ErrInvalidResponse, op, err)
	}
	return resp.StatusCode, nil
}

func responseError(status int, body []byte) error {
	msg := serverMessage(body)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		if msg == "" {
			return domain.ErrAuth
		}
		return fmt.Errorf("%w: %s", domain.ErrAuth, msg)
	}
	return &domain.ServerRejection{Status: status, Message: msg}
}

// serverMessage extracts {message} (or {error}) from an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func errorCode(err error) string {
	var rej *domain.ServerRejection
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrAuth):
		return "AUTH"
	case errors.Is(err, domain.ErrNetwork):
		return "NETWORK"
	case errors.As(err, &rej):
		return fmt.Sprintf("REJECTED_%d", rej.Status)
	case errors.Is(err, ErrInvalidResponse):
		return "INVALID_RESPONSE"
	default:
		return "UNKNOWN"
	}
}
