// Package api is the storage backend that talks to the remote drawings API.
// Each operation is a single HTTP round trip; nothing is cached or retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"excaliapp/core"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// minKeyLength is the shortest credential treated as present.
const minKeyLength = 10

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api responded %d %s: %s", e.Code, http.StatusText(e.Code), strings.TrimSpace(e.Body))
}

// Unwrap maps the status code onto the core error taxonomy.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusBadRequest:
		return core.ErrBadRequest
	case http.StatusUnauthorized:
		return core.ErrUnauthorized
	case http.StatusForbidden:
		return core.ErrForbidden
	case http.StatusNotFound:
		return core.ErrNotFound
	default:
		return core.ErrUnknown
	}
}

type backend struct {
	baseURL string
	base    *http.Client

	mu  sync.RWMutex
	key string
}

// NewBackend returns a backend for the API rooted at baseURL (for example
// "https://draw.example.com"). A nil client uses http.DefaultClient.
func NewBackend(baseURL, key string, client *http.Client) *backend {
	if client == nil {
		client = http.DefaultClient
	}
	return &backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    client,
		key:     key,
	}
}

// SetAuthKey replaces the bearer credential used for later requests.
func (b *backend) SetAuthKey(key string) {
	b.mu.Lock()
	b.key = key
	b.mu.Unlock()
}

func (b *backend) authKey() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.TrimSpace(b.key)
}

func (b *backend) Available(ctx context.Context) bool {
	if len(b.authKey()) < minKeyLength {
		logrus.Warn("API storage is not available: auth key is empty")
		return false
	}
	return true
}

// client returns an HTTP client that adds the current bearer credential.
func (b *backend) client(ctx context.Context) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.base)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: b.authKey(),
		TokenType:   "Bearer",
	}))
}

func (b *backend) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client(ctx).Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &StatusError{Code: resp.StatusCode, Body: string(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}
	return nil
}

func drawingPath(id string) string {
	return "/api/drawings/" + url.PathEscape(id)
}

func (b *backend) ListFiles(ctx context.Context) (map[string]*core.Drawing, error) {
	files := make(map[string]*core.Drawing)
	if err := b.do(ctx, http.MethodGet, "/api/drawings/", nil, &files); err != nil {
		return nil, err
	}
	for _, f := range files {
		f.InStorage = core.InAPI
	}
	return files, nil
}

func (b *backend) GetFile(ctx context.Context, id string) (*core.Drawing, error) {
	var f core.Drawing
	err := b.do(ctx, http.MethodGet, drawingPath(id), nil, &f)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.InStorage = core.InAPI
	return &f, nil
}

func (b *backend) SaveFile(ctx context.Context, req core.SaveRequest) (*core.Drawing, error) {
	var f core.Drawing
	if err := b.do(ctx, http.MethodPut, "/api/drawings/", req, &f); err != nil {
		return nil, err
	}
	f.InStorage = core.InAPI
	return &f, nil
}

func (b *backend) DeleteFile(ctx context.Context, id string) error {
	return b.do(ctx, http.MethodDelete, drawingPath(id), nil, nil)
}
