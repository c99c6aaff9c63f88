// Package remote implements gallery.Source and gallery.UserProvider against
// the gallery HTTP backend. Session cookies are kept in a cookie jar.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bagtoad/imggallery/internal/gallery"
)

// Client talks to the backend rooted at a base URL.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// New creates a client for baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout, Jar: jar},
		logger: logger,
	}, nil
}

// SetCookie stores a session cookie, e.g. one obtained from a browser login.
func (c *Client) SetCookie(cookie *http.Cookie) {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{cookie})
}

// endpoint appends each part as one escaped path segment, so an id can never
// climb out of its resource.
func (c *Client) endpoint(parts ...string) string {
	var b strings.Builder
	b.WriteString(c.base.String())
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(escapeSegment(p))
	}
	return b.String()
}

func escapeSegment(s string) string {
	switch s {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return url.PathEscape(s)
}

// do sends req and maps non-2xx statuses to transport errors. The caller
// closes the body of a successful response.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", gallery.ErrTransport, req.Method, req.URL.Path, err)
	}
	c.logger.Debug("backend request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", gallery.ErrNotFound, req.Method, req.URL.Path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s %s", gallery.ErrUnauthenticated, req.Method, req.URL.Path)
	}
	return nil, fmt.Errorf("%w: %s %s: status %d", gallery.ErrTransport, req.Method, req.URL.Path, resp.StatusCode)
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", gallery.ErrTransport, err)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, target string, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", gallery.ErrTransport, req.URL.Path, err)
	}
	return nil
}

type imageList struct {
	Items []gallery.Image `json:"items"`
}

// ListImages fetches the full image list.
func (c *Client) ListImages(ctx context.Context) ([]gallery.Image, error) {
	var list imageList
	if err := c.getJSON(ctx, c.endpoint("image"), &list); err != nil {
		return nil, err
	}
	if list.Items == nil {
		list.Items = []gallery.Image{}
	}
	return list.Items, nil
}

// ImageBytes streams the raw image. The caller closes the reader.
func (c *Client) ImageBytes(ctx context.Context, id string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("image", id, "raw"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ImageSize returns the raw image size from a HEAD request. The bool is false
// when the backend does not report a length.
func (c *Client) ImageSize(ctx context.Context, id string) (int64, bool, error) {
	req, err := c.newRequest(ctx, http.MethodHead, c.endpoint("image", id, "raw"), nil)
	if err != nil {
		return 0, false, err
	}
	resp, err := c.do(req)
	if err != nil {
		return 0, false, err
	}
	resp.Body.Close()
	if resp.ContentLength < 0 {
		return 0, false, nil
	}
	return resp.ContentLength, true, nil
}

// DeleteImage removes an image.
func (c *Client) DeleteImage(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.endpoint("image", id), nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// UploadImage posts r as a multipart form with the file in field "image".
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("%w: build upload: %w", gallery.ErrTransport, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: build upload: %w", gallery.ErrTransport, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("image"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

type userEnvelope struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Data      struct {
		User struct {
			ID       string `json:"_id"`
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	} `json:"data"`
}

// CurrentUser validates the session cookie with the backend.
func (c *Client) CurrentUser(ctx context.Context) (gallery.User, error) {
	var env userEnvelope
	if err := c.getJSON(ctx, c.endpoint("users"), &env); err != nil {
		return gallery.Anonymous, err
	}
	if !env.IsSuccess || env.Data.User.ID == "" {
		return gallery.Anonymous, fmt.Errorf("%w: %s", gallery.ErrUnauthenticated, env.Message)
	}
	name := env.Data.User.Username
	if name == "" {
		name = env.Data.User.Email
	}
	return gallery.User{ID: env.Data.User.ID, Name: name, IsAuthenticated: true}, nil
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("auth", "logout"), nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
