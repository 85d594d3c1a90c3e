// Package api is the HTTP client for the dialog action endpoints.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/matheus3301/pawchat/internal/upload"
	"github.com/matheus3301/pawchat/internal/voice"
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// Client issues the per-action POST requests for one chat server.
// Requests are fire-and-forget: failures surface to the caller and are
// never retried or queued.
type Client struct {
	base *url.URL
	http *http.Client
	csrf string
}

// New creates a client for the given server origin. sessionCookie
// authenticates as the signed-in user.
func New(serverURL, sessionCookie string) (*Client, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", serverURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if sessionCookie != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: "sessionid", Value: sessionCookie}})
	}

	return &Client{
		base: base,
		http: &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}, nil
}

var csrfFieldRegexp = regexp.MustCompile(`name=["']csrfmiddlewaretoken["']\s+value=["']([^"']+)["']`)

// FetchCSRFToken loads the dialog page and reads the token from its hidden
// form field. Must be called once before any send.
func (c *Client) FetchCSRFToken(ctx context.Context, dialogID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/chat/%s/", dialogID), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch dialog page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return &StatusError{Code: resp.StatusCode, Body: readBody(resp.Body)}
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read dialog page: %w", err)
	}
	m := csrfFieldRegexp.FindSubmatch(page)
	if m == nil {
		return fmt.Errorf("no csrfmiddlewaretoken field on dialog page")
	}
	c.csrf = string(m[1])
	return nil
}

// SetCSRFToken overrides the token, bypassing the page scrape.
func (c *Client) SetCSRFToken(token string) {
	c.csrf = token
}

// SendText posts a text message.
func (c *Client) SendText(ctx context.Context, dialogID, content string) error {
	form := url.Values{"content": {content}}
	return c.postForm(ctx, fmt.Sprintf("/chat/%s/send/", dialogID), form)
}

// SendLocation posts a shared coordinate.
func (c *Client) SendLocation(ctx context.Context, dialogID string, lat, lon float64) error {
	form := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	return c.postForm(ctx, fmt.Sprintf("/chat/%s/send-location/", dialogID), form)
}

// SendVoice posts a recorded clip as multipart audio plus its estimated
// duration in whole seconds.
func (c *Client) SendVoice(ctx context.Context, dialogID string, clip voice.Clip) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("audio", "voice.mp3")
	if err != nil {
		return err
	}
	if _, err := part.Write(clip.Data); err != nil {
		return err
	}
	if err := w.WriteField("duration", strconv.Itoa(clip.Duration)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.post(ctx, fmt.Sprintf("/chat/%s/send-voice/", dialogID), w.FormDataContentType(), &body)
}

// SendFile posts a validated attachment.
func (c *Client) SendFile(ctx context.Context, dialogID string, info upload.FileInfo, data []byte) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", info.Name)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.post(ctx, fmt.Sprintf("/chat/%s/send-file/", dialogID), w.FormDataContentType(), &body)
}

// WebSocketURL returns the dialog channel URL. The scheme mirrors the
// server scheme: wss iff https.
func (c *Client) WebSocketURL(dialogID string) string {
	scheme := "ws"
	if c.base.Scheme == "https" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s/ws/chat/%s/", scheme, c.base.Host, dialogID)
}

// SessionCookies returns the cookie header value for the server origin, for
// handing off to the WebSocket dial.
func (c *Client) SessionCookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.base)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) error {
	return c.post(ctx, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-CSRFToken", c.csrf)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return &StatusError{Code: resp.StatusCode, Body: readBody(resp.Body)}
	}
	return nil
}

func (c *Client) endpoint(format string, args ...any) string {
	ref := fmt.Sprintf(format, args...)
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + ref
	return u.String()
}

func readBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(data))
}
