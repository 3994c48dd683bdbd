// Package client is a Go client for the emoji combo API. It keeps the session
// token, attaches it as a bearer token and, when the server reports an expired
// token, refreshes once and retries the request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/auth"
	"github.com/user/emojicringe-go/combos"
	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/users"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Code       string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client talks to one API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the server at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session = NewSession(c.refreshToken)
	return c
}

// Session exposes the token state.
func (c *Client) Session() *Session { return c.session }

func (c *Client) refreshToken(ctx context.Context, stale string) (string, error) {
	var out auth.Session
	if err := c.send(ctx, http.MethodPost, "/api/auth/refresh-token", stale, nil, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// send performs one request. in and out may be nil.
func (c *Client) send(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// do sends an authenticated request, refreshing and retrying once when the
// token has expired.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	token, err := c.session.Token(ctx)
	if err != nil {
		return err
	}

	err = c.send(ctx, method, path, token, in, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != apperror.CodeTokenExpired {
		return err
	}

	token, err = c.session.Refresh(ctx, token)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, token, in, out)
}

// Register creates an account and starts a session.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	var out auth.AuthResponse
	req := auth.RegisterRequest{Username: username, Email: email, Password: password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	c.session.Set(out.Token)
	return out.User, nil
}

// Login starts a session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out auth.AuthResponse
	req := auth.LoginRequest{Email: email, Password: password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	c.session.Set(out.Token)
	return out.User, nil
}

// Logout ends the session locally and tells the server to clear its cookie.
func (c *Client) Logout(ctx context.Context) error {
	c.session.Clear()
	return c.send(ctx, http.MethodPost, "/api/auth/logout", "", nil, nil)
}

// Me returns the logged-in user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out auth.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// ListCombos fetches one page of combos. Zero page or limit leave the server
// defaults; a nil createdBy lists every owner.
func (c *Client) ListCombos(ctx context.Context, page, limit int, createdBy *int64) (*combos.PaginatedCombosResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if createdBy != nil {
		q.Set("createdBy", strconv.FormatInt(*createdBy, 10))
	}
	path := "/api/emoji-combos"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out combos.PaginatedCombosResponse
	if err := c.send(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCombo fetches one combo.
func (c *Client) GetCombo(ctx context.Context, id int64) (*models.EmojiCombo, error) {
	var out models.EmojiCombo
	if err := c.send(ctx, http.MethodGet, comboPath(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCombo posts a combo as the logged-in user.
func (c *Client) CreateCombo(ctx context.Context, emojis, description string) (*models.EmojiCombo, error) {
	var out models.EmojiCombo
	req := combos.CreateRequest{Emojis: emojis, Description: description}
	if err := c.do(ctx, http.MethodPost, "/api/emoji-combos", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCombo changes the non-nil fields of an owned combo.
func (c *Client) UpdateCombo(ctx context.Context, id int64, emojis, description *string) (*models.EmojiCombo, error) {
	var out models.EmojiCombo
	req := combos.UpdateRequest{Emojis: emojis, Description: description}
	if err := c.do(ctx, http.MethodPut, comboPath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCombo deletes an owned combo.
func (c *Client) DeleteCombo(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, comboPath(id), nil, nil)
}

// MyCombos lists the logged-in user's combos, newest first.
func (c *Client) MyCombos(ctx context.Context) ([]models.EmojiCombo, error) {
	var out []models.EmojiCombo
	if err := c.do(ctx, http.MethodGet, "/api/my-emoji-combos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Users lists every user's id and username.
func (c *Client) Users(ctx context.Context) ([]models.UserSummary, error) {
	var out []models.UserSummary
	if err := c.send(ctx, http.MethodGet, "/api/users", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserCombos lists one user's combos.
func (c *Client) UserCombos(ctx context.Context, userID int64) (*users.UserCombosResponse, error) {
	var out users.UserCombosResponse
	path := fmt.Sprintf("/api/user/%d/emoji-combos", userID)
	if err := c.send(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func comboPath(id int64) string {
	return "/api/emoji-combos/" + strconv.FormatInt(id, 10)
}
