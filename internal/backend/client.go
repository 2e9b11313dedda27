package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL is the hosted relay backend.
const DefaultBaseURL = "https://telebot-0ev9.onrender.com/api"

const maxBodyBytes = 4 << 20

// Client talks to the relay backend's REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("backend"),
	}
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken sets the bearer token attached to every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a bearer token. The token is not stored
// on the client; callers decide whether to keep it.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	status, err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "login response did not include a token"
		}
		return nil, &APIError{Status: status, Message: msg}
	}
	return &resp, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	_, err := c.do(ctx, http.MethodPost, "/auth/register", body, nil)
	return err
}

// ListGroups returns every group visible to the signed-in user.
func (c *Client) ListGroups(ctx context.Context) ([]RemoteGroup, error) {
	var groups []RemoteGroup
	if _, err := c.do(ctx, http.MethodGet, "/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup registers a destination chat with the backend.
func (c *Client) CreateGroup(ctx context.Context, displayName, groupID string) (*RemoteGroup, error) {
	body := RemoteGroup{GroupID: groupID, DisplayName: displayName}
	var created RemoteGroup
	if _, err := c.do(ctx, http.MethodPost, "/groups", body, &created); err != nil {
		return nil, err
	}
	if created.GroupID == "" {
		created = body
	}
	return &created, nil
}

// ListMessages returns the message history of one group.
func (c *Client) ListMessages(ctx context.Context, groupID string) ([]Message, error) {
	var resp struct {
		Messages []Message `json:"messages"`
	}
	path := "/messages/group/" + url.PathEscape(groupID)
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Messages == nil {
		return []Message{}, nil
	}
	return resp.Messages, nil
}

// Schedule submits a message for immediate, timed or recurring delivery.
func (c *Client) Schedule(ctx context.Context, req ScheduleRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/messages/schedule", req, nil)
	return err
}

// TogglePause flips the paused flag of a scheduled message on the backend.
func (c *Client) TogglePause(ctx context.Context, messageID string) error {
	path := "/messages/schedule/" + url.PathEscape(messageID) + "/toggle"
	_, err := c.do(ctx, http.MethodPatch, path, nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return 0, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, &TransportError{Op: op, Err: err}
	}

	c.logger.Debug("request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, parseAPIError(resp.StatusCode, data)
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", op, err)
		}
	}
	return resp.StatusCode, nil
}
