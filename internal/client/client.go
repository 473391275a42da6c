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
	"sync"
	"time"

	"github.com/yukikurage/project-board-api/internal/dto"
)

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 15 * time.Second

// APIError is a non-success envelope returned by the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
}

// Client talks to the project board REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken starts the client with a previously issued token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Logout forgets the token locally. The server keeps no session to revoke.
func (c *Client) Logout() {
	c.SetToken("")
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	return c.authenticate(ctx, http.MethodPost, "/api/auth/register", req)
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	return c.authenticate(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: email, Password: password})
}

func (c *Client) Me(ctx context.Context) (*dto.UserDTO, error) {
	var user dto.UserDTO
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes name or email. The API reissues the token.
func (c *Client) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (*dto.AuthResponse, error) {
	return c.authenticate(ctx, http.MethodPut, "/api/auth/profile", req)
}

func (c *Client) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	_, err := c.do(ctx, http.MethodPut, "/api/auth/password", dto.UpdatePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, nil)
	return err
}

func (c *Client) Stats(ctx context.Context) (*dto.StatsDTO, error) {
	var stats dto.StatsDTO
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListProjects returns the caller's projects, filtered by keyword when it is
// not empty.
func (c *Client) ListProjects(ctx context.Context, keyword string) ([]dto.ProjectDTO, error) {
	q := url.Values{}
	if keyword != "" {
		q.Set("keyword", keyword)
	}

	var projects []dto.ProjectDTO
	if _, err := c.do(ctx, http.MethodGet, withQuery("/api/projects", q), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id uint64) (*dto.ProjectDTO, error) {
	var project dto.ProjectDTO
	if _, err := c.do(ctx, http.MethodGet, projectPath(id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectDTO, error) {
	var project dto.ProjectDTO
	if _, err := c.do(ctx, http.MethodPost, "/api/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id uint64, req dto.UpdateProjectRequest) (*dto.ProjectDTO, error) {
	var project dto.ProjectDTO
	if _, err := c.do(ctx, http.MethodPut, projectPath(id), req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id uint64) error {
	_, err := c.do(ctx, http.MethodDelete, projectPath(id), nil, nil)
	return err
}

// ListTasks returns the tasks of a project, filtered by keyword when it is
// not empty.
func (c *Client) ListTasks(ctx context.Context, projectID uint64, keyword string) ([]dto.TaskDTO, error) {
	q := url.Values{}
	q.Set("projectId", strconv.FormatUint(projectID, 10))
	if keyword != "" {
		q.Set("keyword", keyword)
	}

	var tasks []dto.TaskDTO
	if _, err := c.do(ctx, http.MethodGet, withQuery("/api/tasks", q), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id uint64) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if _, err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if _, err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uint64, req dto.UpdateTaskRequest) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if _, err := c.do(ctx, http.MethodPut, taskPath(id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uint64) error {
	_, err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
	return err
}

// GenerateTasks asks the API for task suggestions. Nothing is saved.
func (c *Client) GenerateTasks(ctx context.Context, projectID uint64, text string) ([]dto.GeneratedTaskDTO, error) {
	var generated []dto.GeneratedTaskDTO
	if _, err := c.do(ctx, http.MethodPost, "/api/tasks/generate", dto.GenerateTasksRequest{
		Text:      text,
		ProjectID: projectID,
	}, &generated); err != nil {
		return nil, err
	}
	return generated, nil
}

func (c *Client) authenticate(ctx context.Context, method, path string, body interface{}) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if _, err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// do sends one request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &env, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func projectPath(id uint64) string {
	return "/api/projects/" + strconv.FormatUint(id, 10)
}

func taskPath(id uint64) string {
	return "/api/tasks/" + strconv.FormatUint(id, 10)
}
