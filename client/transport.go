package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/gofiber/fiber/v2"
)

// Transport is the network boundary the Store calls through.
type Transport interface {
	ListTasks(ctx context.Context, filter task.Filter) ([]task.Task, error)
	CreateTask(ctx context.Context, in task.NewTask) (*task.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	ListUsers(ctx context.Context) ([]user.User, error)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Msg        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Msg)
}

// envelope is the union of every response body the API returns.
type envelope struct {
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Task   *task.Task  `json:"task"`
	Tasks  []task.Task `json:"tasks"`
	Users  []user.User `json:"users"`
}

// HTTPTransport talks to the REST API with Fiber's HTTP client.
type HTTPTransport struct {
	baseURL string
	token   string
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a transport for the API at baseURL
// authenticated with a bearer token.
func NewHTTPTransport(baseURL, token string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// ListTasks calls GET /api/tasks.
func (t *HTTPTransport) ListTasks(ctx context.Context, filter task.Filter) ([]task.Task, error) {
	query := url.Values{}
	if filter.Scope == task.ScopeAssignedToMe {
		query.Set("assignedToMe", "true")
	} else if filter.Scope != "" && filter.Scope != task.ScopeAll {
		query.Set("scope", string(filter.Scope))
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}

	a := fiber.Get(t.baseURL + "/api/tasks")
	a.QueryString(query.Encode())

	env, err := t.do(ctx, a)
	if err != nil {
		return nil, err
	}
	return env.Tasks, nil
}

// CreateTask calls POST /api/tasks.
func (t *HTTPTransport) CreateTask(ctx context.Context, in task.NewTask) (*task.Task, error) {
	a := fiber.Post(t.baseURL + "/api/tasks")
	a.JSON(newTaskBody(in))

	env, err := t.do(ctx, a)
	if err != nil {
		return nil, err
	}
	if env.Task == nil {
		return nil, errors.New("response has no task")
	}
	return env.Task, nil
}

// UpdateTask calls PATCH /api/tasks/:id.
func (t *HTTPTransport) UpdateTask(ctx context.Context, taskID string, patch task.Patch) (*task.Task, error) {
	a := fiber.Patch(t.baseURL + "/api/tasks/" + url.PathEscape(taskID))
	a.JSON(patchBody(patch))

	env, err := t.do(ctx, a)
	if err != nil {
		return nil, err
	}
	if env.Task == nil {
		return nil, errors.New("response has no task")
	}
	return env.Task, nil
}

// DeleteTask calls DELETE /api/tasks/:id.
func (t *HTTPTransport) DeleteTask(ctx context.Context, taskID string) error {
	a := fiber.Delete(t.baseURL + "/api/tasks/" + url.PathEscape(taskID))
	_, err := t.do(ctx, a)
	return err
}

// ListUsers calls GET /api/users.
func (t *HTTPTransport) ListUsers(ctx context.Context) ([]user.User, error) {
	env, err := t.do(ctx, fiber.Get(t.baseURL+"/api/users"))
	if err != nil {
		return nil, err
	}
	return env.Users, nil
}

// do sends the request and decodes the envelope. The context deadline,
// if any, becomes the request timeout.
func (t *HTTPTransport) do(ctx context.Context, a *fiber.Agent) (*envelope, error) {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		a.Timeout(time.Until(deadline))
	}
	a.Set(fiber.HeaderAuthorization, "Bearer "+t.token)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("request failed: %w", errors.Join(errs...))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{StatusCode: code, Msg: fmt.Sprintf("unreadable response: %v", err)}
	}
	if code < 200 || code > 299 || !env.Status {
		return nil, &APIError{StatusCode: code, Msg: env.Msg}
	}
	return &env, nil
}

type newTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

type patchRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

func newTaskBody(in task.NewTask) newTaskRequest {
	req := newTaskRequest{
		Title:       in.Title,
		Description: in.Description,
		AssigneeID:  in.AssigneeID,
		Status:      string(in.Status),
	}
	if in.DueDate != nil {
		req.DueDate = in.DueDate.Format(time.RFC3339)
	}
	return req
}

func patchBody(p task.Patch) patchRequest {
	req := patchRequest{
		Title:       p.Title,
		Description: p.Description,
		AssigneeID:  p.AssigneeID,
	}
	if p.Status != nil {
		s := string(*p.Status)
		req.Status = &s
	}
	if p.DueDate != nil {
		d := p.DueDate.Format(time.RFC3339)
		req.DueDate = &d
	}
	return req
}
