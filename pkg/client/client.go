// Package client is a typed Go client for the task tracker API. It keeps the
// caller signed in through a Session and refreshes expired access tokens
// transparently.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tasktracker/domain"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// ListOptions filters GET /tasks. Zero values are omitted from the query.
type ListOptions struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// TaskInput is the body of POST /tasks.
type TaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// TaskPatch is the body of PATCH /tasks/{id}; nil fields are not sent.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type Client struct {
	baseURL       string
	transport     Doer
	authed        Doer
	session       *Session
	timeout       time.Duration
	onAuthFailure func()
}

type Option func(*Client)

// WithTransport replaces the underlying fasthttp client.
func WithTransport(d Doer) Option {
	return func(c *Client) { c.transport = d }
}

// WithTimeout bounds every request of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithAuthFailureHook runs fn once a session can no longer be refreshed.
func WithAuthFailureHook(fn func()) Option {
	return func(c *Client) { c.onAuthFailure = fn }
}

// New builds a client for baseURL, e.g. "http://localhost:9000".
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = &fasthttp.Client{
			Name:         "taskctl",
			ReadTimeout:  c.timeout,
			WriteTimeout: c.timeout,
		}
	}
	c.authed = WithAuthRetry(c.transport, session, c.refresh, c.onAuthFailure)
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

// Register creates an account and starts a session for it.
func (c *Client) Register(email, password string) (*AuthResult, error) {
	return c.signIn("/auth/register", email, password)
}

// Login starts a session.
func (c *Client) Login(email, password string) (*AuthResult, error) {
	return c.signIn("/auth/login", email, password)
}

// Logout tells the server and forgets the local session. The local session is
// cleared even when the server cannot be reached.
func (c *Client) Logout() error {
	err := c.call(c.transport, http.MethodPost, "/auth/logout", nil, nil, nil)
	if clearErr := c.session.Clear(); clearErr != nil {
		return errors.Join(err, clearErr)
	}
	return err
}

// Me returns the signed-in account as the server sees it.
func (c *Client) Me() (domain.PublicUser, error) {
	var user domain.PublicUser
	err := c.call(c.authed, http.MethodGet, "/auth/me", nil, nil, &user)
	return user, err
}

func (c *Client) ListTasks(opts ListOptions) (*domain.TaskPage, error) {
	query := map[string]string{}
	if opts.Page > 0 {
		query["page"] = strconv.Itoa(opts.Page)
	}
	if opts.Limit > 0 {
		query["limit"] = strconv.Itoa(opts.Limit)
	}
	if opts.Status != "" {
		query["status"] = opts.Status
	}
	if opts.Search != "" {
		query["search"] = opts.Search
	}
	var page domain.TaskPage
	if err := c.call(c.authed, http.MethodGet, "/tasks", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetTask(id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.call(c.authed, http.MethodGet, taskPath(id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(in TaskInput) (*domain.Task, error) {
	var task domain.Task
	if err := c.call(c.authed, http.MethodPost, "/tasks", nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(id string, patch TaskPatch) (*domain.Task, error) {
	var task domain.Task
	if err := c.call(c.authed, http.MethodPatch, taskPath(id), nil, patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ToggleTask(id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.call(c.authed, http.MethodPatch, taskPath(id)+"/toggle", nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(id string) error {
	return c.call(c.authed, http.MethodDelete, taskPath(id), nil, nil, nil)
}

func (c *Client) signIn(path, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.call(c.transport, http.MethodPost, path, nil, body, &res); err != nil {
		return nil, err
	}
	if err := c.session.Start(res); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &res, nil
}

// refresh goes straight to the transport so a rejected refresh token is not
// itself retried.
func (c *Client) refresh(refreshToken string) (string, error) {
	var res struct {
		AccessToken string `json:"accessToken"`
	}
	body := map[string]string{"token": refreshToken}
	if err := c.call(c.transport, http.MethodPost, "/auth/refresh", nil, body, &res); err != nil {
		return "", err
	}
	return res.AccessToken, nil
}

func (c *Client) call(d Doer, method, path string, query map[string]string, in, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	args := req.URI().QueryArgs()
	for k, v := range query {
		args.Set(k, v)
	}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	if err := d.Do(req, resp); err != nil {
		return err
	}

	status := resp.StatusCode()
	if status >= http.StatusBadRequest {
		return decodeError(status, resp.Body())
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
		envelope.Error = http.StatusText(status)
	}
	return &APIError{Status: status, Message: envelope.Error}
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}
