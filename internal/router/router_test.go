package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	"github.com/fastygo/tasktracker/internal/middleware"
	"github.com/fastygo/tasktracker/internal/passhash"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/token"
	"github.com/fastygo/tasktracker/repository/memory"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
	profileUC "github.com/fastygo/tasktracker/usecase/profile"
	taskUC "github.com/fastygo/tasktracker/usecase/task"
)

const (
	accessSecret  = "test-access"
	refreshSecret = "test-refresh"
)

type testServer struct {
	t       *testing.T
	handler fasthttp.RequestHandler
}

type response struct {
	status int
	raw    []byte
	body   map[string]interface{}
}

func (r response) str(key string) string {
	v, _ := r.body[key].(string)
	return v
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := memory.NewUserRepository()
	tasks := memory.NewTaskRepository()
	tokens := token.NewService(token.Config{AccessSecret: accessSecret, RefreshSecret: refreshSecret})
	adapter := httpcontext.NewAdapter(time.Second)

	handlers := Handlers{
		Auth:    apiHandler.NewAuthHandler(authUC.New(users, tokens, passhash.New(bcrypt.MinCost), nil, nil), adapter, nil),
		Profile: apiHandler.NewProfileHandler(profileUC.New(users, nil), adapter, nil),
		Task:    apiHandler.NewTaskHandler(taskUC.New(tasks, nil), adapter, nil),
		Health:  apiHandler.NewHealthHandler(monitor.New(time.Minute, nil), adapter, nil),
	}
	r := New(handlers, middleware.JWTAuth(tokens, nil), Options{})
	return &testServer{
		t:       t,
		handler: Handler(r, middleware.AccessLog(nil), middleware.Recover(nil)),
	}
}

func (s *testServer) do(method, uri, accessToken string, payload interface{}) response {
	s.t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	switch p := payload.(type) {
	case nil:
	case string:
		req.SetBodyString(p)
	default:
		raw, err := json.Marshal(p)
		require.NoError(s.t, err)
		req.SetBody(raw)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.handler(ctx)

	res := response{status: ctx.Response.StatusCode(), raw: append([]byte(nil), ctx.Response.Body()...)}
	if len(res.raw) > 0 && res.raw[0] == '{' {
		require.NoError(s.t, json.Unmarshal(res.raw, &res.body))
	}
	return res
}

func (s *testServer) register(email string) (access, refresh string) {
	s.t.Helper()
	res := s.do("POST", "/auth/register", "", map[string]string{"email": email, "password": "secret1"})
	require.Equal(s.t, http.StatusCreated, res.status, string(res.raw))
	return res.str("accessToken"), res.str("refreshToken")
}

func (s *testServer) createTask(access, title string) string {
	s.t.Helper()
	res := s.do("POST", "/tasks", access, map[string]string{"title": title})
	require.Equal(s.t, http.StatusCreated, res.status, string(res.raw))
	return res.str("id")
}

func TestRegister_ResponseShape(t *testing.T) {
	s := newTestServer(t)

	res := s.do("POST", "/auth/register", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, "User registered successfully", res.str("message"))
	assert.NotEmpty(t, res.str("accessToken"))
	assert.NotEmpty(t, res.str("refreshToken"))

	user, ok := res.body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotEmpty(t, user["id"])
	assert.Len(t, user, 2)
	assert.NotContains(t, string(res.raw), "password")
	assert.NotContains(t, string(res.raw), "$2a$")
}

func TestRegister_Failures(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com")

	cases := []struct {
		name    string
		payload interface{}
		message string
	}{
		{"duplicate", map[string]string{"email": "a@x.com", "password": "secret1"}, "User already exists"},
		{"bad email", map[string]string{"email": "nope", "password": "secret1"}, "email: invalid email address"},
		{"short password", map[string]string{"email": "b@x.com", "password": "123"}, "password: must contain at least 6 characters"},
		{"malformed json", `{"email":`, "Invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := s.do("POST", "/auth/register", "", tc.payload)
			assert.Equal(t, http.StatusBadRequest, res.status)
			assert.Equal(t, false, res.body["success"])
			assert.Equal(t, tc.message, res.str("error"))
		})
	}
}

func TestRegister_LongPassword(t *testing.T) {
	s := newTestServer(t)
	password := strings.Repeat("p", 73)

	res := s.do("POST", "/auth/register", "", map[string]string{"email": "long@x.com", "password": password})
	require.Equal(t, http.StatusCreated, res.status, string(res.raw))

	res = s.do("POST", "/auth/login", "", map[string]string{"email": "long@x.com", "password": password})
	assert.Equal(t, http.StatusOK, res.status)

	res = s.do("POST", "/auth/login", "", map[string]string{"email": "long@x.com", "password": strings.Repeat("p", 72)})
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestLogin_IndistinguishableFailures(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com")

	wrongPassword := s.do("POST", "/auth/login", "", map[string]string{"email": "a@x.com", "password": "wrong!!"})
	unknownEmail := s.do("POST", "/auth/login", "", map[string]string{"email": "ghost@x.com", "password": "secret1"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.status)
	assert.Equal(t, wrongPassword.status, unknownEmail.status)
	assert.True(t, bytes.Equal(wrongPassword.raw, unknownEmail.raw))
	assert.Equal(t, "Invalid credentials", wrongPassword.str("error"))

	ok := s.do("POST", "/auth/login", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, ok.status)
	assert.Equal(t, "Login successful", ok.str("message"))
	assert.NotEmpty(t, ok.str("accessToken"))
}

func TestRefreshAndLogout(t *testing.T) {
	s := newTestServer(t)
	access, refresh := s.register("a@x.com")

	res := s.do("POST", "/auth/refresh", "", map[string]string{"token": refresh})
	require.Equal(t, http.StatusOK, res.status)
	assert.NotEmpty(t, res.str("accessToken"))
	assert.Len(t, res.body, 1)

	for name, payload := range map[string]interface{}{
		"access token as refresh": map[string]string{"token": access},
		"missing token":           map[string]string{},
		"empty body":              nil,
		"malformed body":          "{",
	} {
		t.Run(name, func(t *testing.T) {
			res := s.do("POST", "/auth/refresh", "", payload)
			assert.Equal(t, http.StatusForbidden, res.status)
			assert.Equal(t, "Invalid Refresh Token", res.str("error"))
		})
	}

	res = s.do("GET", "/tasks", refresh, nil)
	assert.Equal(t, http.StatusForbidden, res.status, "refresh token must not authorize requests")

	res = s.do("POST", "/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "Logged out successfully", res.str("message"))
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	access, _ := s.register("a@x.com")

	res := s.do("GET", "/auth/me", access, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "a@x.com", res.str("email"))

	res = s.do("GET", "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestTasks_RequireToken(t *testing.T) {
	s := newTestServer(t)

	res := s.do("GET", "/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "Access Token Required", res.str("error"))

	res = s.do("GET", "/tasks", "not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "Invalid or Expired Token", res.str("error"))
}

func TestUpdateTask_NullDescriptionIsUntouched(t *testing.T) {
	s := newTestServer(t)
	access, _ := s.register("a@x.com")

	res := s.do("POST", "/tasks", access, map[string]string{"title": "buy milk", "description": "2L"})
	require.Equal(t, http.StatusCreated, res.status)
	id := res.str("id")

	res = s.do("PATCH", "/tasks/"+id, access, `{"description":null,"status":"IN_PROGRESS"}`)
	require.Equal(t, http.StatusOK, res.status, string(res.raw))
	assert.Equal(t, "2L", res.str("description"))
	assert.Equal(t, "IN_PROGRESS", res.str("status"))
}

func TestTaskLifecycleScenario(t *testing.T) {
	s := newTestServer(t)
	access, _ := s.register("a@x.com")

	res := s.do("POST", "/tasks", access, map[string]string{"title": "buy milk"})
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, "PENDING", res.str("status"))
	assert.Contains(t, string(res.raw), `"description":null`)
	id := res.str("id")

	res = s.do("PATCH", "/tasks/"+id+"/toggle", access, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "COMPLETED", res.str("status"))

	res = s.do("GET", "/tasks?status=PENDING", access, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, string(res.raw), `"tasks":[]`)
	assert.Equal(t, map[string]interface{}{
		"total": float64(0), "page": float64(1), "limit": float64(10), "totalPages": float64(0),
	}, res.body["pagination"])

	res = s.do("PATCH", "/tasks/"+id+"/toggle", access, nil)
	assert.Equal(t, "PENDING", res.str("status"))

	res = s.do("PATCH", "/tasks/"+id, access, map[string]string{"title": "buy oat milk", "description": "2L"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "buy oat milk", res.str("title"))
	assert.Equal(t, "2L", res.str("description"))
	assert.Equal(t, "PENDING", res.str("status"))

	res = s.do("PATCH", "/tasks/"+id, access, map[string]string{"status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = s.do("DELETE", "/tasks/"+id, access, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "Task deleted successfully", res.str("message"))

	res = s.do("GET", "/tasks/"+id, access, nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "Task not found", res.str("error"))
}

func TestTasks_OwnershipLooksLikeNotFound(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@x.com")
	bob, _ := s.register("bob@x.com")
	id := s.createTask(alice, "private")

	for _, call := range []struct {
		method, path string
		payload      interface{}
	}{
		{"GET", "/tasks/" + id, nil},
		{"PATCH", "/tasks/" + id, map[string]string{"title": "mine"}},
		{"PATCH", "/tasks/" + id + "/toggle", nil},
		{"DELETE", "/tasks/" + id, nil},
	} {
		res := s.do(call.method, call.path, bob, call.payload)
		assert.Equal(t, http.StatusNotFound, res.status, call.method+" "+call.path)
		assert.Equal(t, "Task not found", res.str("error"))
	}

	res := s.do("GET", "/tasks", bob, nil)
	assert.Contains(t, string(res.raw), `"tasks":[]`)

	res = s.do("GET", "/tasks/"+id, alice, nil)
	assert.Equal(t, "private", res.str("title"))
}

func TestTasks_ListQueryParsing(t *testing.T) {
	s := newTestServer(t)
	access, _ := s.register("a@x.com")
	for i := 1; i <= 12; i++ {
		s.createTask(access, fmt.Sprintf("task %d", i))
	}

	pagination := func(res response) map[string]interface{} {
		p, _ := res.body["pagination"].(map[string]interface{})
		return p
	}

	res := s.do("GET", "/tasks?page=2&limit=5", access, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Len(t, res.body["tasks"], 5)
	assert.Equal(t, float64(3), pagination(res)["totalPages"])

	res = s.do("GET", "/tasks?page=abc&limit=xyz", access, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, float64(1), pagination(res)["page"])
	assert.Equal(t, float64(10), pagination(res)["limit"])

	res = s.do("GET", "/tasks?limit=1000", access, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, float64(100), pagination(res)["limit"])
	assert.Equal(t, float64(1), pagination(res)["totalPages"])

	res = s.do("GET", "/tasks?page=9", access, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, string(res.raw), `"tasks":[]`)
	assert.Equal(t, float64(12), pagination(res)["total"])

	for _, q := range []string{"page=9223372036854775807&limit=10", "page=9223372036854775807&limit=100"} {
		res = s.do("GET", "/tasks?"+q, access, nil)
		require.Equal(t, http.StatusOK, res.status, q)
		assert.Contains(t, string(res.raw), `"tasks":[]`, q)
		assert.Equal(t, float64(12), pagination(res)["total"], q)
	}

	for _, q := range []string{"page=0", "page=-2", "limit=0"} {
		res = s.do("GET", "/tasks?"+q, access, nil)
		assert.Equal(t, http.StatusBadRequest, res.status, q)
	}

	res = s.do("GET", "/tasks?search=task%201", access, nil)
	assert.Equal(t, float64(4), pagination(res)["total"]) // 1, 10, 11, 12

	res = s.do("GET", "/tasks?status=NOPE", access, nil)
	assert.Equal(t, float64(12), pagination(res)["total"])
}

func TestExpiredAccessTokenRefreshFlow(t *testing.T) {
	s := newTestServer(t)
	reg := s.do("POST", "/auth/register", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, reg.status)
	user, _ := reg.body["user"].(map[string]interface{})
	userID, _ := user["id"].(string)
	refresh := reg.str("refreshToken")

	stale := token.NewService(token.Config{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Clock:         func() time.Time { return time.Now().Add(-time.Hour) },
	})
	expired, err := stale.IssueAccessToken(userID)
	require.NoError(t, err)

	res := s.do("GET", "/tasks", expired, nil)
	require.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "Invalid or Expired Token", res.str("error"))

	res = s.do("POST", "/auth/refresh", "", map[string]string{"token": refresh})
	require.Equal(t, http.StatusOK, res.status)
	fresh := res.str("accessToken")

	res = s.do("GET", "/tasks", fresh, nil)
	assert.Equal(t, http.StatusOK, res.status)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	res := s.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "ok", res.str("status"))

	res = s.do("GET", "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, false, res.body["success"])
}

func TestOptionalEndpoints(t *testing.T) {
	s := newTestServer(t)
	res := s.do("GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, res.status)

	metrics := middleware.NewMetrics("test")
	tokens := token.NewService(token.Config{AccessSecret: accessSecret, RefreshSecret: refreshSecret})
	r := New(Handlers{
		Auth: apiHandler.NewAuthHandler(nil, nil, nil),
		Task: apiHandler.NewTaskHandler(nil, nil, nil),
	}, middleware.JWTAuth(tokens, nil), Options{Metrics: metrics, EnablePprof: true})

	ctx := &fasthttp.RequestCtx{}
	var req fasthttp.Request
	req.SetRequestURI("/metrics")
	ctx.Init(&req, nil, nil)
	Handler(r, metrics.Middleware)(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "go_goroutines")
}
