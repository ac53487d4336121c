package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/fasthttp/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/token"
)

func newCtx(method, uri string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func errorBody(t *testing.T, ctx *fasthttp.RequestCtx) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	return body
}

func TestJWTAuth(t *testing.T) {
	tokens := token.NewService(token.Config{AccessSecret: "a", RefreshSecret: "r"})
	pair, err := tokens.IssuePair("user-1")
	require.NoError(t, err)

	var seen string
	handler := JWTAuth(tokens, nil)(func(ctx *fasthttp.RequestCtx) {
		seen = httpcontext.UserIDFromRequest(ctx)
		ctx.SetStatusCode(http.StatusOK)
	})

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "Access Token Required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Access Token Required"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "Access Token Required"},
		{"garbage", "Bearer nope", http.StatusForbidden, "Invalid or Expired Token"},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusForbidden, "Invalid or Expired Token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			ctx := newCtx("GET", "/tasks")
			if tc.header != "" {
				ctx.Request.Header.Set("Authorization", tc.header)
			}
			handler(ctx)
			assert.Equal(t, tc.status, ctx.Response.StatusCode())
			body := errorBody(t, ctx)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.message, body["error"])
			assert.Empty(t, seen)
		})
	}

	ctx := newCtx("GET", "/tasks")
	ctx.Request.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	handler(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "user-1", seen)
}

func TestRecover(t *testing.T) {
	handler := Chain(func(*fasthttp.RequestCtx) { panic("boom") }, AccessLog(nil), Recover(nil))
	ctx := newCtx("GET", "/explode")

	require.NotPanics(t, func() { handler(ctx) })
	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	assert.Equal(t, "Internal Server Error", errorBody(t, ctx)["error"])
	assert.NotEmpty(t, ctx.Response.Header.Peek(httpcontext.HeaderRequestID))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	Chain(func(*fasthttp.RequestCtx) { order = append(order, "handler") }, mw("outer"), nil, mw("inner"))(newCtx("GET", "/"))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS([]string{"http://localhost:5173"})(func(ctx *fasthttp.RequestCtx) {
		called = true
	})

	ctx := newCtx("OPTIONS", "/tasks")
	ctx.Request.Header.Set("Origin", "http://localhost:5173")
	ctx.Request.Header.Set("Access-Control-Request-Method", "PATCH")
	handler(ctx)
	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())
	assert.Equal(t, "http://localhost:5173", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "true", string(ctx.Response.Header.Peek("Access-Control-Allow-Credentials")))
	assert.Contains(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Methods")), "PATCH")

	ctx = newCtx("GET", "/tasks")
	ctx.Request.Header.Set("Origin", "http://evil.example")
	handler(ctx)
	assert.True(t, called)
	assert.Empty(t, ctx.Response.Header.Peek("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	ctx := newCtx("GET", "/")
	SecurityHeaders(func(*fasthttp.RequestCtx) {})(ctx)
	assert.Equal(t, "nosniff", string(ctx.Response.Header.Peek("X-Content-Type-Options")))
	assert.Equal(t, "DENY", string(ctx.Response.Header.Peek("X-Frame-Options")))
}

func TestMetrics_RouteLabelsAndExposition(t *testing.T) {
	metrics := NewMetrics("tasktracker")

	r := router.New()
	r.SaveMatchedRoutePath = true
	r.GET("/tasks/{id}", func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(http.StatusNotFound) })
	r.GET("/metrics", metrics.Handler())
	handler := metrics.Middleware(r.Handler)

	handler(newCtx("GET", "/tasks/123"))
	handler(newCtx("GET", "/tasks/456"))

	ctx := newCtx("GET", "/metrics")
	handler(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	body := string(ctx.Response.Body())
	assert.Contains(t, body, `tasktracker_http_requests_total{method="GET",route="/tasks/{id}",status="404"} 2`)
	assert.False(t, strings.Contains(body, "/tasks/123"), "raw ids must not become labels")
}
