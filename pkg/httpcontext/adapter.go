package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

// Key is the type of context values set by Attach.
type Key string

const KeyUserID Key = "user_id"

// User value keys shared between middleware and handlers on *fasthttp.RequestCtx.
const (
	UserValueRequestID = "httpcontext.request_id"
	UserValueUserID    = "httpcontext.user_id"
)

const HeaderRequestID = "X-Request-ID"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches
// it with the request ID and the authenticated user.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if userID := UserIDFromRequest(ctx); userID != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserID, userID)
	}

	return stdCtx, cancel
}

// RequestID returns the request's ID, assigning one on first use. An inbound
// X-Request-ID header is honoured. The ID is echoed on the response.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id, ok := ctx.UserValue(UserValueRequestID).(string); ok && id != "" {
		return id
	}
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID)))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue(UserValueRequestID, id)
	ctx.Response.Header.Set(HeaderRequestID, id)
	return id
}

// SetUserID records the authenticated caller on the request.
func SetUserID(ctx *fasthttp.RequestCtx, userID string) {
	ctx.SetUserValue(UserValueUserID, userID)
}

// UserIDFromRequest returns the caller recorded by SetUserID.
func UserIDFromRequest(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return ""
	}
	userID, _ := ctx.UserValue(UserValueUserID).(string)
	return userID
}

// UserID returns the caller attached by Adapter.Attach.
func UserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	userID, _ := ctx.Value(KeyUserID).(string)
	return userID
}
