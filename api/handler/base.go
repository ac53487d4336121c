package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/logger"
)

const internalErrorMessage = "Internal Server Error"

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return h.adapter.Attach(ctx)
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(transport.NewError(internalErrorMessage))
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		log := h.logger.With(zap.String("request_id", httpcontext.RequestID(ctx)))
		log.Error("request failed",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err),
		)
	}
	h.respondJSON(ctx, status, transport.NewError(message))
}

// decode unmarshals the request body, answering 400 "Invalid request body"
// when it is not valid JSON.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return false
	}
	return true
}

func decodeLenient(body []byte, dst interface{}) error {
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

// currentUser returns the caller the auth middleware put on the request, as
// carried by the attached context. A route wired without the middleware
// answers 401.
func (h baseHandler) currentUser(stdCtx context.Context, ctx *fasthttp.RequestCtx) (string, bool) {
	userID := httpcontext.UserID(stdCtx)
	if userID == "" {
		h.respondError(ctx, domain.ErrMissingToken)
		return "", false
	}
	return userID, true
}

func (h baseHandler) log(ctx context.Context) *zap.Logger {
	log := logger.WithRequestID(ctx, h.logger)
	if userID := httpcontext.UserID(ctx); userID != "" {
		log = log.With(zap.String("user_id", userID))
	}
	return log
}

func mapError(err error) (int, string) {
	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		return http.StatusInternalServerError, internalErrorMessage
	}
	switch dErr.Code {
	case domain.ErrCodeInvalid, domain.ErrCodeConflict:
		return http.StatusBadRequest, dErr.Message
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, dErr.Message
	case domain.ErrCodeForbidden:
		return http.StatusForbidden, dErr.Message
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, dErr.Message
	case domain.ErrCodeRateLimited:
		return http.StatusTooManyRequests, dErr.Message
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}
