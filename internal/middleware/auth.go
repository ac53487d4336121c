package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/token"
)

// Middleware decorates a fasthttp handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// TokenVerifier is satisfied by *token.Service.
type TokenVerifier interface {
	Verify(tokenString string, kind token.Kind) (*token.Claims, error)
}

// JWTAuth admits requests carrying a valid access token and records the
// caller's user id for the handler. A missing token answers 401, a token that
// fails verification answers 403.
func JWTAuth(verifier TokenVerifier, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				writeError(ctx, http.StatusUnauthorized, domain.ErrMissingToken.Message)
				return
			}

			claims, err := verifier.Verify(tokenString, token.Access)
			if err != nil {
				logger.Debug("access token rejected",
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.ByteString("path", ctx.Path()),
				)
				writeError(ctx, http.StatusForbidden, domain.ErrInvalidToken.Message)
				return
			}

			httpcontext.SetUserID(ctx, claims.UserID)
			next(ctx)
		}
	}
}

// extractToken returns the credential of an "Authorization: Bearer <token>"
// header, or "" when there is none.
func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
	scheme, credential, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(credential)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(transport.NewError(message))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

// Chain applies middlewares so that the first one listed runs outermost.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
