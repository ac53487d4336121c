package middleware

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
)

const (
	corsAllowMethods = "GET, POST, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, X-Request-ID"
)

// CORS admits browser requests from the listed origins with credentials and
// answers preflight requests directly.
func CORS(origins []string) Middleware {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek(fasthttp.HeaderOrigin))
			_, ok := allowed[origin]
			if ok {
				h := &ctx.Response.Header
				h.Set(fasthttp.HeaderAccessControlAllowOrigin, origin)
				h.Set(fasthttp.HeaderAccessControlAllowCredentials, "true")
				h.Add(fasthttp.HeaderVary, fasthttp.HeaderOrigin)
			}

			preflight := ctx.IsOptions() && len(ctx.Request.Header.Peek(fasthttp.HeaderAccessControlRequestMethod)) > 0
			if preflight {
				if ok {
					h := &ctx.Response.Header
					h.Set(fasthttp.HeaderAccessControlAllowMethods, corsAllowMethods)
					h.Set(fasthttp.HeaderAccessControlAllowHeaders, corsAllowHeaders)
					h.Set(fasthttp.HeaderAccessControlMaxAge, "600")
				}
				ctx.SetStatusCode(http.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}
