package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
	"github.com/fastygo/tasktracker/internal/middleware"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

// Options toggles the operational endpoints.
type Options struct {
	// Metrics serves /metrics when set.
	Metrics     *middleware.Metrics
	EnablePprof bool
}

func New(handlers Handlers, authMiddleware middleware.Middleware, opts Options) *router.Router {
	r := router.New()
	r.SaveMatchedRoutePath = true

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}
	if opts.Metrics != nil {
		r.GET("/metrics", opts.Metrics.Handler())
	}
	if opts.EnablePprof {
		r.ANY("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	// Auth routes
	auth := r.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)
	auth.POST("/refresh", handlers.Auth.Refresh)
	auth.POST("/logout", handlers.Auth.Logout)
	if handlers.Profile != nil {
		auth.GET("/me", authMiddleware(handlers.Profile.GetProfile))
	}

	// Protected routes
	r.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PATCH("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.PATCH("/tasks/{id}/toggle", authMiddleware(handlers.Task.ToggleTask))
	r.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.NotFound = notFound
	return r
}

// Handler wraps the router with the request-scoped middleware stack.
func Handler(r *router.Router, mws ...middleware.Middleware) fasthttp.RequestHandler {
	return middleware.Chain(r.Handler, mws...)
}

func notFound(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetBodyString(`{"success":false,"error":"Not Found"}`)
}
