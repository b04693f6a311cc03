package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nextweekend/nextweekend/pkg/clientip"
	"github.com/nextweekend/nextweekend/pkg/httpserver"
	"github.com/nextweekend/nextweekend/pkg/requestid"
)

type mountable interface {
	Handle() http.Handler
}

// newRouter mounts billing at the root and the user API under /api.
func newRouter(log *slog.Logger, billing, weekend mountable, checks ...httpserver.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware,
		middleware.Recoverer,
		httpserver.RequestLogger(log),
	)

	r.Get("/health/live", httpserver.Health(log))
	r.Get("/health/ready", httpserver.Health(log, checks...))

	r.Mount("/api", weekend.Handle())
	r.Mount("/", billing.Handle())
	return r
}
