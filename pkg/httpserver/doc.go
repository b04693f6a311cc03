// Package httpserver runs an http.Handler with configured timeouts and a
// graceful, idempotent shutdown.
//
// Run binds the listener synchronously, so a bad address surfaces as ErrStart
// before any start hook fires. It then serves until the context is cancelled
// or Shutdown is called. Signal handling belongs to the caller, typically via
// signal.NotifyContext in main.
//
// Health exposes liveness and readiness probes as JSON:
//
//	mux.Handle("GET /health/live", httpserver.Health(log))
//	mux.Handle("GET /health/ready", httpserver.Health(log,
//		httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	))
package httpserver
