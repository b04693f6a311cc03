// Package binder decodes HTTP request bodies into handler request structs.
//
// Binders follow the func(*http.Request, any) error shape accepted by
// handler.Wrap. Errors wrap the package sentinels so the error handler can
// map them to 400 or 415 without inspecting decoder messages.
package binder
