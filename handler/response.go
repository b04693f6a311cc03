package handler

import (
	"encoding/json"
	"maps"
	"net/http"
)

// JSONResponse is the API envelope.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type bodyResponse struct {
	status  int
	body    any
	headers http.Header
}

func (b bodyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	for k, vs := range b.headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.status)
	return json.NewEncoder(w).Encode(b.body)
}

type ResponseOption func(*bodyResponse)

func WithStatus(status int) ResponseOption {
	return func(r *bodyResponse) { r.status = status }
}

func WithHeader(key, value string) ResponseOption {
	return func(r *bodyResponse) {
		if r.headers == nil {
			r.headers = make(http.Header)
		}
		r.headers.Add(key, value)
	}
}

// WithMeta sets envelope metadata. It has no effect on Body.
func WithMeta(meta map[string]any) ResponseOption {
	return func(r *bodyResponse) {
		if env, ok := r.body.(JSONResponse); ok {
			env.Meta = maps.Clone(meta)
			r.body = env
		}
	}
}

// JSON renders v inside the envelope's data field with status 200.
func JSON(v any, opts ...ResponseOption) Response {
	return apply(bodyResponse{status: http.StatusOK, body: JSONResponse{Data: v}}, opts)
}

// JSONError renders err inside the envelope's error field.
// The status comes from Classify unless overridden.
func JSONError(err error, opts ...ResponseOption) Response {
	status, detail := Classify(err)
	return apply(bodyResponse{status: status, body: JSONResponse{Error: detail}}, opts)
}

// Body renders v as the whole response body.
func Body(status int, v any, opts ...ResponseOption) Response {
	return apply(bodyResponse{status: status, body: v}, opts)
}

func apply(r bodyResponse, opts []ResponseOption) Response {
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty renders 204 No Content.
func Empty() Response { return emptyResponse{status: http.StatusNoContent} }

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

// Error hands err to the wrapper's ErrorHandler without writing anything.
func Error(err error) Response { return errorResponse{err: err} }
