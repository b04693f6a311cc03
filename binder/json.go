package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxBytes caps JSON request bodies.
const DefaultMaxBytes int64 = 1 << 20

type jsonOptions struct {
	maxBytes     int64
	strict       bool
	requireMedia bool
}

type JSONOption func(*jsonOptions)

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) JSONOption {
	return func(o *jsonOptions) {
		if n > 0 {
			o.maxBytes = n
		}
	}
}

// Strict rejects unknown fields.
func Strict() JSONOption {
	return func(o *jsonOptions) { o.strict = true }
}

// RequireContentType rejects requests without an application/json content type.
// By default a missing header is accepted and only other media types fail.
func RequireContentType() JSONOption {
	return func(o *jsonOptions) { o.requireMedia = true }
}

// JSON returns a binder that decodes exactly one JSON value from the body.
func JSON(opts ...JSONOption) func(r *http.Request, v any) error {
	o := &jsonOptions{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(o)
	}

	return func(r *http.Request, v any) error {
		if err := checkMediaType(r.Header.Get("Content-Type"), o.requireMedia); err != nil {
			return err
		}

		body := http.MaxBytesReader(nil, r.Body, o.maxBytes)
		dec := json.NewDecoder(body)
		if o.strict {
			dec.DisallowUnknownFields()
		}

		if err := dec.Decode(v); err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
			case errors.Is(err, io.EOF):
				return fmt.Errorf("%w: empty body", ErrInvalidJSON)
			default:
				return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
			}
		}

		if dec.More() {
			return fmt.Errorf("%w: unexpected data after JSON value", ErrInvalidJSON)
		}
		return nil
	}
}

func checkMediaType(contentType string, required bool) error {
	if contentType == "" {
		if required {
			return fmt.Errorf("%w: missing content type, expected application/json", ErrUnsupportedMediaType)
		}
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, contentType)
	}
	return nil
}
