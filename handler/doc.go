// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value that Wrap has already
// bound and, optionally, validated. It returns a Response that knows how to
// render itself. Errors from binding, validation or rendering are passed to
// an ErrorHandler; NewErrorHandler provides the JSON envelope used by the API.
//
//	type createProfileRequest struct {
//		FullName string `json:"fullName" validate:"required,max=200"`
//	}
//
//	h := handler.Wrap(svc.createProfile,
//		handler.WithBinder[handler.Context, createProfileRequest](binder.JSON()),
//		handler.WithValidator[handler.Context, createProfileRequest](handler.NewValidator()),
//		handler.WithErrorHandler[handler.Context, createProfileRequest](handler.NewErrorHandler(log)),
//	)
//
// Responses:
//
//   - JSON and JSONError render the {data, meta, error} envelope.
//   - Body renders a value as-is for endpoints with a fixed wire contract.
//   - Empty renders a status without a body.
package handler
