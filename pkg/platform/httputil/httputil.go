// Package httputil centralizes JSON response writing and request decoding for
// HTTP handlers. Error responses expose only the stable error code; message
// detail is included for caller-fault codes and suppressed for internal ones.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "chaincomply/pkg/domain-errors"
)

// Validatable lets request types run structural validation after decoding.
type Validatable interface {
	Validate() error
}

// errorResponse is the uniform JSON error body.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// statusForCode maps domain error codes to HTTP statuses.
func statusForCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeConfiguration, dErrors.CodeStoreFailure, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// exposesDetail reports whether a code's message is safe to show to clients.
// Server-side faults keep their detail in logs only.
func exposesDetail(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeConfiguration, dErrors.CodeStoreFailure, dErrors.CodeInternal:
		return false
	default:
		return true
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a coded error as a JSON response. Uncoded errors are
// treated as internal.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorResponse{Error: string(code)}
	if exposesDetail(code) {
		var coded *dErrors.Error
		if ok := asDomainError(err, &coded); ok {
			body.Description = coded.Message
		}
	}
	WriteJSON(w, statusForCode(code), body)
}

func asDomainError(err error, target **dErrors.Error) bool {
	for err != nil {
		if e, ok := err.(*dErrors.Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// DecodeAndPrepare decodes a JSON request body into T and runs its validation.
// On failure it writes the error response itself and returns ok=false so
// handlers can bail with a bare return.
func DecodeAndPrepare[T Validatable](
	w http.ResponseWriter,
	r *http.Request,
	logger *slog.Logger,
	ctx context.Context,
	requestID string,
) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "malformed request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed JSON body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request validation failed",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, err)
		return req, false
	}
	return req, true
}
