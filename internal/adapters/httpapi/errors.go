package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/scoutbook-labs/badge-tracker/internal/app/roster"
)

const (
	codeUnauthorized        = "UNAUTHORIZED"
	codeBadRequest          = "BAD_REQUEST"
	codeBackendError        = "BACKEND_ERROR"
	codeIdempotencyKeyReuse = "IDEMPOTENCY_KEY_REUSE"
	codeInternal            = "INTERNAL"
)

// ErrorResponse is the JSON error envelope shared by every /api/v1 endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string                             `json:"code"`
	Message   string                             `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}

// writeAppError maps roster errors to their own status; anything else is a backend failure.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *roster.Error
	if errors.As(err, &ae) {
		writeAPIError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	writeAPIError(w, r, http.StatusBadGateway, codeBackendError, "backend call failed", nil)
}

// writeJSON encodes v before writing the status, so an encoding failure is a 500
// envelope rather than a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode json response", "err", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":{"code":"` + codeInternal + `","message":"response encoding failed"}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
