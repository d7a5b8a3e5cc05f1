// Package response writes the wire-level JSON envelopes. Success bodies are
// plain payloads; failures are {"error": message, "code": code} where code
// is one of the stable machine-readable constants below.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	CodeAuthorization      = "authorization"
	CodeInvalidToken       = "invalid_token"
	CodeExpiredToken       = "expired_token"
	CodeInvalidCredentials = "invalid_credentials"
	CodeDuplicateUser      = "duplicate_user"
	CodeBadRequest         = "bad_request"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, errorBody{Error: message, Code: code})
}
