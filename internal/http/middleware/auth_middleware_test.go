package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ldaehi0205/go-board-backend/internal/security"
)

func newTestCodec(ttl time.Duration) *security.TokenCodec {
	return security.NewTokenCodec("test-secret-test-secret-test-secret!", "go-board", ttl)
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code
}

func TestRequireAuth(t *testing.T) {
	codec := newTestCodec(time.Hour)
	var gotClaims *security.Claims
	handler := RequireAuth(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/me", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if code := decodeErrorCode(t, rec); code != "authorization" {
			t.Fatalf("expected authorization code, got %q", code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if code := decodeErrorCode(t, rec); code != "invalid_token" {
			t.Fatalf("expected invalid_token code, got %q", code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		stale, err := newTestCodec(-time.Minute).SignAccessToken(7, "alice")
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+stale)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if code := decodeErrorCode(t, rec); code != "expired_token" {
			t.Fatalf("expected expired_token code, got %q", code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := codec.SignAccessToken(7, "alice")
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotClaims == nil || gotClaims.LoginName != "alice" {
			t.Fatalf("expected claims in context, got %+v", gotClaims)
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(req); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
