package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func validClaims(sub string) Claims {
	return Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthenticate(t *testing.T) {
	expired := validClaims("alice")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExpiry := validClaims("alice")
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name     string
		header   string
		status   int
		code     string
		wantUser string
	}{
		{name: "valid", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("alice")), status: http.StatusOK, wantUser: "alice"},
		{name: "missing header", status: http.StatusUnauthorized, code: "AUTH_001"},
		{name: "wrong scheme", header: "Token abc", status: http.StatusUnauthorized, code: "AUTH_001"},
		{name: "wrong secret", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("other"), validClaims("alice")), status: http.StatusUnauthorized, code: "AUTH_003"},
		{name: "wrong algorithm", header: "Bearer " + signed(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("alice")), status: http.StatusUnauthorized, code: "AUTH_003"},
		{name: "expired", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), expired), status: http.StatusUnauthorized, code: "AUTH_002"},
		{name: "no expiry", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry), status: http.StatusUnauthorized, code: "AUTH_003"},
		{name: "no subject", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("")), status: http.StatusUnauthorized, code: "AUTH_003"},
	}

	m := NewAuthMiddleware(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = GetUserID(r.Context())
				if email, _ := GetUserEmail(r.Context()); email != "alice@example.com" {
					t.Errorf("email = %q", email)
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.code != "" && !strings.Contains(rec.Body.String(), tt.code) {
				t.Errorf("body %s does not carry code %s", rec.Body.String(), tt.code)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}
