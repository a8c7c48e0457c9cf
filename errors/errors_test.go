package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("computing ledger: %w", DataIntegrity("user x"))

	if !HasCode(wrapped, CodeDataIntegrity) {
		t.Fatalf("expected wrapped error to carry %s", CodeDataIntegrity)
	}
	if HasCode(wrapped, CodeUserNotFound) {
		t.Fatalf("did not expect %s", CodeUserNotFound)
	}
	if HasCode(fmt.Errorf("plain"), CodeDataIntegrity) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestHasCodeFollowsCauses(t *testing.T) {
	cause := CacheError("reading dashboard", fmt.Errorf("dial tcp: connection refused"))
	err := fmt.Errorf("loading: %w", ExternalServiceError("dashboard cache", cause))

	tests := []struct {
		code ErrorCode
		want bool
	}{
		{CodeExternalServiceError, true},
		{CodeCacheError, true},
		{CodeDatabaseError, false},
	}
	for _, tt := range tests {
		if got := HasCode(err, tt.code); got != tt.want {
			t.Errorf("HasCode(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"self comparison", CannotSelfAction("compare a balance with"), 400},
		{"unknown user", UserNotFound(), 404},
		{"foreign party", DataIntegrity("x"), 422},
		{"permission", PermissionDenied("delete this expense"), 403},
		{"database", DatabaseError("op", fmt.Errorf("boom")), 500},
		{"ai", AIServiceError(fmt.Errorf("down")), 503},
		{"broker", ExternalServiceError("publishing reminder", fmt.Errorf("closed")), 503},
		{"internal", InternalError(fmt.Errorf("bug")), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err.Type); got != tt.want {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsNotFoundError(t *testing.T) {
	if !IsNotFoundError(fmt.Errorf("getting user by id: %w", pgx.ErrNoRows)) {
		t.Errorf("wrapped pgx.ErrNoRows should be a not-found error")
	}
	if IsNotFoundError(nil) {
		t.Errorf("nil is not a not-found error")
	}
	if IsNotFoundError(fmt.Errorf("connection refused")) {
		t.Errorf("connection errors are not not-found errors")
	}
}
