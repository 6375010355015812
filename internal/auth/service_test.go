package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/videa-app/videa/internal/config"
	"github.com/videa-app/videa/internal/testutil"
)

const testSecret = "test-secret-key-minimum-32-chars-long"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:   testSecret,
		JWTIssuer:   "videa-test",
		JWTAudience: "videa-users",
	}
}

func newTestService() *Service {
	return NewService(testAuthConfig(), testutil.NullLogger())
}

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": "user-123",
		"iss": "videa-test",
		"aud": "videa-users",
		"iat": now.Unix(),
		"exp": now.Add(15 * time.Minute).Unix(),
	}
}

func TestValidateAccessToken(t *testing.T) {
	service := newTestService()

	userID, err := service.ValidateAccessToken(mintToken(t, testSecret, validClaims()))
	if err != nil {
		t.Fatalf("ValidateAccessToken returned error: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want user-123", userID)
	}
}

func TestValidateAccessToken_Rejections(t *testing.T) {
	service := newTestService()

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "someone-else"

	wrongAudience := validClaims()
	wrongAudience["aud"] = "other-app"

	noSubject := validClaims()
	delete(noSubject, "sub")

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not-a-jwt"},
		{"wrong secret", mintToken(t, "a-different-secret-key-entirely!!", validClaims())},
		{"expired", mintToken(t, testSecret, expired)},
		{"wrong issuer", mintToken(t, testSecret, wrongIssuer)},
		{"wrong audience", mintToken(t, testSecret, wrongAudience)},
		{"missing subject", mintToken(t, testSecret, noSubject)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.ValidateAccessToken(tt.token); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	err := &AuthError{Code: "invalid_token", Message: "invalid or expired token"}
	if err.Error() != "invalid or expired token" {
		t.Errorf("AuthError.Error() = %s", err.Error())
	}
}

func TestRequireAuth(t *testing.T) {
	mw := NewMiddleware(newTestService())

	var gotUserID string
	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if rec.Body.String() != `{"error":"Unauthorized"}` {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, validClaims()))
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if gotUserID != "user-123" {
			t.Errorf("userID in context = %q", gotUserID)
		}
	})
}

func TestOptionalAuth(t *testing.T) {
	mw := NewMiddleware(newTestService())

	var gotUserID string
	handler := mw.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no token still passes through", func(t *testing.T) {
		gotUserID = "sentinel"
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if gotUserID != "" {
			t.Errorf("userID = %q, want empty", gotUserID)
		}
	})

	t.Run("valid token sets user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, validClaims()))
		rec := httptest.NewRecorder()
		handler(rec, req)
		if gotUserID != "user-123" {
			t.Errorf("userID = %q", gotUserID)
		}
	})

	t.Run("bad token treated as anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if gotUserID != "" {
			t.Errorf("userID = %q, want empty", gotUserID)
		}
	})
}
