package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/scedev/parkpermit/internal/app/models"
)

func testService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 720 * time.Hour,
		TokenIssuer:     "parkpermit.test",
	})
}

func TestGenerateTokenPair_RoundTrip(t *testing.T) {
	svc := testService(time.Hour)
	user := &models.User{ID: 7, Username: "reviewer", Email: "reviewer@sce.edu", IsAdmin: true}

	access, refresh, expiresIn, refreshExpiresIn, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if refresh == "" {
		t.Fatalf("expected non-empty refresh token")
	}
	if expiresIn != 3600 {
		t.Fatalf("expiresIn = %d, want 3600", expiresIn)
	}
	if refreshExpiresIn != int((720 * time.Hour).Seconds()) {
		t.Fatalf("refreshExpiresIn = %d", refreshExpiresIn)
	}

	claims, err := svc.ValidateAndExtractClaims(access)
	if err != nil {
		t.Fatalf("ValidateAndExtractClaims: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "reviewer" || !claims.IsAdmin {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := testService(time.Hour)
	user := &models.User{ID: 1, Username: "u", Email: "u@sce.edu"}
	access, _, _, _, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	other := NewJWTService(JWTConfig{SecretKey: "other-secret", AccessTokenExp: time.Hour})
	if _, err := other.ValidateToken(access); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := testService(-time.Minute)
	user := &models.User{ID: 1, Username: "u", Email: "u@sce.edu"}
	access, _, _, _, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if _, err := svc.ValidateToken(access); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("error = %v, want ErrExpiredToken", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if _, err := ExtractBearerToken(""); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat for empty header")
	}

	tok, err := ExtractBearerToken("Bearer abc.def.ghi")
	if err != nil || tok != "abc.def.ghi" {
		t.Fatalf("ExtractBearerToken = %q, %v", tok, err)
	}

	// A raw token without the Bearer prefix is passed through as-is.
	tok, err = ExtractBearerToken("abc.def.ghi")
	if err != nil || tok != "abc.def.ghi" {
		t.Fatalf("ExtractBearerToken raw = %q, %v", tok, err)
	}
}
