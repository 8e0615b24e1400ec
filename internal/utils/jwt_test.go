package utils

import (
	"testing"
	"time"

	"github.com/caiotravain/consultorio/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{Role: models.RoleDoctor}
	user.ID = "user-123"

	token, err := GenerateToken(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("user id %q", claims.UserID)
	}
	if claims.Role != models.RoleDoctor {
		t.Errorf("role %q", claims.Role)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	user := &models.User{Role: models.RoleAdmin}
	user.ID = "user-123"

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name: "wrong secret",
			token: func() string {
				tok, _ := GenerateToken(user, "other-secret", time.Hour)
				return tok
			},
		},
		{
			name: "expired",
			token: func() string {
				tok, _ := GenerateToken(user, "test-secret", -time.Minute)
				return tok
			},
		},
		{
			name:  "garbage",
			token: func() string { return "not.a.token" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.token(), "test-secret"); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
