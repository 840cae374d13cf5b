package jwt

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken("ws-123", "secret", time.Hour)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	id, err := ExtractWorkspaceIDFromToken(token, "secret")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if id != "ws-123" {
		t.Fatalf("expected ws-123, got %q", id)
	}
}

func TestTokenRejections(t *testing.T) {
	valid, _ := CreateToken("ws-123", "secret", time.Hour)
	expired, _ := CreateToken("ws-123", "secret", -time.Minute)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other"},
		{"expired", expired, "secret"},
		{"garbage", "not-a-token", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractWorkspaceIDFromToken(tt.token, tt.secret); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
