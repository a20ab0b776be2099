package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"Alice Doe", "alice", "ComplexPass123!"}, false},
		{"Username too short", RegisterRequest{"Alice Doe", "al", "ComplexPass123!"}, true},
		{"Username not alphanumeric", RegisterRequest{"Alice Doe", "alice doe", "ComplexPass123!"}, true},
		{"Missing name", RegisterRequest{"", "alice", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"Alice Doe", "alice", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"Alice Doe", "alice", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"Alice Doe", "alice", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"Alice Doe", "alice", "nouppercase1234!"}, true},
		{"Password too long (edge case)", RegisterRequest{"Alice Doe", "alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestToken_Roundtrip(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Generate("user-1", "alice")
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := issuer.Validate(token)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal("sms-relay", claims.Issuer)
}

func TestToken_Rejects_Foreign_Signature(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := other.Generate("user-1", "alice")
	req.NoError(err)

	_, err = issuer.Validate(token)
	req.Error(err)
}

func TestToken_Rejects_Expired(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Generate("user-1", "alice")
	req.NoError(err)

	_, err = issuer.Validate(token)
	req.Error(err)
}

// BenchmarkHashPassword mesure l'impact CPU/RAM du hash
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
