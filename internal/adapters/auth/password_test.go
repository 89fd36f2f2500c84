package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eventhub/internal/domain"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		assert.Regexp(t, hexRe, salt)
		assert.False(t, seen[salt], "salts should not repeat")
		seen[salt] = true
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		attempt  string
		salt     string
		wantErr  bool
	}{
		{"matching password", "s3cret-pass", "s3cret-pass", salt, false},
		{"wrong password", "s3cret-pass", "other", salt, true},
		{"wrong salt", "s3cret-pass", "s3cret-pass", "deadbeef", true},
		{"password longer than 72 bytes", strings.Repeat("x", 100), strings.Repeat("x", 100), salt, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(salt, tt.password)
			require.NoError(t, err)
			err = h.Compare(hash, tt.salt, tt.attempt)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewBcryptHasher(0).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
