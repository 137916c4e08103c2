package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "regular password", password: "secret123"},
		{name: "special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "short password", password: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := Hash(tt.password, bcrypt.MinCost)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.NoError(t, Compare(hash, tt.password))
		})
	}
}

func TestHash_TooLong(t *testing.T) {
	_, err := Hash(string(make([]byte, 73)), bcrypt.MinCost)
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	hash, err := Hash("correct_password", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, Compare(hash, "correct_password"))
	assert.ErrorIs(t, Compare(hash, "wrong_password"), bcrypt.ErrMismatchedHashAndPassword)
	assert.Error(t, Compare("not-a-hash", "correct_password"))
}
