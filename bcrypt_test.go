package liberfly_test

import (
	"testing"

	liberfly "github.com/liberfly/liberfly-api"
	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings!
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := liberfly.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)

			err = liberfly.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := liberfly.HashPassword(password)
	assert.NoError(t, err)

	t.Run("Matching password", func(t *testing.T) {
		assert.NoError(t, liberfly.ComparePasswordAndHash(password, hash))
	})

	t.Run("Wrong password", func(t *testing.T) {
		err := liberfly.ComparePasswordAndHash("notThePassword", hash)
		assert.ErrorIs(t, err, liberfly.ErrMismatchedHashAndPassword)
	})

	t.Run("Garbage hash", func(t *testing.T) {
		err := liberfly.ComparePasswordAndHash(password, "not-a-bcrypt-hash")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, liberfly.ErrMismatchedHashAndPassword)
	})
}

func TestRandomPasswordHash(t *testing.T) {
	hash := liberfly.RandomPasswordHash()
	assert.NotEmpty(t, hash)

	other := liberfly.RandomPasswordHash()
	assert.NotEqual(t, hash, other)
}
