package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewHasher()

	encoded, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	assert.NoError(t, hasher.Verify("correct horse battery staple", encoded))
	assert.ErrorIs(t, hasher.Verify("wrong password", encoded), ErrMismatch)
}

func TestHashesAreSalted(t *testing.T) {
	hasher := NewHasher()

	a, err := hasher.Hash("same password")
	require.NoError(t, err)
	b, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NoError(t, hasher.Verify("same password", a))
	assert.NoError(t, hasher.Verify("same password", b))
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher := NewHasher()

	for _, encoded := range []string{
		"",
		"not a hash",
		"$bcrypt$v=19$m=65536,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=2,p=1$c2FsdA$aGFzaA",
	} {
		err := hasher.Verify("password", encoded)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMismatch)
	}
}
