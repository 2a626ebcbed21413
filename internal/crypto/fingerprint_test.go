package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"relaychat/internal/crypto"
)

func TestFingerprint_StableAndShort(t *testing.T) {
	a := crypto.Fingerprint([]byte("3f1c2a4e-0000-4000-8000-000000000001"))
	b := crypto.Fingerprint([]byte("3f1c2a4e-0000-4000-8000-000000000001"))
	c := crypto.Fingerprint([]byte("3f1c2a4e-0000-4000-8000-000000000002"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 20)
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	crypto.Wipe(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)
}
