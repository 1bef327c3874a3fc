package encryption

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	key, err := ParseKey(strings.Repeat("ab", 32))
	require.NoError(t, err)
	svc, err := NewService(key)
	require.NoError(t, err)

	ct, err := svc.Encrypt([]byte(`{"profile":{}}`))
	require.NoError(t, err)
	assert.NotContains(t, ct, "profile")

	pt, err := svc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, `{"profile":{}}`, string(pt))

	other, err := svc.Encrypt([]byte(`{"profile":{}}`))
	require.NoError(t, err)
	assert.NotEqual(t, ct, other, "nonce must differ per call")
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	k1, err := DeriveKey("first passphrase", "spitalverse-storage")
	require.NoError(t, err)
	k2, err := DeriveKey("second passphrase", "spitalverse-storage")
	require.NoError(t, err)

	s1, _ := NewService(k1)
	s2, _ := NewService(k2)

	ct, err := s1.Encrypt([]byte("secret"))
	require.NoError(t, err)
	_, err = s2.Decrypt(ct)
	assert.Error(t, err)
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	a, err := DeriveKey("pass", "slot")
	require.NoError(t, err)
	b, err := DeriveKey("pass", "slot")
	require.NoError(t, err)
	c, err := DeriveKey("pass", "other-slot")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = DeriveKey("", "slot")
	assert.ErrorIs(t, err, ErrNoKeyMaterial)
}

func TestParseKeyValidation(t *testing.T) {
	_, err := ParseKey("zz")
	assert.Error(t, err)
	_, err = ParseKey("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)

	key, err := ResolveKey(strings.Repeat("01", 32), "ignored", "slot")
	require.NoError(t, err)
	assert.Equal(t, byte(1), key[0])
}

func TestDecryptShortInput(t *testing.T) {
	key, _ := DeriveKey("pass", "slot")
	svc, _ := NewService(key)
	_, err := svc.Decrypt("AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}
