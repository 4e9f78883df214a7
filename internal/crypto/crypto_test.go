package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func newTestCipher(t *testing.T) *Cipher {
	key, err := DecodeKey(testKey)
	require.NoError(t, err)
	c, err := NewCipher(key)
	require.NoError(t, err)
	return c
}

func TestDecodeKey(t *testing.T) {
	_, err := DecodeKey("")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = DecodeKey("not base64!!")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = DecodeKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrInvalidKey)

	key, err := DecodeKey(testKey)
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestEncryptDecrypt(t *testing.T) {
	c := newTestCipher(t)

	sealed, err := c.Encrypt("hoy me siento tranki")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "tranki")

	again, err := c.Encrypt("hoy me siento tranki")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per call")

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hoy me siento tranki", plain)
}

func TestDecryptRejectsTampering(t *testing.T) {
	c := newTestCipher(t)

	_, err := c.Decrypt("%%%")
	assert.ErrorIs(t, err, ErrMalformedCipher)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("tiny")))
	assert.ErrorIs(t, err, ErrMalformedCipher)

	sealed, err := c.Encrypt("mensaje")
	require.NoError(t, err)
	raw, _ := base64.StdEncoding.DecodeString(sealed)
	raw[len(raw)-1] ^= 0xff
	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, ErrDecryptionFailure)

	other, err := NewCipher([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)
	_, err = other.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailure)
}
