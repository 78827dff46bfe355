package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc := NewEncryptionService("unit-test-secret")

	encrypted, err := svc.Encrypt("hello world")
	require.NoError(t, err)
	assert.NotEqual(t, "hello world", encrypted)

	decrypted, err := svc.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "hello world", decrypted)
}

func TestEncrypt_SameInputDifferentCiphertext(t *testing.T) {
	svc := NewEncryptionService("unit-test-secret")

	a, err := svc.Encrypt("repeated value")
	require.NoError(t, err)
	b, err := svc.Encrypt("repeated value")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_WrongKeyFailsOrGarbles(t *testing.T) {
	encrypted, err := NewEncryptionService("key-one").Encrypt("sensitive")
	require.NoError(t, err)

	decrypted, err := NewEncryptionService("key-two").Decrypt(encrypted)
	if err == nil {
		assert.NotEqual(t, "sensitive", decrypted)
	}
}

func TestDecrypt_RejectsMalformedInput(t *testing.T) {
	svc := NewEncryptionService("unit-test-secret")

	_, err := svc.Decrypt("not-base64!!!")
	assert.Error(t, err)

	_, err = svc.Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}

func TestEncryptJSONRoundTrip(t *testing.T) {
	svc := NewEncryptionService("unit-test-secret")

	original := map[string]string{"token": "abc", "location": "loc-1"}
	encrypted, err := svc.EncryptJSON(original)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, svc.DecryptJSON(encrypted, &decoded))
	assert.Equal(t, original, decoded)
}

func TestPasswordHashing(t *testing.T) {
	svc := NewEncryptionService("unit-test-secret")

	hash, err := svc.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, svc.CheckPassword(hash, "secret123"))
	assert.False(t, svc.CheckPassword(hash, "wrong-password"))
}
