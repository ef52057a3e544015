package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncryptor(t *testing.T) {
	t.Run("valid key size", func(t *testing.T) {
		enc, err := NewEncryptor(make([]byte, 32))
		require.NoError(t, err)
		assert.NotNil(t, enc)
	})

	t.Run("invalid key size", func(t *testing.T) {
		for _, size := range []int{0, 16, 64} {
			enc, err := NewEncryptor(make([]byte, size))
			assert.ErrorIs(t, err, ErrInvalidKeySize)
			assert.Nil(t, enc)
		}
	})
}

func TestNewEncryptorFromBase64(t *testing.T) {
	t.Run("valid base64 key", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString(make([]byte, 32))
		enc, err := NewEncryptorFromBase64(encoded)
		require.NoError(t, err)
		assert.NotNil(t, enc)
	})

	t.Run("invalid base64", func(t *testing.T) {
		enc, err := NewEncryptorFromBase64("not-valid-base64!!!")
		assert.Error(t, err)
		assert.Nil(t, enc)
	})
}

func TestNewEncryptorFromPassphrase(t *testing.T) {
	enc1, err := NewEncryptorFromPassphrase("correct horse battery", "bookclub-v1")
	require.NoError(t, err)

	ciphertext, err := enc1.Encrypt("secret")
	require.NoError(t, err)

	t.Run("same passphrase and salt decrypts", func(t *testing.T) {
		enc2, err := NewEncryptorFromPassphrase("correct horse battery", "bookclub-v1")
		require.NoError(t, err)

		plaintext, err := enc2.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, "secret", plaintext)
	})

	t.Run("different salt cannot decrypt", func(t *testing.T) {
		enc3, err := NewEncryptorFromPassphrase("correct horse battery", "other-salt")
		require.NoError(t, err)

		_, err = enc3.Decrypt(ciphertext)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})
}

func TestEncryptDecrypt(t *testing.T) {
	key, err := GenerateKeyBytes()
	require.NoError(t, err)

	enc, err := NewEncryptor(key)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		plaintext := "eyJhbGciOiJIUzI1NiJ9.access-token"
		ciphertext, err := enc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)

		decrypted, err := enc.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("empty string", func(t *testing.T) {
		ciphertext, err := enc.Encrypt("")
		require.NoError(t, err)
		assert.Empty(t, ciphertext)

		decrypted, err := enc.Decrypt("")
		require.NoError(t, err)
		assert.Empty(t, decrypted)
	})

	t.Run("unique ciphertexts for same plaintext", func(t *testing.T) {
		c1, err := enc.Encrypt("same-text")
		require.NoError(t, err)
		c2, err := enc.Encrypt("same-text")
		require.NoError(t, err)
		assert.NotEqual(t, c1, c2)
	})
}

func TestDecryptErrors(t *testing.T) {
	key, err := GenerateKeyBytes()
	require.NoError(t, err)
	enc, err := NewEncryptor(key)
	require.NoError(t, err)

	t.Run("invalid base64", func(t *testing.T) {
		_, err := enc.Decrypt("not-valid-base64!!!")
		assert.Error(t, err)
	})

	t.Run("ciphertext too short", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString([]byte("short"))
		_, err := enc.Decrypt(short)
		assert.ErrorIs(t, err, ErrCiphertextTooShort)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		ciphertext, err := enc.Encrypt("secret")
		require.NoError(t, err)

		data, _ := base64.StdEncoding.DecodeString(ciphertext)
		data[len(data)-1] ^= 0xFF
		_, err = enc.Decrypt(base64.StdEncoding.EncodeToString(data))
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("wrong key", func(t *testing.T) {
		ciphertext, err := enc.Encrypt("secret")
		require.NoError(t, err)

		otherKey, _ := GenerateKeyBytes()
		otherEnc, _ := NewEncryptor(otherKey)
		_, err = otherEnc.Decrypt(ciphertext)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})
}

func TestGenerateKey(t *testing.T) {
	encodedKey, err := GenerateKey()
	require.NoError(t, err)

	enc, err := NewEncryptorFromBase64(encodedKey)
	require.NoError(t, err)
	assert.NotNil(t, enc)

	other, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, encodedKey, other)
}
