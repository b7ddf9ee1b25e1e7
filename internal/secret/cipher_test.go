package secret_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/landing-api/internal/secret"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	creds := map[string]any{
		"server_key": "SB-Mid-server-abc123",
		"client_key": "SB-Mid-client-xyz789",
		"sandbox":    true,
	}
	cipherHex, ivHex, err := secret.EncryptJSON(creds, "master-secret")
	require.NoError(t, err)
	require.NotEmpty(t, cipherHex)
	require.NotEmpty(t, ivHex)

	out := secret.DecryptJSON(cipherHex, ivHex, "master-secret")
	require.NotNil(t, out)
	require.Equal(t, "SB-Mid-server-abc123", out["server_key"])
	require.Equal(t, "SB-Mid-client-xyz789", out["client_key"])
	require.Equal(t, true, out["sandbox"])
}

func TestDecryptFailsClosed(t *testing.T) {
	cipherHex, ivHex, err := secret.EncryptJSON(map[string]any{"k": "v"}, "right-secret")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		require.Nil(t, secret.DecryptJSON(cipherHex, ivHex, "wrong-secret"))
	})
	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := "00" + cipherHex[2:]
		if tampered == cipherHex {
			tampered = "ff" + cipherHex[2:]
		}
		require.Nil(t, secret.DecryptJSON(tampered, ivHex, "right-secret"))
	})
	t.Run("malformed hex", func(t *testing.T) {
		require.Nil(t, secret.DecryptJSON("not-hex!", ivHex, "right-secret"))
		require.Nil(t, secret.DecryptJSON(cipherHex, "zzzz", "right-secret"))
	})
	t.Run("missing inputs", func(t *testing.T) {
		require.Nil(t, secret.DecryptJSON("", ivHex, "right-secret"))
		require.Nil(t, secret.DecryptJSON(cipherHex, "", "right-secret"))
	})
	t.Run("wrong nonce length", func(t *testing.T) {
		require.Nil(t, secret.DecryptJSON(cipherHex, "abcd", "right-secret"))
	})
}

func TestEncryptNonceUniqueness(t *testing.T) {
	v := map[string]any{"server_key": "abc"}
	c1, iv1, err := secret.EncryptJSON(v, "s")
	require.NoError(t, err)
	c2, iv2, err := secret.EncryptJSON(v, "s")
	require.NoError(t, err)
	require.NotEqual(t, iv1, iv2)
	require.NotEqual(t, c1, c2)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	k1 := secret.DeriveKey("abc")
	k2 := secret.DeriveKey("abc")
	k3 := secret.DeriveKey("abd")
	require.Equal(t, k1, k2)
	require.NotEqual(t, k1, k3)
	require.Len(t, k1, 32)
}
