package domain_test

import (
	"testing"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestVault(t *testing.T) {
	t.Parallel()

	secret := "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		v, err := domain.NewVault("u1", secret, "correcthorsebattery")
		require.NoError(t, err)
		require.NotContains(t, v.Ciphertext, secret[2:])

		got, err := v.Secret("correcthorsebattery")
		require.NoError(t, err)
		require.Equal(t, secret, got)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		v, err := domain.NewVault("u1", secret, "correcthorsebattery")
		require.NoError(t, err)

		_, err = v.Secret("wrongpass")
		require.ErrorIs(t, err, domain.ErrDecryptionFailed)
	})

	t.Run("weak password", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewVault("u1", secret, "short")
		require.ErrorIs(t, err, domain.ErrPasswordTooWeak)
	})

	t.Run("corrupted", func(t *testing.T) {
		t.Parallel()

		v := &domain.Vault{UserID: "u1", Ciphertext: "not-a-vault"}
		_, err := v.Secret("correcthorsebattery")
		require.ErrorIs(t, err, domain.ErrDecryptionFailed)
	})
}
