package application_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentry-network/sentry-wallet/internal/core/application"
	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/pkg/wallet"
)

func TestLocalWalletService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := application.NewLocalWalletService(env.vaultStore)

	ok, err := svc.HasWallets(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	err = svc.Init(ctx, "short", "")
	require.ErrorIs(t, err, domain.ErrPasswordTooWeak)

	require.NoError(t, svc.Init(ctx, testPassword, "the usual one"))
	ok, err = svc.HasWallets(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	hint, err := svc.PasswordHint(ctx)
	require.NoError(t, err)
	require.Equal(t, "the usual one", hint)

	require.NoError(t, svc.Init(ctx, testPassword, ""))
	require.ErrorIs(t, svc.Init(ctx, "wrongpassword", ""), domain.ErrDecryptionFailed)

	list, err := svc.List(ctx, testPassword)
	require.NoError(t, err)
	require.Empty(t, list)

	created, mnemonic, err := svc.Create(ctx, testPassword, "")
	require.NoError(t, err)
	require.Len(t, mnemonic, 12)
	require.Equal(t, "Wallet 1", created.Name)
	require.True(t, strings.HasPrefix(created.ID, "wallet_"))
	require.False(t, created.Imported)
	require.True(t, wallet.IsValidAddress(created.Address))

	imported, err := svc.Import(
		ctx, testPassword,
		"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", "savings",
	)
	require.NoError(t, err)
	require.True(t, imported.Imported)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", imported.Address)

	_, err = svc.Import(
		ctx, testPassword,
		"test test test test test test test test test test test junk", "again",
	)
	require.ErrorIs(t, err, domain.ErrInvalidSecretFormat)

	_, err = svc.Import(ctx, testPassword, "garbage", "bad")
	require.ErrorIs(t, err, domain.ErrInvalidSecretFormat)

	_, _, err = svc.Create(ctx, "wrongpassword", "other")
	require.ErrorIs(t, err, domain.ErrDecryptionFailed)

	list, err = svc.List(ctx, testPassword)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, svc.Remove(ctx, testPassword, created.ID))
	require.ErrorIs(t, svc.Remove(ctx, testPassword, created.ID), domain.ErrNotFound)

	list, err = svc.List(ctx, testPassword)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, imported.ID, list[0].ID)
}

func TestLocalWalletServiceReset(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := application.NewLocalWalletService(env.vaultStore)

	require.ErrorIs(t, svc.Reset(ctx, testPassword), domain.ErrNotFound)

	require.NoError(t, svc.Init(ctx, testPassword, "the usual one"))
	_, _, err := svc.Create(ctx, testPassword, "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Reset(ctx, "wrongpassword"), domain.ErrDecryptionFailed)
	ok, err := svc.HasWallets(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.Reset(ctx, testPassword))

	ok, err = svc.HasWallets(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	hint, err := svc.PasswordHint(ctx)
	require.NoError(t, err)
	require.Empty(t, hint)

	// A new password can be chosen once the collection is gone.
	require.NoError(t, svc.Init(ctx, "anothergoodpassword", ""))
	list, err := svc.List(ctx, "anothergoodpassword")
	require.NoError(t, err)
	require.Empty(t, list)
}
