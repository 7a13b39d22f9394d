package inmemory_test

import (
	"context"
	"testing"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/infrastructure/profile/inmemory"
	"github.com/stretchr/testify/require"
)

func TestProfileStore(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewProfileStore()
	defer store.Close()

	_, err := store.GetEncryptedWallet(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SetEncryptedWallet(ctx, "u1", "cypher"))
	got, err := store.GetEncryptedWallet(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "cypher", got)

	data, err := store.GetNomineeData(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, data)

	require.NoError(t, store.SetNomineeData(ctx, "u1", []byte(`{"share":10}`)))
	data, err = store.GetNomineeData(ctx, "u1")
	require.NoError(t, err)
	require.JSONEq(t, `{"share":10}`, string(data))

	require.NoError(t, store.SetNomineeData(ctx, "u1", nil))
	data, err = store.GetNomineeData(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, data)

	got, err = store.GetEncryptedWallet(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "cypher", got)
}
