package application_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sentry-network/sentry-wallet/internal/core/application"
	"github.com/sentry-network/sentry-wallet/internal/core/domain"
)

func TestSessionManager(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	manager := application.NewSessionManager(env.vaultStore, env.chain, 5)

	first := manager.Session("u1")
	require.Same(t, first, manager.Session("u1"))
	second := manager.Session("u2")
	require.NotSame(t, first, second)
	require.Equal(t, 2, manager.Count())
	require.Equal(t, "u2", second.UserID())

	_, err := first.Create(ctx, testPassword, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.SessionLocked, second.Status().Status)

	first.History().Add(domain.TransactionRecord{Hash: "0x1", Amount: decimal.Zero})

	manager.End("u1")
	require.Equal(t, 1, manager.Count())
	require.Equal(t, domain.SessionLocked, first.Status().Status)
	require.Empty(t, first.History().List())

	fresh := manager.Session("u1")
	require.NotSame(t, first, fresh)
	_, err = fresh.Unlock(ctx, testPassword, "u1")
	require.NoError(t, err)

	manager.Close()
	require.Zero(t, manager.Count())
	require.Equal(t, domain.SessionLocked, fresh.Status().Status)
}
