package domain_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestNewWalletID(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1700000000000)
	id := domain.NewWalletID(now)
	require.Regexp(t, regexp.MustCompile(`^wallet_1700000000000_[a-z0-9]{9}$`), id)
	require.NotEqual(t, id, domain.NewWalletID(now))
}

func TestWalletCollection(t *testing.T) {
	t.Parallel()

	first := domain.WalletEntry{
		ID: "wallet_1", Address: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", Name: "main",
	}
	second := domain.WalletEntry{
		ID: "wallet_2", Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", Name: "savings",
	}

	list, err := domain.WalletCollection{}.Add(first)
	require.NoError(t, err)
	list, err = list.Add(second)
	require.NoError(t, err)
	require.Len(t, list, 2)

	dup := second
	dup.ID = "wallet_3"
	dup.Address = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	_, err = list.Add(dup)
	require.ErrorIs(t, err, domain.ErrInvalidSecretFormat)

	plaintext, err := list.Serialize()
	require.NoError(t, err)
	parsed, err := domain.ParseWalletCollection(plaintext)
	require.NoError(t, err)
	require.Equal(t, list, parsed)

	found, ok := parsed.Find("wallet_2")
	require.True(t, ok)
	require.Equal(t, "savings", found.Name)

	parsed, err = parsed.Remove("wallet_1")
	require.NoError(t, err)
	require.Len(t, parsed, 1)

	_, err = parsed.Remove("wallet_1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	summaries := list.Summaries()
	require.Len(t, summaries, 2)
	require.Equal(t, first.Address, summaries[0].Address)

	_, err = domain.ParseWalletCollection("{broken")
	require.ErrorIs(t, err, domain.ErrDecryptionFailed)
}
