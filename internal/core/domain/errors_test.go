package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	err := domain.ErrNotFound.WithMessage("no wallet for %s", "u1")
	wrapped := fmt.Errorf("unlock: %w", err)

	require.True(t, errors.Is(wrapped, domain.ErrNotFound))
	require.False(t, errors.Is(wrapped, domain.ErrDecryptionFailed))
	require.Equal(t, domain.KindNotFound, domain.KindOf(wrapped))
	require.Equal(t, domain.KindInternal, domain.KindOf(errors.New("boom")))
	require.Equal(t, "NotFound", domain.KindNotFound.String())
	require.EqualError(t, err, "no wallet for u1")

	cause := errors.New("connection refused")
	withCause := domain.ErrNetwork.WithCause(cause)
	require.ErrorIs(t, withCause, cause)
	require.ErrorIs(t, withCause, domain.ErrNetwork)
}
