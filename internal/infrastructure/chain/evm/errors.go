package evm

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/sony/gobreaker"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
)

var (
	// ErrChainIDMismatch is returned when the node serves a different chain
	// than the configured one.
	ErrChainIDMismatch = domain.ErrNetwork.WithMessage(
		"connected to an unexpected network",
	)
	errUnexpectedReply = domain.ErrNetwork.WithMessage(
		"unexpected reply from ledger node",
	)
)

// translateError maps go-ethereum and breaker errors to domain ones. The
// node error messages are not typed, so they are matched by content.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	if errors.Is(err, ethereum.NotFound) {
		return domain.ErrTransactionPending
	}
	if errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.ErrNetwork.WithCause(err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return domain.ErrInsufficientFunds.WithCause(err)
	case strings.Contains(msg, "execution reverted"),
		strings.Contains(msg, "revert"):
		return domain.ErrTransactionFailed.WithCause(err)
	default:
		return domain.ErrNetwork.WithCause(err)
	}
}

// isSuccessful tells the circuit breaker which errors come from a healthy
// node that simply rejected the request.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	switch domain.KindOf(translateError(err)) {
	case domain.KindNetwork, domain.KindInternal:
		return false
	default:
		return true
	}
}
