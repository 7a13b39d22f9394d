package circuitbreaker_test

import (
	"errors"
	"testing"

	"github.com/sentry-network/sentry-wallet/pkg/circuitbreaker"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

var errRPC = errors.New("rpc unreachable")

func TestCircuitBreakerTrips(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker("test", nil)

	for i := 0; i <= circuitbreaker.MaxNumOfFailingRequests; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, errRPC
		})
		require.ErrorIs(t, err, errRPC)
	}

	_, err := cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreakerIgnoresSuccessfulErrors(t *testing.T) {
	errNotFound := errors.New("not found")
	cb := circuitbreaker.NewCircuitBreaker("test", func(err error) bool {
		return err == nil || errors.Is(err, errNotFound)
	})

	for i := 0; i <= 2*circuitbreaker.MaxNumOfFailingRequests; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, errNotFound
		})
		require.ErrorIs(t, err, errNotFound)
	}
	require.Equal(t, gobreaker.StateClosed, cb.State())
}
