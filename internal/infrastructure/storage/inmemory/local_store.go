package inmemory

import (
	"context"
	"sync"

	"github.com/sentry-network/sentry-wallet/internal/core/ports"
)

// LocalStore is a ports.LocalStore backed by a map.
type LocalStore struct {
	locker *sync.RWMutex
	values map[string]string
}

func NewLocalStore() ports.LocalStore {
	return &LocalStore{
		locker: &sync.RWMutex{},
		values: make(map[string]string),
	}
}

func (s *LocalStore) Get(_ context.Context, key string) (string, bool, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *LocalStore) Set(_ context.Context, key, value string) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	s.values[key] = value
	return nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	delete(s.values, key)
	return nil
}

func (s *LocalStore) Close() {}
