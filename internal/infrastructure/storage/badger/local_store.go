package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
)

const localStoreDir = "local"

type localEntry struct {
	Key   string
	Value string
}

type localStore struct {
	store *badgerhold.Store
}

// NewLocalStore opens (or creates if not exists) the badger store holding
// the device scoped wallet collection. An empty datadir opens an in-memory
// store.
func NewLocalStore(datadir string, logger badger.Logger) (ports.LocalStore, error) {
	store, err := createDb(datadir, logger)
	if err != nil {
		return nil, err
	}
	return &localStore{store}, nil
}

func (s *localStore) Get(_ context.Context, key string) (string, bool, error) {
	var entry localEntry
	if err := s.store.Get(key, &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", false, nil
		}
		return "", false, domain.ErrInternal.WithCause(err)
	}
	return entry.Value, true, nil
}

func (s *localStore) Set(_ context.Context, key, value string) error {
	if err := s.store.Upsert(key, &localEntry{key, value}); err != nil {
		return domain.ErrInternal.WithCause(err)
	}
	return nil
}

func (s *localStore) Delete(_ context.Context, key string) error {
	if err := s.store.Delete(key, localEntry{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return domain.ErrInternal.WithCause(err)
	}
	return nil
}

func (s *localStore) Close() {
	s.store.Close()
}

func createDb(datadir string, logger badger.Logger) (*badgerhold.Store, error) {
	var opts badger.Options
	if datadir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(datadir + "/" + localStoreDir)
		opts.Compression = options.ZSTD
	}
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
