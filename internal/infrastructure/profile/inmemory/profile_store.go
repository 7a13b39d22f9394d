package inmemory

import (
	"context"
	"sync"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
)

type profile struct {
	encryptedWallet string
	nomineeData     []byte
}

// ProfileStore keeps profiles in memory. Meant for development and tests.
type ProfileStore struct {
	locker   *sync.RWMutex
	profiles map[string]*profile
}

// NewProfileStore returns a new empty ProfileStore
func NewProfileStore() ports.ProfileStore {
	return newProfileStore()
}

func newProfileStore() *ProfileStore {
	return &ProfileStore{
		locker:   &sync.RWMutex{},
		profiles: make(map[string]*profile),
	}
}

func (s *ProfileStore) GetEncryptedWallet(
	_ context.Context, userID string,
) (string, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()

	p, ok := s.profiles[userID]
	if !ok || p.encryptedWallet == "" {
		return "", domain.ErrNotFound
	}
	return p.encryptedWallet, nil
}

func (s *ProfileStore) SetEncryptedWallet(
	_ context.Context, userID, ciphertext string,
) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	s.get(userID).encryptedWallet = ciphertext
	return nil
}

func (s *ProfileStore) GetNomineeData(
	_ context.Context, userID string,
) ([]byte, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()

	p, ok := s.profiles[userID]
	if !ok || p.nomineeData == nil {
		return nil, nil
	}
	data := make([]byte, len(p.nomineeData))
	copy(data, p.nomineeData)
	return data, nil
}

func (s *ProfileStore) SetNomineeData(
	_ context.Context, userID string, data []byte,
) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	p := s.get(userID)
	if data == nil {
		p.nomineeData = nil
		return nil
	}
	p.nomineeData = make([]byte, len(data))
	copy(p.nomineeData, data)
	return nil
}

func (s *ProfileStore) Close() {}

// get must be called with the write lock held.
func (s *ProfileStore) get(userID string) *profile {
	p, ok := s.profiles[userID]
	if !ok {
		p = &profile{}
		s.profiles[userID] = p
	}
	return p
}
