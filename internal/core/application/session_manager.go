package application

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/sentry-network/sentry-wallet/internal/core/ports"
)

// SessionManager owns one WalletSession per user identity for the lifetime
// of the process.
type SessionManager interface {
	Session(userID string) WalletSession
	// End locks the session of the user and forgets it, history included.
	End(userID string)
	Count() int
	Close()
}

type sessionManager struct {
	vaultStore  VaultStore
	chain       ports.ChainClient
	historySize int

	lock     *sync.Mutex
	sessions map[string]WalletSession
}

func NewSessionManager(
	vaultStore VaultStore, chain ports.ChainClient, historySize int,
) SessionManager {
	return &sessionManager{
		vaultStore:  vaultStore,
		chain:       chain,
		historySize: historySize,
		lock:        &sync.Mutex{},
		sessions:    make(map[string]WalletSession),
	}
}

func (m *sessionManager) Session(userID string) WalletSession {
	m.lock.Lock()
	defer m.lock.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := NewWalletSession(WalletSessionOpts{
		UserID:      userID,
		VaultStore:  m.vaultStore,
		ChainClient: m.chain,
		HistorySize: m.historySize,
	})
	m.sessions[userID] = s
	log.WithField("user_id", userID).Debug("new wallet session")
	return s
}

func (m *sessionManager) End(userID string) {
	m.lock.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.lock.Unlock()

	if ok {
		s.Lock()
		s.History().Clear()
	}
}

func (m *sessionManager) Count() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.sessions)
}

// Close locks every session.
func (m *sessionManager) Close() {
	m.lock.Lock()
	defer m.lock.Unlock()

	for userID, s := range m.sessions {
		s.Lock()
		delete(m.sessions, userID)
	}
}
