package domain

import "github.com/shopspring/decimal"

type SessionStatus int

const (
	SessionLocked SessionStatus = iota
	SessionUnlocking
	SessionUnlocked
	SessionError
)

func (s SessionStatus) String() string {
	switch s {
	case SessionUnlocking:
		return "unlocking"
	case SessionUnlocked:
		return "unlocked"
	case SessionError:
		return "error"
	default:
		return "locked"
	}
}

// SessionState is a snapshot of a wallet session. Balance is nil when it is
// unknown, in which case BalanceError tells why.
type SessionState struct {
	Status       SessionStatus
	Address      string
	Balance      *decimal.Decimal
	BalanceError string
	Error        string
}

func (s SessionState) IsUnlocked() bool {
	return s.Status == SessionUnlocked
}
