package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sentry-network/sentry-wallet/pkg/wallet"
)

const (
	MinNomineeShare = 1
	MaxNomineeShare = 100
)

// Nominee is the beneficiary registered for a wallet. The share is
// authoritative on-chain, the email only lives in the profile mirror.
type Nominee struct {
	Address   string    `json:"address"`
	Email     string    `json:"email"`
	Share     int       `json:"share"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNominee validates its arguments and returns a Nominee created now.
func NewNominee(address, email string, share int) (*Nominee, error) {
	n := &Nominee{
		Address:   strings.TrimSpace(address),
		Email:     strings.TrimSpace(email),
		Share:     share,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n Nominee) Validate() error {
	if !wallet.IsValidAddress(n.Address) {
		return ErrInvalidNominee.WithMessage("invalid nominee address")
	}
	if n.Share < MinNomineeShare || n.Share > MaxNomineeShare {
		return ErrInvalidNominee.WithMessage(
			"nominee share must be between %d and %d", MinNomineeShare, MaxNomineeShare,
		)
	}
	return nil
}

// ParseNominee decodes the profile mirror. An empty or null field means no
// nominee.
func ParseNominee(data []byte) (*Nominee, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	n := &Nominee{}
	if err := json.Unmarshal([]byte(trimmed), n); err != nil {
		return nil, ErrPersistence.WithCause(err)
	}
	return n, nil
}

func (n Nominee) Bytes() []byte {
	buf, _ := json.Marshal(n)
	return buf
}
