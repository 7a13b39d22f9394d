package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/thanhpk/randstr"
)

const walletIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// WalletEntry is one named wallet of the local collection.
type WalletEntry struct {
	ID         string `json:"id"`
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	Name       string `json:"name"`
	CreatedAt  int64  `json:"createdAt"`
	Imported   bool   `json:"imported"`
}

// WalletSummary is the public view of a WalletEntry.
type WalletSummary struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	Imported  bool   `json:"imported"`
}

func (e WalletEntry) Summary() WalletSummary {
	return WalletSummary{
		ID:        e.ID,
		Address:   e.Address,
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
		Imported:  e.Imported,
	}
}

// NewWalletID returns an id in the form wallet_<unixmillis>_<random>.
func NewWalletID(now time.Time) string {
	return fmt.Sprintf(
		"wallet_%d_%s", now.UnixMilli(), randstr.String(9, walletIDAlphabet),
	)
}

// WalletCollection is the list of local wallets, serialized and encrypted as
// a whole.
type WalletCollection []WalletEntry

// ParseWalletCollection decodes the decrypted form of a collection.
func ParseWalletCollection(plaintext string) (WalletCollection, error) {
	var list WalletCollection
	if err := json.Unmarshal([]byte(plaintext), &list); err != nil {
		return nil, ErrDecryptionFailed
	}
	if list == nil {
		list = WalletCollection{}
	}
	return list, nil
}

// Serialize returns the plaintext form of the collection.
func (c WalletCollection) Serialize() (string, error) {
	if c == nil {
		c = WalletCollection{}
	}
	buf, err := json.Marshal(c)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return string(buf), nil
}

// ContainsAddress compares addresses case insensitively.
func (c WalletCollection) ContainsAddress(address string) bool {
	for _, e := range c {
		if strings.EqualFold(e.Address, address) {
			return true
		}
	}
	return false
}

func (c WalletCollection) Find(id string) (WalletEntry, bool) {
	for _, e := range c {
		if e.ID == id {
			return e, true
		}
	}
	return WalletEntry{}, false
}

// Add returns a new collection with entry appended, or an error if a wallet
// with the same address already exists.
func (c WalletCollection) Add(entry WalletEntry) (WalletCollection, error) {
	if c.ContainsAddress(entry.Address) {
		return nil, ErrInvalidSecretFormat.WithMessage(
			"wallet %s already exists", entry.Address,
		)
	}
	next := make(WalletCollection, 0, len(c)+1)
	next = append(next, c...)
	return append(next, entry), nil
}

// Remove returns a new collection without the entry with the given id.
func (c WalletCollection) Remove(id string) (WalletCollection, error) {
	next := make(WalletCollection, 0, len(c))
	found := false
	for _, e := range c {
		if e.ID == id {
			found = true
			continue
		}
		next = append(next, e)
	}
	if !found {
		return nil, ErrNotFound.WithMessage("wallet %s not found", id)
	}
	return next, nil
}

func (c WalletCollection) Summaries() []WalletSummary {
	list := make([]WalletSummary, 0, len(c))
	for _, e := range c {
		list = append(list, e.Summary())
	}
	return list
}
