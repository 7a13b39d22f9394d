package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHistorySize is the number of records kept by a History.
const DefaultHistorySize = 10

type TxKind string

const (
	TxKindSend  TxKind = "send"
	TxKindFund  TxKind = "fund"
	TxKindClaim TxKind = "claim"

	TxKindSetNominee    TxKind = "setNominee"
	TxKindRemoveNominee TxKind = "removeNominee"
)

type TxStatus string

const (
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusFailed    TxStatus = "failed"
	TxStatusPending   TxStatus = "pending"
)

// TransactionRecord is a client side note of a submitted transaction. The
// chain remains the source of truth, the hash is what lets the user check it.
type TransactionRecord struct {
	Hash      string          `json:"hash"`
	Timestamp time.Time       `json:"timestamp"`
	Direction TxKind          `json:"type"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Status    TxStatus        `json:"status"`
}

// History is a bounded, most recent first, list of records safe for
// concurrent use.
type History struct {
	lock    sync.RWMutex
	size    int
	records []TransactionRecord
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

// Add prepends the record, dropping the oldest one when the list is full.
func (h *History) Add(record TransactionRecord) {
	h.lock.Lock()
	defer h.lock.Unlock()

	next := make([]TransactionRecord, 0, h.size)
	next = append(next, record)
	for _, r := range h.records {
		if len(next) >= h.size {
			break
		}
		next = append(next, r)
	}
	h.records = next
}

// Update changes the status of the record with the given hash, if any.
func (h *History) Update(hash string, status TxStatus) bool {
	h.lock.Lock()
	defer h.lock.Unlock()

	for i, r := range h.records {
		if r.Hash == hash {
			h.records[i].Status = status
			return true
		}
	}
	return false
}

// List returns a copy of the records.
func (h *History) List() []TransactionRecord {
	h.lock.RLock()
	defer h.lock.RUnlock()

	list := make([]TransactionRecord, len(h.records))
	copy(list, h.records)
	return list
}

func (h *History) Clear() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.records = nil
}
