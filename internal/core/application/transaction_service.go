package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
	"github.com/sentry-network/sentry-wallet/pkg/wallet"
)

// TransactionService sends value transfers on behalf of an unlocked session
// and keeps the session history up to date.
type TransactionService interface {
	Send(
		ctx context.Context, session WalletSession, to string,
		amount decimal.Decimal,
	) (*domain.TransactionRecord, error)
	GetReceipt(
		ctx context.Context, session WalletSession, hash string,
	) (*ports.Receipt, error)
	NetworkInfo(ctx context.Context) (*ports.NetworkInfo, error)
}

type transactionService struct {
	chain ports.ChainClient
}

func NewTransactionService(chain ports.ChainClient) TransactionService {
	return newTransactionService(chain)
}

func newTransactionService(chain ports.ChainClient) *transactionService {
	return &transactionService{chain}
}

func (s *transactionService) Send(
	ctx context.Context, session WalletSession, to string,
	amount decimal.Decimal,
) (*domain.TransactionRecord, error) {
	return s.transfer(ctx, session, domain.TxKindSend, to, amount)
}

func (s *transactionService) GetReceipt(
	ctx context.Context, session WalletSession, hash string,
) (*ports.Receipt, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, domain.ErrNotFound.WithMessage("missing transaction hash")
	}
	receipt, err := s.chain.GetReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if session != nil {
		session.History().Update(hash, receiptStatus(receipt))
	}
	return receipt, nil
}

func (s *transactionService) NetworkInfo(
	ctx context.Context,
) (*ports.NetworkInfo, error) {
	return s.chain.GetNetworkInfo(ctx)
}

// transfer validates and submits a plain value transfer, then waits for its
// confirmation. Client detectable errors are returned before any network
// call. Once submitted, the transaction is always recorded so that the user
// can check it by hash.
func (s *transactionService) transfer(
	ctx context.Context, session WalletSession, kind domain.TxKind,
	to string, amount decimal.Decimal,
) (*domain.TransactionRecord, error) {
	state := session.Status()
	if !state.IsUnlocked() {
		return nil, domain.ErrMustBeUnlocked
	}
	to = strings.TrimSpace(to)
	if !wallet.IsValidAddress(to) {
		return nil, domain.ErrInvalidRecipient
	}
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	// The cached balance can be stale, the network check stays authoritative.
	if state.Balance != nil && amount.GreaterThan(*state.Balance) {
		return nil, domain.ErrInsufficientFunds
	}

	signer, err := session.Signer()
	if err != nil {
		return nil, err
	}

	pending, err := s.chain.SubmitTransfer(ctx, signer, to, amount)
	if err != nil {
		log.WithFields(log.Fields{
			"address": signer.Address(),
			"method":  string(kind),
		}).WithError(err).Warn("transfer rejected")
		return nil, err
	}

	return s.confirm(ctx, session, kind, to, amount, pending)
}

// confirm records the pending transaction and waits for it to be mined.
func (s *transactionService) confirm(
	ctx context.Context, session WalletSession, kind domain.TxKind,
	to string, amount decimal.Decimal, pending *ports.PendingTx,
) (*domain.TransactionRecord, error) {
	record := domain.TransactionRecord{
		Hash:      pending.Hash,
		Timestamp: time.Now().UTC(),
		Direction: kind,
		To:        to,
		Amount:    amount,
		Status:    domain.TxStatusPending,
	}
	history := session.History()
	history.Add(record)

	logger := log.WithFields(log.Fields{
		"address": pending.From,
		"tx_hash": pending.Hash,
		"method":  string(kind),
	})
	logger.Debug("transaction submitted")

	receipt, err := s.chain.AwaitConfirmation(ctx, pending)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionFailed) {
			record.Status = domain.TxStatusFailed
			history.Update(record.Hash, record.Status)
		}
		logger.WithError(err).Warn("transaction not confirmed")
		s.refreshBalance(ctx, session)
		return &record, err
	}

	record.Status = receiptStatus(receipt)
	history.Update(record.Hash, record.Status)
	s.refreshBalance(ctx, session)

	logger.Info("transaction confirmed")
	return &record, nil
}

func (s *transactionService) refreshBalance(
	ctx context.Context, session WalletSession,
) {
	// nolint:errcheck
	session.RefreshBalance(ctx)
}

func receiptStatus(receipt *ports.Receipt) domain.TxStatus {
	if receipt.Success {
		return domain.TxStatusConfirmed
	}
	return domain.TxStatusFailed
}
