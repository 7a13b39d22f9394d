package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/pkg/wallet"
)

// LocalWalletService manages the collection of named wallets stored
// encrypted on this installation. Every read-modify-write of the collection
// is serialized.
type LocalWalletService interface {
	HasWallets(ctx context.Context) (bool, error)
	Init(ctx context.Context, password, hint string) error
	List(ctx context.Context, password string) ([]domain.WalletSummary, error)
	Create(
		ctx context.Context, password, name string,
	) (*domain.WalletSummary, []string, error)
	Import(
		ctx context.Context, password, secret, name string,
	) (*domain.WalletSummary, error)
	Remove(ctx context.Context, password, walletID string) error
	// Reset wipes the collection and its password hint, once the password
	// is verified against it.
	Reset(ctx context.Context, password string) error
	PasswordHint(ctx context.Context) (string, error)
}

type localWalletService struct {
	vaultStore VaultStore
	lock       *sync.Mutex
}

func NewLocalWalletService(vaultStore VaultStore) LocalWalletService {
	return &localWalletService{vaultStore, &sync.Mutex{}}
}

func (s *localWalletService) HasWallets(ctx context.Context) (bool, error) {
	return s.vaultStore.HasCollection(ctx)
}

// Init establishes the password of the collection by storing an empty one.
// If a collection already exists, the password is only checked against it.
func (s *localWalletService) Init(ctx context.Context, password, hint string) error {
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	exists, err := s.vaultStore.HasCollection(ctx)
	if err != nil {
		return err
	}
	if exists {
		_, err := s.vaultStore.LoadCollection(ctx, password)
		return err
	}
	if err := s.vaultStore.SaveCollection(
		ctx, domain.WalletCollection{}, password,
	); err != nil {
		return err
	}
	if hint != "" {
		if err := s.vaultStore.SavePasswordHint(ctx, hint); err != nil {
			return err
		}
	}

	log.Info("local wallet storage initialized")
	return nil
}

func (s *localWalletService) List(
	ctx context.Context, password string,
) ([]domain.WalletSummary, error) {
	list, err := s.vaultStore.LoadCollection(ctx, password)
	if err != nil {
		return nil, err
	}
	return list.Summaries(), nil
}

func (s *localWalletService) Create(
	ctx context.Context, password, name string,
) (*domain.WalletSummary, []string, error) {
	account, err := wallet.NewAccount()
	if err != nil {
		return nil, nil, domain.ErrInternal.WithCause(err)
	}
	defer account.Wipe()

	mnemonic := make([]string, len(account.Mnemonic))
	copy(mnemonic, account.Mnemonic)

	summary, err := s.add(ctx, password, name, account, false)
	if err != nil {
		return nil, nil, err
	}
	return summary, mnemonic, nil
}

func (s *localWalletService) Import(
	ctx context.Context, password, secret, name string,
) (*domain.WalletSummary, error) {
	account, err := importAccount(secret)
	if err != nil {
		return nil, err
	}
	defer account.Wipe()

	return s.add(ctx, password, name, account, true)
}

func (s *localWalletService) Remove(
	ctx context.Context, password, walletID string,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	list, err := s.vaultStore.LoadCollection(ctx, password)
	if err != nil {
		return err
	}
	next, err := list.Remove(walletID)
	if err != nil {
		return err
	}
	if err := s.vaultStore.SaveCollection(ctx, next, password); err != nil {
		return err
	}

	log.WithField("wallet_id", walletID).Info("local wallet removed")
	return nil
}

func (s *localWalletService) Reset(ctx context.Context, password string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	exists, err := s.vaultStore.HasCollection(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound.WithMessage("no local wallets are stored")
	}
	if _, err := s.vaultStore.LoadCollection(ctx, password); err != nil {
		return err
	}
	if err := s.vaultStore.ClearCollection(ctx); err != nil {
		return err
	}
	if err := s.vaultStore.ClearPasswordHint(ctx); err != nil {
		return err
	}

	log.Info("local wallet storage cleared")
	return nil
}

func (s *localWalletService) PasswordHint(ctx context.Context) (string, error) {
	return s.vaultStore.PasswordHint(ctx)
}

func (s *localWalletService) add(
	ctx context.Context, password, name string,
	account *wallet.Account, imported bool,
) (*domain.WalletSummary, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	list, err := s.vaultStore.LoadCollection(ctx, password)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Wallet %d", len(list)+1)
	}
	now := time.Now()
	entry := domain.WalletEntry{
		ID:         domain.NewWalletID(now),
		Address:    account.Address,
		PrivateKey: account.PrivateKeyHex(),
		Name:       name,
		CreatedAt:  now.UnixMilli(),
		Imported:   imported,
	}
	next, err := list.Add(entry)
	if err != nil {
		return nil, err
	}
	if err := s.vaultStore.SaveCollection(ctx, next, password); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"wallet_id": entry.ID,
		"address":   entry.Address,
	}).Info("local wallet added")

	summary := entry.Summary()
	return &summary, nil
}
