package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
)

const (
	// LocalWalletsKey is the local store key holding the encrypted wallet
	// collection.
	LocalWalletsKey = "sentry_wallets"
	// PasswordHintKey is the local store key holding the optional plaintext
	// password hint.
	PasswordHintKey = "sentry_password_hint"
)

var errLocalStoreNotConfigured = domain.ErrInternal.WithMessage(
	"local wallet storage is not configured",
)

// VaultStore persists encrypted vaults. The remote path stores one vault per
// user identity in the profile store, the local path stores one encrypted
// collection of named wallets per installation.
type VaultStore interface {
	Save(ctx context.Context, vault *domain.Vault) error
	Load(ctx context.Context, userID string) (*domain.Vault, error)
	Exists(ctx context.Context, userID string) (bool, error)

	SaveCollection(
		ctx context.Context, list domain.WalletCollection, password string,
	) error
	LoadCollection(
		ctx context.Context, password string,
	) (domain.WalletCollection, error)
	HasCollection(ctx context.Context) (bool, error)
	ClearCollection(ctx context.Context) error

	// LoadNominee returns nil if no nominee is mirrored for the user.
	LoadNominee(ctx context.Context, userID string) (*domain.Nominee, error)
	// SaveNominee with a nil nominee purges the mirror.
	SaveNominee(ctx context.Context, userID string, nominee *domain.Nominee) error

	SavePasswordHint(ctx context.Context, hint string) error
	PasswordHint(ctx context.Context) (string, error)
	ClearPasswordHint(ctx context.Context) error
}

type vaultStore struct {
	profiles ports.ProfileStore
	local    ports.LocalStore
}

// NewVaultStore returns a VaultStore over the given stores. The local store
// can be nil if the alternate local mode is not used.
func NewVaultStore(
	profiles ports.ProfileStore, local ports.LocalStore,
) VaultStore {
	return &vaultStore{profiles, local}
}

func (s *vaultStore) Save(ctx context.Context, vault *domain.Vault) error {
	if vault == nil || vault.Ciphertext == "" {
		return domain.ErrInternal.WithMessage("missing vault")
	}
	if strings.TrimSpace(vault.UserID) == "" {
		return domain.ErrInternal.WithMessage("missing user identity")
	}
	err := s.profiles.SetEncryptedWallet(ctx, vault.UserID, vault.Ciphertext)
	return persistenceError(err)
}

func (s *vaultStore) Load(
	ctx context.Context, userID string,
) (*domain.Vault, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrNotFound
	}
	ciphertext, err := s.profiles.GetEncryptedWallet(ctx, userID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if ciphertext == "" {
		return nil, domain.ErrNotFound
	}
	return &domain.Vault{UserID: userID, Ciphertext: ciphertext}, nil
}

func (s *vaultStore) Exists(ctx context.Context, userID string) (bool, error) {
	if _, err := s.Load(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *vaultStore) LoadNominee(
	ctx context.Context, userID string,
) (*domain.Nominee, error) {
	data, err := s.profiles.GetNomineeData(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, persistenceError(err)
	}
	return domain.ParseNominee(data)
}

func (s *vaultStore) SaveNominee(
	ctx context.Context, userID string, nominee *domain.Nominee,
) error {
	var data []byte
	if nominee != nil {
		data = nominee.Bytes()
	}
	return persistenceError(s.profiles.SetNomineeData(ctx, userID, data))
}

func (s *vaultStore) SaveCollection(
	ctx context.Context, list domain.WalletCollection, password string,
) error {
	if s.local == nil {
		return errLocalStoreNotConfigured
	}
	plaintext, err := list.Serialize()
	if err != nil {
		return err
	}
	ciphertext, err := domain.Encrypt(plaintext, password)
	if err != nil {
		return err
	}
	return localError(s.local.Set(ctx, LocalWalletsKey, ciphertext))
}

func (s *vaultStore) LoadCollection(
	ctx context.Context, password string,
) (domain.WalletCollection, error) {
	if s.local == nil {
		return nil, errLocalStoreNotConfigured
	}
	ciphertext, ok, err := s.local.Get(ctx, LocalWalletsKey)
	if err != nil {
		return nil, localError(err)
	}
	if !ok {
		return domain.WalletCollection{}, nil
	}
	plaintext, err := domain.Decrypt(ciphertext, password)
	if err != nil {
		return nil, err
	}
	return domain.ParseWalletCollection(plaintext)
}

func (s *vaultStore) HasCollection(ctx context.Context) (bool, error) {
	if s.local == nil {
		return false, nil
	}
	_, ok, err := s.local.Get(ctx, LocalWalletsKey)
	if err != nil {
		return false, localError(err)
	}
	return ok, nil
}

func (s *vaultStore) ClearCollection(ctx context.Context) error {
	if s.local == nil {
		return errLocalStoreNotConfigured
	}
	return localError(s.local.Delete(ctx, LocalWalletsKey))
}

func (s *vaultStore) SavePasswordHint(ctx context.Context, hint string) error {
	if s.local == nil {
		return errLocalStoreNotConfigured
	}
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return s.ClearPasswordHint(ctx)
	}
	return localError(s.local.Set(ctx, PasswordHintKey, hint))
}

func (s *vaultStore) PasswordHint(ctx context.Context) (string, error) {
	if s.local == nil {
		return "", nil
	}
	hint, _, err := s.local.Get(ctx, PasswordHintKey)
	return hint, localError(err)
}

func (s *vaultStore) ClearPasswordHint(ctx context.Context) error {
	if s.local == nil {
		return errLocalStoreNotConfigured
	}
	return localError(s.local.Delete(ctx, PasswordHintKey))
}

// persistenceError makes sure that any failure of the profile store not
// already expressed as a domain error is reported as a persistence one.
func persistenceError(err error) error {
	if err == nil {
		return nil
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	return domain.ErrPersistence.WithCause(err)
}

// localError reports local storage failures as internal ones, the local path
// has no network step.
func localError(err error) error {
	if err == nil {
		return nil
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	return domain.ErrInternal.WithCause(err)
}
