package application

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
	"github.com/sentry-network/sentry-wallet/pkg/wallet"
)

var errLockedWhileUnlocking = domain.ErrMustBeUnlocked.WithMessage(
	"wallet was locked before the operation completed",
)

// CreatedWallet is returned by WalletSession.Create. The mnemonic is handed
// out once and not retained by the session.
type CreatedWallet struct {
	Address  string
	Mnemonic []string
}

// WalletSession holds the unlocked key of a user for the lifetime of the
// session and is the only component allowed to produce a signer.
type WalletSession interface {
	UserID() string
	Create(ctx context.Context, password, userID string) (*CreatedWallet, error)
	Import(ctx context.Context, password, userID, secret string) (string, error)
	Unlock(
		ctx context.Context, password, userID string,
	) (domain.SessionState, error)
	UnlockLocal(
		ctx context.Context, password, walletID string,
	) (domain.SessionState, error)
	Lock()
	ChangePassword(ctx context.Context, userID, current, next string) error
	Exists(ctx context.Context, userID string) (bool, error)
	RefreshBalance(ctx context.Context) (domain.SessionState, error)
	Status() domain.SessionState
	Signer() (ports.Signer, error)
	History() *domain.History
}

type WalletSessionOpts struct {
	UserID      string
	VaultStore  VaultStore
	ChainClient ports.ChainClient
	HistorySize int
}

type walletSession struct {
	userID     string
	vaultStore VaultStore
	chain      ports.ChainClient
	history    *domain.History

	lock         *sync.RWMutex
	status       domain.SessionStatus
	account      *wallet.Account
	balance      *decimal.Decimal
	balanceError string
	errMsg       string
	// generation is bumped at every lock so that signers and in flight
	// operations started before can tell they are stale.
	generation uint64
}

func NewWalletSession(opts WalletSessionOpts) WalletSession {
	return newWalletSession(opts)
}

func newWalletSession(opts WalletSessionOpts) *walletSession {
	return &walletSession{
		userID:     opts.UserID,
		vaultStore: opts.VaultStore,
		chain:      opts.ChainClient,
		history:    domain.NewHistory(opts.HistorySize),
		lock:       &sync.RWMutex{},
		status:     domain.SessionLocked,
	}
}

func (s *walletSession) UserID() string {
	return s.userID
}

func (s *walletSession) Create(
	ctx context.Context, password, userID string,
) (*CreatedWallet, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	gen, err := s.beginTransition()
	if err != nil {
		return nil, err
	}

	account, err := wallet.NewAccount()
	if err != nil {
		s.failTransition(gen, domain.ErrInternal.WithCause(err))
		return nil, domain.ErrInternal
	}
	mnemonic := account.Mnemonic
	account.Mnemonic = nil

	if err := s.persist(ctx, userID, account, password); err != nil {
		account.Wipe()
		s.failTransition(gen, err)
		return nil, err
	}
	if err := s.completeTransition(ctx, gen, account); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"address": account.Address,
	}).Info("wallet created")

	return &CreatedWallet{Address: account.Address, Mnemonic: mnemonic}, nil
}

func (s *walletSession) Import(
	ctx context.Context, password, userID, secret string,
) (string, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return "", err
	}
	account, err := importAccount(secret)
	if err != nil {
		return "", err
	}
	account.Mnemonic = nil

	gen, err := s.beginTransition()
	if err != nil {
		account.Wipe()
		return "", err
	}
	if err := s.persist(ctx, userID, account, password); err != nil {
		account.Wipe()
		s.failTransition(gen, err)
		return "", err
	}
	address := account.Address
	if err := s.completeTransition(ctx, gen, account); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"address": address,
	}).Info("wallet imported")

	return address, nil
}

func (s *walletSession) Unlock(
	ctx context.Context, password, userID string,
) (domain.SessionState, error) {
	gen, err := s.beginTransition()
	if err != nil {
		return s.Status(), err
	}

	vault, err := s.vaultStore.Load(ctx, userID)
	if err != nil {
		s.failTransition(gen, err)
		return s.Status(), err
	}
	account, err := accountFromVault(vault, password)
	if err != nil {
		s.failTransition(gen, err)
		return s.Status(), err
	}
	if err := s.completeTransition(ctx, gen, account); err != nil {
		return s.Status(), err
	}

	log.WithField("user_id", userID).Info("wallet unlocked")
	return s.Status(), nil
}

func (s *walletSession) UnlockLocal(
	ctx context.Context, password, walletID string,
) (domain.SessionState, error) {
	gen, err := s.beginTransition()
	if err != nil {
		return s.Status(), err
	}

	list, err := s.vaultStore.LoadCollection(ctx, password)
	if err != nil {
		s.failTransition(gen, err)
		return s.Status(), err
	}
	entry, ok := list.Find(walletID)
	if !ok {
		err := domain.ErrNotFound.WithMessage("wallet %s not found", walletID)
		s.failTransition(gen, err)
		return s.Status(), err
	}
	account, err := wallet.NewAccountFromPrivateKey(entry.PrivateKey)
	if err != nil {
		s.failTransition(gen, domain.ErrDecryptionFailed)
		return s.Status(), domain.ErrDecryptionFailed
	}
	if err := s.completeTransition(ctx, gen, account); err != nil {
		return s.Status(), err
	}

	log.WithField("wallet_id", walletID).Info("local wallet unlocked")
	return s.Status(), nil
}

// Lock wipes the key material synchronously. It is allowed from any state.
func (s *walletSession) Lock() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.resetLocked()
	s.generation++
	log.WithField("user_id", s.userID).Debug("wallet locked")
}

func (s *walletSession) ChangePassword(
	ctx context.Context, userID, current, next string,
) error {
	if err := domain.ValidatePassword(next); err != nil {
		return err
	}

	gen, err := s.beginTransition()
	if err != nil {
		return err
	}

	vault, err := s.vaultStore.Load(ctx, userID)
	if err != nil {
		s.endLockedTransition(gen, err)
		return err
	}
	secret, err := vault.Secret(current)
	if err != nil {
		s.endLockedTransition(gen, err)
		return err
	}
	newVault, err := domain.NewVault(userID, secret, next)
	if err != nil {
		s.endLockedTransition(gen, err)
		return err
	}
	if err := s.vaultStore.Save(ctx, newVault); err != nil {
		s.endLockedTransition(gen, err)
		return err
	}
	s.endLockedTransition(gen, nil)

	log.WithField("user_id", userID).Info("wallet password changed")
	return nil
}

func (s *walletSession) Exists(ctx context.Context, userID string) (bool, error) {
	return s.vaultStore.Exists(ctx, userID)
}

func (s *walletSession) RefreshBalance(
	ctx context.Context,
) (domain.SessionState, error) {
	s.lock.RLock()
	if s.status != domain.SessionUnlocked {
		s.lock.RUnlock()
		return s.Status(), domain.ErrMustBeUnlocked
	}
	address := s.account.Address
	gen := s.generation
	s.lock.RUnlock()

	balance, err := s.chain.GetBalance(ctx, address)

	s.lock.Lock()
	if gen != s.generation {
		s.lock.Unlock()
		return s.Status(), errLockedWhileUnlocking
	}
	if err != nil {
		s.balance = nil
		s.balanceError = err.Error()
	} else {
		s.balance = &balance
		s.balanceError = ""
	}
	s.lock.Unlock()

	if err != nil {
		log.WithField("address", address).WithError(err).Warn(
			"failed to fetch balance",
		)
	}
	return s.Status(), err
}

func (s *walletSession) Status() domain.SessionState {
	s.lock.RLock()
	defer s.lock.RUnlock()

	state := domain.SessionState{
		Status:       s.status,
		BalanceError: s.balanceError,
		Error:        s.errMsg,
	}
	if s.status == domain.SessionUnlocked {
		state.Address = s.account.Address
		if s.balance != nil {
			balance := *s.balance
			state.Balance = &balance
		}
	}
	return state
}

// Signer returns a handle bound to the current unlocked state. The handle
// stops working as soon as the session is locked.
func (s *walletSession) Signer() (ports.Signer, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.status != domain.SessionUnlocked {
		return nil, domain.ErrMustBeUnlocked
	}
	return &sessionSigner{
		session:    s,
		address:    s.account.Address,
		generation: s.generation,
	}, nil
}

func (s *walletSession) History() *domain.History {
	return s.history
}

// beginTransition moves the session to Unlocking. Only one transition can be
// in flight, and only a locked session can start one.
func (s *walletSession) beginTransition() (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	switch s.status {
	case domain.SessionUnlocking:
		return 0, domain.ErrAlreadyInProgress
	case domain.SessionUnlocked:
		return 0, domain.ErrMustBeLocked
	case domain.SessionError:
		return 0, domain.ErrMustBeLocked.WithMessage(
			"wallet is in error state, lock it before retrying",
		)
	}
	s.status = domain.SessionUnlocking
	s.errMsg = ""
	return s.generation, nil
}

// completeTransition installs the account and fetches the initial balance.
// The balance fetch failing does not undo the unlock.
func (s *walletSession) completeTransition(
	ctx context.Context, gen uint64, account *wallet.Account,
) error {
	s.lock.Lock()
	if gen != s.generation {
		s.lock.Unlock()
		account.Wipe()
		return errLockedWhileUnlocking
	}
	s.account = account
	s.status = domain.SessionUnlocked
	s.balance = nil
	s.balanceError = ""
	s.lock.Unlock()

	// nolint:errcheck
	s.RefreshBalance(ctx)
	return nil
}

// failTransition reverts to Locked. Unexpected failures are attached to the
// state so that they can be reported, but do not block a retry.
func (s *walletSession) failTransition(gen uint64, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if gen != s.generation {
		return
	}
	s.resetLocked()
	if domain.KindOf(err) == domain.KindInternal {
		s.errMsg = err.Error()
		log.WithField("user_id", s.userID).WithError(err).Warn(
			"wallet session transition failed",
		)
	}
}

// fail moves an unlocked session to Error, wiping the key. Only Lock
// brings it back to Locked.
func (s *walletSession) fail(gen uint64, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if gen != s.generation || s.status != domain.SessionUnlocked {
		return
	}
	s.resetLocked()
	s.status = domain.SessionError
	s.errMsg = err.Error()
	log.WithField("user_id", s.userID).WithError(err).Warn(
		"wallet session moved to error state",
	)
}

// endLockedTransition terminates a transition that never unlocks the wallet.
func (s *walletSession) endLockedTransition(gen uint64, err error) {
	if err != nil {
		s.failTransition(gen, err)
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if gen == s.generation {
		s.resetLocked()
	}
}

func (s *walletSession) resetLocked() {
	if s.account != nil {
		s.account.Wipe()
	}
	s.account = nil
	s.balance = nil
	s.balanceError = ""
	s.errMsg = ""
	s.status = domain.SessionLocked
}

func (s *walletSession) persist(
	ctx context.Context, userID string, account *wallet.Account, password string,
) error {
	vault, err := domain.NewVault(userID, account.PrivateKeyHex(), password)
	if err != nil {
		return err
	}
	return s.vaultStore.Save(ctx, vault)
}

type sessionSigner struct {
	session    *walletSession
	address    string
	generation uint64
}

func (s *sessionSigner) Address() string {
	return s.address
}

func (s *sessionSigner) SignHash(hash []byte) ([]byte, error) {
	if len(hash) != crypto.DigestLength {
		return nil, domain.ErrInternal.WithMessage(
			"hash must be %d bytes long", crypto.DigestLength,
		)
	}

	s.session.lock.RLock()
	if s.session.status != domain.SessionUnlocked ||
		s.session.generation != s.generation {
		s.session.lock.RUnlock()
		return nil, domain.ErrMustBeUnlocked
	}
	sig, err := signHash(hash, s.session.account)
	s.session.lock.RUnlock()

	if err != nil {
		s.session.fail(s.generation, err)
		return nil, domain.ErrInternal.WithCause(err)
	}
	return sig, nil
}

// signHash is replaced in tests to simulate a faulty key.
var signHash = func(hash []byte, account *wallet.Account) ([]byte, error) {
	return crypto.Sign(hash, account.PrivateKey())
}

func importAccount(secret string) (*wallet.Account, error) {
	account, err := wallet.ImportAccount(secret)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidSecretFormat) {
			return nil, domain.ErrInvalidSecretFormat
		}
		return nil, domain.ErrInternal.WithCause(err)
	}
	return account, nil
}

// accountFromVault decrypts the vault and rebuilds the account. A plaintext
// that is not a valid key means the vault is corrupted, which is reported
// like a wrong password.
func accountFromVault(
	vault *domain.Vault, password string,
) (*wallet.Account, error) {
	secret, err := vault.Secret(password)
	if err != nil {
		return nil, err
	}
	account, err := wallet.NewAccountFromPrivateKey(secret)
	if err != nil {
		return nil, domain.ErrDecryptionFailed
	}
	return account, nil
}
