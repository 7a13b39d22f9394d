package application

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
)

// InheritanceABI is the interface of the inheritance contract used to
// register nominees.
const InheritanceABI = `[
	{"type":"function","name":"setNominee","stateMutability":"nonpayable","inputs":[{"name":"nominee","type":"address"},{"name":"percentage","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"removeNominee","stateMutability":"nonpayable","inputs":[{"name":"nominee","type":"address"}],"outputs":[]},
	{"type":"function","name":"nominees","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"share","type":"uint256"}]},
	{"type":"function","name":"claimFunds","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"receive","stateMutability":"payable"}
]`

const (
	methodSetNominee    = "setNominee"
	methodRemoveNominee = "removeNominee"
	methodNominees      = "nominees"
	methodClaimFunds    = "claimFunds"
)

// NomineeService keeps the on-chain nominee registration and its profile
// mirror consistent. The chain is always written first and the mirror only
// after the chain write is confirmed.
type NomineeService interface {
	// Fetch returns nil if no nominee is set.
	Fetch(ctx context.Context, session WalletSession) (*domain.Nominee, error)
	Save(
		ctx context.Context, session WalletSession,
		address, email string, share int,
	) (*domain.Nominee, error)
	Remove(ctx context.Context, session WalletSession) error
	Fund(
		ctx context.Context, session WalletSession, amount decimal.Decimal,
	) (*domain.TransactionRecord, error)
	Claim(
		ctx context.Context, session WalletSession,
	) (*domain.TransactionRecord, error)
	ContractBalance(ctx context.Context) (decimal.Decimal, error)
}

type nomineeService struct {
	vaultStore VaultStore
	chain      ports.ChainClient
	txService  *transactionService
	contract   string
}

func NewNomineeService(
	vaultStore VaultStore, chain ports.ChainClient, contractAddress string,
) NomineeService {
	return &nomineeService{
		vaultStore: vaultStore,
		chain:      chain,
		txService:  newTransactionService(chain),
		contract:   contractAddress,
	}
}

func (s *nomineeService) Fetch(
	ctx context.Context, session WalletSession,
) (*domain.Nominee, error) {
	state := session.Status()
	if !state.IsUnlocked() {
		return nil, domain.ErrMustBeUnlocked
	}
	userID := session.UserID()

	var (
		mirror *domain.Nominee
		share  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.vaultStore.LoadNominee(gctx, userID)
		mirror = n
		return err
	})
	g.Go(func() error {
		v, err := s.onChainShare(gctx, state.Address)
		share = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if share == 0 {
		if mirror != nil {
			if err := s.vaultStore.SaveNominee(ctx, userID, nil); err != nil {
				return nil, err
			}
			log.WithFields(log.Fields{
				"user_id": userID,
				"address": state.Address,
			}).Info("purged stale nominee mirror")
		}
		return nil, nil
	}

	if mirror == nil {
		return &domain.Nominee{Share: share}, nil
	}
	nominee := *mirror
	nominee.Share = share
	return &nominee, nil
}

func (s *nomineeService) Save(
	ctx context.Context, session WalletSession,
	address, email string, share int,
) (*domain.Nominee, error) {
	nominee, err := domain.NewNominee(address, email, share)
	if err != nil {
		return nil, err
	}

	if _, err := s.call(
		ctx, session, domain.TxKindSetNominee, methodSetNominee,
		common.HexToAddress(nominee.Address), big.NewInt(int64(nominee.Share)),
	); err != nil {
		return nil, err
	}

	if err := s.vaultStore.SaveNominee(ctx, session.UserID(), nominee); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": session.UserID(),
		"address": session.Status().Address,
	}).Info("nominee saved")
	return nominee, nil
}

func (s *nomineeService) Remove(
	ctx context.Context, session WalletSession,
) error {
	if !session.Status().IsUnlocked() {
		return domain.ErrMustBeUnlocked
	}
	mirror, err := s.vaultStore.LoadNominee(ctx, session.UserID())
	if err != nil {
		return err
	}
	if mirror == nil {
		return domain.ErrNomineeNotFound
	}

	if _, err := s.call(
		ctx, session, domain.TxKindRemoveNominee, methodRemoveNominee,
		common.HexToAddress(mirror.Address),
	); err != nil {
		return err
	}

	if err := s.vaultStore.SaveNominee(ctx, session.UserID(), nil); err != nil {
		return err
	}

	log.WithField("user_id", session.UserID()).Info("nominee removed")
	return nil
}

// Fund is a plain value transfer to the contract, not a method call.
func (s *nomineeService) Fund(
	ctx context.Context, session WalletSession, amount decimal.Decimal,
) (*domain.TransactionRecord, error) {
	return s.txService.transfer(ctx, session, domain.TxKindFund, s.contract, amount)
}

func (s *nomineeService) Claim(
	ctx context.Context, session WalletSession,
) (*domain.TransactionRecord, error) {
	return s.call(ctx, session, domain.TxKindClaim, methodClaimFunds)
}

func (s *nomineeService) ContractBalance(
	ctx context.Context,
) (decimal.Decimal, error) {
	return s.chain.GetBalance(ctx, s.contract)
}

// onChainShare returns the share recorded by the contract for the owner, 0
// when no nominee is set. Values out of the 0..100 range are rejected.
func (s *nomineeService) onChainShare(
	ctx context.Context, owner string,
) (int, error) {
	out, err := s.chain.ReadContract(ctx, ports.ContractCall{
		Contract: s.contract,
		ABI:      InheritanceABI,
		Method:   methodNominees,
		Args:     []interface{}{common.HexToAddress(owner)},
	})
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, domain.ErrNetwork.WithMessage(
			"unexpected reply from %s", methodNominees,
		)
	}
	share, ok := out[0].(*big.Int)
	if !ok || share == nil {
		return 0, domain.ErrNetwork.WithMessage(
			"unexpected reply from %s", methodNominees,
		)
	}
	if !share.IsInt64() || share.Sign() < 0 ||
		share.Int64() > domain.MaxNomineeShare {
		return 0, domain.ErrNetwork.WithMessage(
			"unexpected share %s from %s", share, methodNominees,
		)
	}
	return int(share.Int64()), nil
}

// call submits a contract method call and waits for its confirmation.
func (s *nomineeService) call(
	ctx context.Context, session WalletSession, kind domain.TxKind,
	method string, args ...interface{},
) (*domain.TransactionRecord, error) {
	signer, err := session.Signer()
	if err != nil {
		return nil, err
	}
	pending, err := s.chain.CallContract(ctx, signer, ports.ContractCall{
		Contract: s.contract,
		ABI:      InheritanceABI,
		Method:   method,
		Args:     args,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return s.txService.confirm(
		ctx, session, kind, s.contract, decimal.Zero, pending,
	)
}
