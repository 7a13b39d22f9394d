package evm

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
	"github.com/sentry-network/sentry-wallet/pkg/circuitbreaker"
	"github.com/sentry-network/sentry-wallet/pkg/wallet"
)

const (
	// TransferGasLimit is the gas limit of a plain value transfer.
	TransferGasLimit = uint64(21000)

	nativeDecimals = 18

	defaultRequestsPerSecond   = 10
	defaultConfirmationTimeout = 2 * time.Minute
	defaultPollInterval        = 2 * time.Second
)

// RPCBackend is the subset of *ethclient.Client used by the service.
type RPCBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(
		ctx context.Context, account common.Address, blockNumber *big.Int,
	) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(
		ctx context.Context, txHash common.Hash,
	) (*types.Receipt, error)
	CallContract(
		ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int,
	) ([]byte, error)
	Close()
}

type Opts struct {
	RPCURL              string
	NetworkName         string
	ExpectedChainID     uint64
	RequestsPerSecond   int
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
}

func (o *Opts) setDefaults() {
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = defaultRequestsPerSecond
	}
	if o.ConfirmationTimeout <= 0 {
		o.ConfirmationTimeout = defaultConfirmationTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
}

type service struct {
	opts    Opts
	backend RPCBackend
	limiter ratelimit.Limiter
	cb      *gobreaker.CircuitBreaker

	lock    *sync.Mutex
	chainID *big.Int
	abis    map[string]abi.ABI
}

// NewService dials the given RPC endpoint.
func NewService(opts Opts) (ports.ChainClient, error) {
	client, err := ethclient.Dial(opts.RPCURL)
	if err != nil {
		return nil, domain.ErrNetwork.WithCause(err)
	}
	return NewServiceWithBackend(client, opts), nil
}

// NewServiceWithBackend returns a ChainClient over an arbitrary backend.
func NewServiceWithBackend(backend RPCBackend, opts Opts) ports.ChainClient {
	opts.setDefaults()
	return &service{
		opts:    opts,
		backend: backend,
		limiter: ratelimit.New(opts.RequestsPerSecond),
		cb:      circuitbreaker.NewCircuitBreaker("ledger-rpc", isSuccessful),
		lock:    &sync.Mutex{},
		abis:    make(map[string]abi.ABI),
	}
}

func (s *service) GetBalance(
	ctx context.Context, address string,
) (decimal.Decimal, error) {
	if !wallet.IsValidAddress(address) {
		return decimal.Zero, domain.ErrInvalidRecipient
	}
	wei, err := s.balanceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return decimal.Zero, err
	}
	return fromWei(wei), nil
}

func (s *service) GetNetworkInfo(ctx context.Context) (*ports.NetworkInfo, error) {
	chainID, err := s.getChainID(ctx)
	if err != nil {
		return nil, err
	}
	return &ports.NetworkInfo{
		ChainID: new(big.Int).Set(chainID),
		Name:    s.opts.NetworkName,
		RPCURL:  s.opts.RPCURL,
	}, nil
}

func (s *service) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	res, err := s.execute(func() (interface{}, error) {
		return s.backend.SuggestGasPrice(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*big.Int), nil
}

func (s *service) SubmitTransfer(
	ctx context.Context, signer ports.Signer, to string, amount decimal.Decimal,
) (*ports.PendingTx, error) {
	if !wallet.IsValidAddress(to) {
		return nil, domain.ErrInvalidRecipient
	}
	value, err := toWei(amount)
	if err != nil {
		return nil, err
	}
	if value.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	from := common.HexToAddress(signer.Address())
	dest := common.HexToAddress(to)

	gasPrice, err := s.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := s.balanceAt(ctx, from)
	if err != nil {
		return nil, err
	}
	fee := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(TransferGasLimit))
	if new(big.Int).Add(value, fee).Cmp(balance) > 0 {
		return nil, domain.ErrInsufficientFunds
	}

	return s.signAndSend(ctx, signer, &dest, value, nil, gasPrice, TransferGasLimit)
}

func (s *service) CallContract(
	ctx context.Context, signer ports.Signer, call ports.ContractCall,
) (*ports.PendingTx, error) {
	if !wallet.IsValidAddress(call.Contract) {
		return nil, domain.ErrInvalidRecipient
	}
	data, err := s.pack(call)
	if err != nil {
		return nil, err
	}
	value, err := toWei(call.Value)
	if err != nil {
		return nil, err
	}

	from := common.HexToAddress(signer.Address())
	contract := common.HexToAddress(call.Contract)

	gasPrice, err := s.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.execute(func() (interface{}, error) {
		return s.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:     from,
			To:       &contract,
			GasPrice: gasPrice,
			Value:    value,
			Data:     data,
		})
	})
	if err != nil {
		return nil, err
	}
	gas := res.(uint64)

	return s.signAndSend(ctx, signer, &contract, value, data, gasPrice, gas)
}

func (s *service) ReadContract(
	ctx context.Context, call ports.ContractCall,
) ([]interface{}, error) {
	if !wallet.IsValidAddress(call.Contract) {
		return nil, domain.ErrInvalidRecipient
	}
	parsed, err := s.parseABI(call.ABI)
	if err != nil {
		return nil, err
	}
	data, err := parsed.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}
	contract := common.HexToAddress(call.Contract)

	res, err := s.execute(func() (interface{}, error) {
		return s.backend.CallContract(ctx, ethereum.CallMsg{
			To:   &contract,
			Data: data,
		}, nil)
	})
	if err != nil {
		return nil, err
	}

	out, err := parsed.Unpack(call.Method, res.([]byte))
	if err != nil {
		return nil, errUnexpectedReply.WithCause(err)
	}
	return out, nil
}

// AwaitConfirmation polls for the receipt until it shows up or the
// confirmation timeout expires. Transient errors while polling are retried.
func (s *service) AwaitConfirmation(
	ctx context.Context, tx *ports.PendingTx,
) (*ports.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	logger := log.WithField("tx_hash", tx.Hash)
	for {
		receipt, err := s.GetReceipt(ctx, tx.Hash)
		if err == nil {
			if !receipt.Success {
				return receipt, domain.ErrTransactionFailed.WithMessage(
					"transaction %s reverted", tx.Hash,
				)
			}
			return receipt, nil
		}
		switch domain.KindOf(err) {
		case domain.KindTransactionPending:
		case domain.KindNotFound:
			return nil, err
		default:
			logger.WithError(err).Debug("failed to fetch receipt, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, domain.ErrTransactionPending.WithMessage(
				"transaction %s not yet confirmed", tx.Hash,
			)
		case <-ticker.C:
		}
	}
}

func (s *service) GetReceipt(
	ctx context.Context, hash string,
) (*ports.Receipt, error) {
	if !isTxHash(hash) {
		return nil, domain.ErrNotFound.WithMessage("invalid transaction hash")
	}
	res, err := s.execute(func() (interface{}, error) {
		return s.backend.TransactionReceipt(ctx, common.HexToHash(hash))
	})
	if err != nil {
		return nil, err
	}
	receipt := res.(*types.Receipt)
	if receipt == nil {
		return nil, domain.ErrTransactionPending
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}
	return &ports.Receipt{
		Hash:        hash,
		BlockNumber: blockNumber,
		GasUsed:     receipt.GasUsed,
		Success:     receipt.Status == types.ReceiptStatusSuccessful,
	}, nil
}

func (s *service) Close() {
	s.backend.Close()
}

func (s *service) signAndSend(
	ctx context.Context, signer ports.Signer, to *common.Address,
	value *big.Int, data []byte, gasPrice *big.Int, gas uint64,
) (*ports.PendingTx, error) {
	chainID, err := s.getChainID(ctx)
	if err != nil {
		return nil, err
	}
	from := common.HexToAddress(signer.Address())
	res, err := s.execute(func() (interface{}, error) {
		return s.backend.PendingNonceAt(ctx, from)
	})
	if err != nil {
		return nil, err
	}
	nonce := res.(uint64)

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       to,
		Value:    value,
		Data:     data,
	})
	txSigner := types.NewEIP155Signer(chainID)
	sig, err := signer.SignHash(txSigner.Hash(tx).Bytes())
	if err != nil {
		return nil, err
	}
	signedTx, err := tx.WithSignature(txSigner, sig)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}

	if _, err := s.execute(func() (interface{}, error) {
		return nil, s.backend.SendTransaction(ctx, signedTx)
	}); err != nil {
		return nil, err
	}

	hash := signedTx.Hash().Hex()
	log.WithFields(log.Fields{
		"address": from.Hex(),
		"tx_hash": hash,
	}).Debug("transaction broadcasted")

	return &ports.PendingTx{
		Hash:        hash,
		From:        from.Hex(),
		To:          to.Hex(),
		Amount:      fromWei(value),
		SubmittedAt: time.Now(),
	}, nil
}

func (s *service) balanceAt(
	ctx context.Context, address common.Address,
) (*big.Int, error) {
	res, err := s.execute(func() (interface{}, error) {
		return s.backend.BalanceAt(ctx, address, nil)
	})
	if err != nil {
		return nil, err
	}
	return res.(*big.Int), nil
}

// getChainID fetches the chain id once and checks it against the expected
// one, if any.
func (s *service) getChainID(ctx context.Context) (*big.Int, error) {
	s.lock.Lock()
	cached := s.chainID
	s.lock.Unlock()
	if cached != nil {
		return cached, nil
	}

	res, err := s.execute(func() (interface{}, error) {
		return s.backend.ChainID(ctx)
	})
	if err != nil {
		return nil, err
	}
	chainID := res.(*big.Int)
	if s.opts.ExpectedChainID > 0 &&
		chainID.Cmp(new(big.Int).SetUint64(s.opts.ExpectedChainID)) != 0 {
		return nil, ErrChainIDMismatch.WithMessage(
			"expected chain id %d, node serves %s",
			s.opts.ExpectedChainID, chainID,
		)
	}

	s.lock.Lock()
	s.chainID = chainID
	s.lock.Unlock()
	return chainID, nil
}

func (s *service) pack(call ports.ContractCall) ([]byte, error) {
	parsed, err := s.parseABI(call.ABI)
	if err != nil {
		return nil, err
	}
	data, err := parsed.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}
	return data, nil
}

func (s *service) parseABI(definition string) (abi.ABI, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if parsed, ok := s.abis[definition]; ok {
		return parsed, nil
	}
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		return abi.ABI{}, domain.ErrInternal.WithCause(err)
	}
	s.abis[definition] = parsed
	return parsed, nil
}

// execute runs an RPC through the rate limiter and the circuit breaker.
func (s *service) execute(
	fn func() (interface{}, error),
) (interface{}, error) {
	s.limiter.Take()
	res, err := s.cb.Execute(fn)
	return res, translateError(err)
}

func toWei(amount decimal.Decimal) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	wei := amount.Shift(nativeDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, domain.ErrInvalidAmount.WithMessage(
			"amount has more than %d decimals", nativeDecimals,
		)
	}
	return wei.BigInt(), nil
}

func fromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -nativeDecimals)
}

func isTxHash(hash string) bool {
	if !strings.HasPrefix(hash, "0x") || len(hash) != 66 {
		return false
	}
	for _, c := range hash[2:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
