package evm_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sentry-network/sentry-wallet/internal/core/application"
	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
	"github.com/sentry-network/sentry-wallet/internal/infrastructure/chain/evm"
)

const (
	privateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	sender     = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	recipient  = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	contract   = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	txHash     = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
)

var (
	chainID  = big.NewInt(1043)
	gasPrice = big.NewInt(1000000000)
	oneCoin  = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

func newTestService(backend *mockBackend) ports.ChainClient {
	return evm.NewServiceWithBackend(backend, evm.Opts{
		RPCURL:              "http://localhost:8545",
		NetworkName:         "BlockDAG Testnet",
		RequestsPerSecond:   1000,
		ConfirmationTimeout: 50 * time.Millisecond,
		PollInterval:        time.Millisecond,
	})
}

func TestGetBalance(t *testing.T) {
	backend := &mockBackend{}
	backend.On("BalanceAt", mock.Anything, common.HexToAddress(sender), mock.Anything).
		Return(new(big.Int).Mul(big.NewInt(15), new(big.Int).Div(oneCoin, big.NewInt(10))), nil)

	svc := newTestService(backend)
	balance, err := svc.GetBalance(context.Background(), sender)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("1.5")))

	_, err = svc.GetBalance(context.Background(), "0x1234")
	require.ErrorIs(t, err, domain.ErrInvalidRecipient)
}

func TestGetBalanceNetworkFailure(t *testing.T) {
	backend := &mockBackend{}
	backend.On("BalanceAt", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"))

	svc := newTestService(backend)
	_, err := svc.GetBalance(context.Background(), sender)
	require.ErrorIs(t, err, domain.ErrNetwork)
}

func TestGetNetworkInfo(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ChainID", mock.Anything).Return(chainID, nil).Once()

	svc := newTestService(backend)
	info, err := svc.GetNetworkInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1043), info.ChainID.Int64())
	require.Equal(t, "BlockDAG Testnet", info.Name)

	// The chain id is cached.
	_, err = svc.GetNetworkInfo(context.Background())
	require.NoError(t, err)
	backend.AssertNumberOfCalls(t, "ChainID", 1)

	t.Run("unexpected chain", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("ChainID", mock.Anything).Return(big.NewInt(1), nil)

		svc := evm.NewServiceWithBackend(backend, evm.Opts{ExpectedChainID: 1043})
		_, err := svc.GetNetworkInfo(context.Background())
		require.ErrorIs(t, err, domain.ErrNetwork)
	})
}

func TestSubmitTransfer(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ChainID", mock.Anything).Return(chainID, nil)
	backend.On("SuggestGasPrice", mock.Anything).Return(gasPrice, nil)
	backend.On("BalanceAt", mock.Anything, common.HexToAddress(sender), mock.Anything).
		Return(new(big.Int).Mul(big.NewInt(10), oneCoin), nil)
	backend.On("PendingNonceAt", mock.Anything, common.HexToAddress(sender)).
		Return(uint64(3), nil)
	backend.On("SendTransaction", mock.Anything, mock.MatchedBy(func(tx *types.Transaction) bool {
		from, err := types.Sender(types.NewEIP155Signer(chainID), tx)
		if err != nil {
			return false
		}
		return from == common.HexToAddress(sender) &&
			*tx.To() == common.HexToAddress(recipient) &&
			tx.Gas() == evm.TransferGasLimit &&
			tx.Nonce() == 3 &&
			tx.GasPrice().Cmp(gasPrice) == 0 &&
			tx.Value().Cmp(new(big.Int).Mul(big.NewInt(2), oneCoin)) == 0
	})).Return(nil)

	svc := newTestService(backend)
	pending, err := svc.SubmitTransfer(
		context.Background(), newKeySigner(privateKey), recipient, decimal.NewFromInt(2),
	)
	require.NoError(t, err)
	require.Len(t, pending.Hash, 66)
	require.Equal(t, sender, pending.From)
	require.Equal(t, recipient, pending.To)
	require.True(t, pending.Amount.Equal(decimal.NewFromInt(2)))
	backend.AssertExpectations(t)
}

func TestFailingSubmitTransfer(t *testing.T) {
	signer := newKeySigner(privateKey)

	t.Run("invalid recipient", func(t *testing.T) {
		backend := &mockBackend{}
		svc := newTestService(backend)

		_, err := svc.SubmitTransfer(context.Background(), signer, "0xabc", decimal.NewFromInt(1))
		require.ErrorIs(t, err, domain.ErrInvalidRecipient)
		backend.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
	})

	t.Run("invalid amount", func(t *testing.T) {
		backend := &mockBackend{}
		svc := newTestService(backend)

		_, err := svc.SubmitTransfer(context.Background(), signer, recipient, decimal.Zero)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = svc.SubmitTransfer(
			context.Background(), signer, recipient, decimal.RequireFromString("0.0000000000000000001"),
		)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("balance does not cover fees", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("SuggestGasPrice", mock.Anything).Return(gasPrice, nil)
		backend.On("BalanceAt", mock.Anything, mock.Anything, mock.Anything).
			Return(new(big.Int).Set(oneCoin), nil)
		svc := newTestService(backend)

		_, err := svc.SubmitTransfer(context.Background(), signer, recipient, decimal.NewFromInt(1))
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		backend.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
	})

	t.Run("rejected by node", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("ChainID", mock.Anything).Return(chainID, nil)
		backend.On("SuggestGasPrice", mock.Anything).Return(gasPrice, nil)
		backend.On("BalanceAt", mock.Anything, mock.Anything, mock.Anything).
			Return(new(big.Int).Mul(big.NewInt(10), oneCoin), nil)
		backend.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(0), nil)
		backend.On("SendTransaction", mock.Anything, mock.Anything).
			Return(errors.New("insufficient funds for gas * price + value"))
		svc := newTestService(backend)

		_, err := svc.SubmitTransfer(context.Background(), signer, recipient, decimal.NewFromInt(1))
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})
}

func TestAwaitConfirmation(t *testing.T) {
	hash := common.HexToHash(txHash)
	pending := &ports.PendingTx{Hash: txHash}

	t.Run("confirmed", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("TransactionReceipt", mock.Anything, hash).
			Return(nil, ethereum.NotFound).Twice()
		backend.On("TransactionReceipt", mock.Anything, hash).
			Return(&types.Receipt{
				Status:      types.ReceiptStatusSuccessful,
				BlockNumber: big.NewInt(12),
				GasUsed:     21000,
			}, nil)
		svc := newTestService(backend)

		receipt, err := svc.AwaitConfirmation(context.Background(), pending)
		require.NoError(t, err)
		require.True(t, receipt.Success)
		require.Equal(t, uint64(12), receipt.BlockNumber)
		require.Equal(t, uint64(21000), receipt.GasUsed)
	})

	t.Run("reverted", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("TransactionReceipt", mock.Anything, hash).
			Return(&types.Receipt{
				Status:      types.ReceiptStatusFailed,
				BlockNumber: big.NewInt(12),
			}, nil)
		svc := newTestService(backend)

		receipt, err := svc.AwaitConfirmation(context.Background(), pending)
		require.ErrorIs(t, err, domain.ErrTransactionFailed)
		require.False(t, receipt.Success)
	})

	t.Run("timeout", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("TransactionReceipt", mock.Anything, hash).
			Return(nil, ethereum.NotFound)
		svc := newTestService(backend)

		_, err := svc.AwaitConfirmation(context.Background(), pending)
		require.ErrorIs(t, err, domain.ErrTransactionPending)
		require.NotErrorIs(t, err, domain.ErrTransactionFailed)
	})

	t.Run("receipt by hash", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("TransactionReceipt", mock.Anything, hash).
			Return(nil, ethereum.NotFound)
		svc := newTestService(backend)

		_, err := svc.GetReceipt(context.Background(), txHash)
		require.ErrorIs(t, err, domain.ErrTransactionPending)

		_, err = svc.GetReceipt(context.Background(), "0x1234")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestContractCalls(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(application.InheritanceABI))
	require.NoError(t, err)

	t.Run("read", func(t *testing.T) {
		reply, err := parsed.Methods["nominees"].Outputs.Pack(big.NewInt(40))
		require.NoError(t, err)

		backend := &mockBackend{}
		backend.On("CallContract", mock.Anything, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
			return *msg.To == common.HexToAddress(contract)
		}), mock.Anything).Return(reply, nil)
		svc := newTestService(backend)

		out, err := svc.ReadContract(context.Background(), ports.ContractCall{
			Contract: contract,
			ABI:      application.InheritanceABI,
			Method:   "nominees",
			Args:     []interface{}{common.HexToAddress(sender)},
		})
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, int64(40), out[0].(*big.Int).Int64())
	})

	t.Run("write", func(t *testing.T) {
		method := parsed.Methods["setNominee"]

		backend := &mockBackend{}
		backend.On("ChainID", mock.Anything).Return(chainID, nil)
		backend.On("SuggestGasPrice", mock.Anything).Return(gasPrice, nil)
		backend.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(48000), nil)
		backend.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(7), nil)
		backend.On("SendTransaction", mock.Anything, mock.MatchedBy(func(tx *types.Transaction) bool {
			return tx.Gas() == 48000 &&
				*tx.To() == common.HexToAddress(contract) &&
				strings.HasPrefix(common.Bytes2Hex(tx.Data()), common.Bytes2Hex(method.ID))
		})).Return(nil)
		svc := newTestService(backend)

		pending, err := svc.CallContract(context.Background(), newKeySigner(privateKey), ports.ContractCall{
			Contract: contract,
			ABI:      application.InheritanceABI,
			Method:   "setNominee",
			Args:     []interface{}{common.HexToAddress(recipient), big.NewInt(40)},
		})
		require.NoError(t, err)
		require.Equal(t, contract, pending.To)
		backend.AssertExpectations(t)
	})

	t.Run("reverted estimate", func(t *testing.T) {
		backend := &mockBackend{}
		backend.On("SuggestGasPrice", mock.Anything).Return(gasPrice, nil)
		backend.On("EstimateGas", mock.Anything, mock.Anything).
			Return(uint64(0), errors.New("execution reverted: no nominee"))
		svc := newTestService(backend)

		_, err := svc.CallContract(context.Background(), newKeySigner(privateKey), ports.ContractCall{
			Contract: contract,
			ABI:      application.InheritanceABI,
			Method:   "claimFunds",
		})
		require.ErrorIs(t, err, domain.ErrTransactionFailed)
		backend.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
	})
}
