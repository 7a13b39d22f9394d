package ports

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Signer produces signatures for the account it holds without exposing the
// private key.
type Signer interface {
	Address() string
	// SignHash returns the 65 bytes [R || S || V] recoverable signature of
	// the given 32 bytes digest.
	SignHash(hash []byte) ([]byte, error)
}

type NetworkInfo struct {
	ChainID *big.Int
	Name    string
	RPCURL  string
}

// ContractCall describes a call to a method of a contract. Args must be of
// the go types expected by the ABI encoder.
type ContractCall struct {
	Contract string
	ABI      string
	Method   string
	Args     []interface{}
	Value    decimal.Decimal
}

type PendingTx struct {
	Hash        string
	From        string
	To          string
	Amount      decimal.Decimal
	SubmittedAt time.Time
}

type Receipt struct {
	Hash        string
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
}

// ChainClient is the gateway to the ledger network. Amounts are expressed
// in the display unit of the native coin.
type ChainClient interface {
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
	GetNetworkInfo(ctx context.Context) (*NetworkInfo, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SubmitTransfer(
		ctx context.Context, signer Signer, to string, amount decimal.Decimal,
	) (*PendingTx, error)
	CallContract(
		ctx context.Context, signer Signer, call ContractCall,
	) (*PendingTx, error)
	ReadContract(ctx context.Context, call ContractCall) ([]interface{}, error)
	// AwaitConfirmation fails with domain.ErrTransactionPending if the
	// transaction is not mined in time, and domain.ErrTransactionFailed if it
	// reverted.
	AwaitConfirmation(ctx context.Context, tx *PendingTx) (*Receipt, error)
	// GetReceipt fails with domain.ErrTransactionPending if not yet mined.
	GetReceipt(ctx context.Context, hash string) (*Receipt, error)
	Close()
}
