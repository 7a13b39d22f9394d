package httpinterface

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
)

const maxBodySize = 1 << 16

type passwordRequest struct {
	Password string `json:"password"`
}

type importRequest struct {
	Password string `json:"password"`
	Secret   string `json:"secret"`
	Name     string `json:"name,omitempty"`
}

type changePasswordRequest struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

type sendRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type fundRequest struct {
	Amount string `json:"amount"`
}

type nomineeRequest struct {
	Address string `json:"address"`
	Email   string `json:"email"`
	Share   int    `json:"share"`
}

type localInitRequest struct {
	Password string `json:"password"`
	Hint     string `json:"hint,omitempty"`
}

type localCreateRequest struct {
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type localUnlockRequest struct {
	Password string `json:"password"`
	ID       string `json:"id"`
}

type createReply struct {
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic"`
}

type addressReply struct {
	Address string `json:"address"`
}

type existsReply struct {
	Exists bool `json:"exists"`
}

type statusReply struct {
	Status       string  `json:"status"`
	Address      string  `json:"address,omitempty"`
	Balance      *string `json:"balance"`
	BalanceError string  `json:"balanceError,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type networkReply struct {
	ChainID string `json:"chainId"`
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
}

type receiptReply struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
	Success     bool   `json:"success"`
}

type balanceReply struct {
	Balance string `json:"balance"`
}

type localCreateReply struct {
	domain.WalletSummary
	Mnemonic string `json:"mnemonic"`
}

type hintReply struct {
	Hint string `json:"hint"`
}

func newStatusReply(state domain.SessionState) statusReply {
	reply := statusReply{
		Status:       state.Status.String(),
		Address:      state.Address,
		BalanceError: state.BalanceError,
		Error:        state.Error,
	}
	if state.Balance != nil {
		balance := state.Balance.String()
		reply.Balance = &balance
	}
	return reply
}

func newNetworkReply(info *ports.NetworkInfo) networkReply {
	chainID := ""
	if info.ChainID != nil {
		chainID = info.ChainID.String()
	}
	return networkReply{chainID, info.Name, info.RPCURL}
}

func newReceiptReply(r *ports.Receipt) receiptReply {
	return receiptReply{r.Hash, r.BlockNumber, r.GasUsed, r.Success}
}

// decodeBody parses the json body of the request into v. Unknown fields are
// rejected.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %s", err)
	}
	return nil
}

func parseAmount(amount string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return value, nil
}
