package application_test

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sentry-network/sentry-wallet/internal/core/application"
	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
	profilestore "github.com/sentry-network/sentry-wallet/internal/infrastructure/profile/inmemory"
	localstore "github.com/sentry-network/sentry-wallet/internal/infrastructure/storage/inmemory"
	"github.com/sentry-network/sentry-wallet/pkg/wallet"
)

const (
	testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testNominee  = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	testPassword = "correcthorsebattery"
	testUser     = "u1"
)

func TestMain(m *testing.M) {
	wallet.ScryptLogN = 10
	os.Exit(m.Run())
}

// fakeChain is an in memory ledger. Contract calls take effect only once
// confirmed.
type fakeChain struct {
	lock sync.Mutex

	balances map[string]decimal.Decimal
	shares   map[string]*big.Int
	effects  map[string]func()
	nonce    int

	submits  int
	calls    []string
	reads    int
	receipts int

	balanceErr error
	submitErr  error
	callErr    error
	confirmErr error
	readErr    error
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		balances: make(map[string]decimal.Decimal),
		shares:   make(map[string]*big.Int),
		effects:  make(map[string]func()),
	}
}

func (c *fakeChain) setBalance(address string, amount decimal.Decimal) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.balances[strings.ToLower(address)] = amount
}

func (c *fakeChain) balance(address string) decimal.Decimal {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.balances[strings.ToLower(address)]
}

func (c *fakeChain) share(owner string) *big.Int {
	c.lock.Lock()
	defer c.lock.Unlock()
	if s, ok := c.shares[strings.ToLower(owner)]; ok {
		return s
	}
	return big.NewInt(0)
}

func (c *fakeChain) numOfSubmits() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.submits
}

func (c *fakeChain) numOfCalls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.calls)
}

func (c *fakeChain) GetBalance(
	_ context.Context, address string,
) (decimal.Decimal, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.balanceErr != nil {
		return decimal.Zero, c.balanceErr
	}
	return c.balances[strings.ToLower(address)], nil
}

func (c *fakeChain) GetNetworkInfo(context.Context) (*ports.NetworkInfo, error) {
	return &ports.NetworkInfo{
		ChainID: big.NewInt(1043), Name: "BlockDAG Testnet", RPCURL: "http://fake",
	}, nil
}

func (c *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1000000000), nil
}

func (c *fakeChain) SubmitTransfer(
	_ context.Context, signer ports.Signer, to string, amount decimal.Decimal,
) (*ports.PendingTx, error) {
	if _, err := signer.SignHash(make([]byte, 32)); err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.submits++
	if c.submitErr != nil {
		return nil, c.submitErr
	}
	from := strings.ToLower(signer.Address())
	dest := strings.ToLower(to)
	tx := c.newPendingTx(signer.Address(), to, amount)
	c.effects[tx.Hash] = func() {
		c.balances[from] = c.balances[from].Sub(amount)
		c.balances[dest] = c.balances[dest].Add(amount)
	}
	return tx, nil
}

func (c *fakeChain) CallContract(
	_ context.Context, signer ports.Signer, call ports.ContractCall,
) (*ports.PendingTx, error) {
	if _, err := signer.SignHash(make([]byte, 32)); err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.calls = append(c.calls, call.Method)
	if c.callErr != nil {
		return nil, c.callErr
	}
	owner := strings.ToLower(signer.Address())
	tx := c.newPendingTx(signer.Address(), call.Contract, decimal.Zero)
	switch call.Method {
	case "setNominee":
		share := call.Args[1].(*big.Int)
		c.effects[tx.Hash] = func() { c.shares[owner] = share }
	case "removeNominee":
		c.effects[tx.Hash] = func() { delete(c.shares, owner) }
	}
	return tx, nil
}

func (c *fakeChain) ReadContract(
	_ context.Context, call ports.ContractCall,
) ([]interface{}, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.reads++
	if c.readErr != nil {
		return nil, c.readErr
	}
	owner := strings.ToLower(call.Args[0].(common.Address).Hex())
	share, ok := c.shares[owner]
	if !ok {
		share = big.NewInt(0)
	}
	return []interface{}{share}, nil
}

func (c *fakeChain) AwaitConfirmation(
	_ context.Context, tx *ports.PendingTx,
) (*ports.Receipt, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.confirmErr != nil {
		return nil, c.confirmErr
	}
	if effect, ok := c.effects[tx.Hash]; ok {
		effect()
		delete(c.effects, tx.Hash)
	}
	return &ports.Receipt{
		Hash: tx.Hash, BlockNumber: 1, GasUsed: 21000, Success: true,
	}, nil
}

func (c *fakeChain) GetReceipt(
	_ context.Context, hash string,
) (*ports.Receipt, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.receipts++
	if c.confirmErr != nil {
		return nil, c.confirmErr
	}
	return &ports.Receipt{
		Hash: hash, BlockNumber: 1, GasUsed: 21000, Success: true,
	}, nil
}

func (c *fakeChain) Close() {}

// newPendingTx must be called with the lock held.
func (c *fakeChain) newPendingTx(
	from, to string, amount decimal.Decimal,
) *ports.PendingTx {
	c.nonce++
	return &ports.PendingTx{
		Hash:        fmt.Sprintf("0x%064x", c.nonce),
		From:        from,
		To:          to,
		Amount:      amount,
		SubmittedAt: time.Now(),
	}
}

// mockProfileStore is used where the behavior of the profile store must be
// controlled call by call.
type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) GetEncryptedWallet(
	ctx context.Context, userID string,
) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockProfileStore) SetEncryptedWallet(
	ctx context.Context, userID, ciphertext string,
) error {
	args := m.Called(ctx, userID, ciphertext)
	return args.Error(0)
}

func (m *mockProfileStore) GetNomineeData(
	ctx context.Context, userID string,
) ([]byte, error) {
	args := m.Called(ctx, userID)
	var res []byte
	if a := args.Get(0); a != nil {
		res = a.([]byte)
	}
	return res, args.Error(1)
}

func (m *mockProfileStore) SetNomineeData(
	ctx context.Context, userID string, data []byte,
) error {
	args := m.Called(ctx, userID, data)
	return args.Error(0)
}

func (m *mockProfileStore) Close() {}

type testEnv struct {
	chain      *fakeChain
	profiles   ports.ProfileStore
	vaultStore application.VaultStore
	session    application.WalletSession
}

func newTestEnv() *testEnv {
	chain := newFakeChain()
	profiles := profilestore.NewProfileStore()
	vaultStore := application.NewVaultStore(profiles, localstore.NewLocalStore())
	session := application.NewWalletSession(application.WalletSessionOpts{
		UserID:      testUser,
		VaultStore:  vaultStore,
		ChainClient: chain,
		HistorySize: domain.DefaultHistorySize,
	})
	return &testEnv{chain, profiles, vaultStore, session}
}

// newUnlockedEnv returns an env with a freshly created wallet holding the
// given balance.
func newUnlockedEnv(t *testing.T, balance decimal.Decimal) (*testEnv, string) {
	env := newTestEnv()
	created, err := env.session.Create(context.Background(), testPassword, testUser)
	if err != nil {
		t.Fatal(err)
	}
	env.chain.setBalance(created.Address, balance)
	if _, err := env.session.RefreshBalance(context.Background()); err != nil {
		t.Fatal(err)
	}
	return env, created.Address
}
