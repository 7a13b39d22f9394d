package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a secp256k1 key pair together with the EVM address it controls
// and, when known, the mnemonic and derivation path it was obtained from.
// The private key is never exported as a field so that it can not end up
// in logs or marshaled payloads by mistake.
type Account struct {
	Address        string
	PublicKey      string
	Mnemonic       []string
	DerivationPath string

	privateKey *ecdsa.PrivateKey
}

// NewAccount generates a fresh mnemonic from a secure random source and
// derives the account at DefaultDerivationPath.
func NewAccount() (*Account, error) {
	mnemonic, err := NewMnemonic(NewMnemonicOpts{})
	if err != nil {
		return nil, err
	}
	return NewAccountFromMnemonic(NewAccountFromMnemonicOpts{
		Mnemonic: mnemonic,
	})
}

// NewAccountFromMnemonicOpts is the struct given to NewAccountFromMnemonic
type NewAccountFromMnemonicOpts struct {
	Mnemonic       []string
	DerivationPath string
}

func (o NewAccountFromMnemonicOpts) validate() error {
	if len(o.Mnemonic) <= 0 || !IsMnemonicValid(o.Mnemonic) {
		return ErrInvalidMnemonic
	}
	if o.DerivationPath != "" {
		if _, err := ParseDerivationPath(o.DerivationPath); err != nil {
			return err
		}
	}
	return nil
}

// NewAccountFromMnemonic derives the account at the given path, or
// DefaultDerivationPath, from a BIP39 mnemonic.
func NewAccountFromMnemonic(opts NewAccountFromMnemonicOpts) (*Account, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	path := DefaultDerivationPath
	if opts.DerivationPath != "" {
		path, _ = ParseDerivationPath(opts.DerivationPath)
	}

	hdNode, err := hdkeychain.NewMaster(
		seedFromMnemonic(opts.Mnemonic), &chaincfg.MainNetParams,
	)
	if err != nil {
		return nil, err
	}
	hdNode, err = path.DeriveFrom(hdNode)
	if err != nil {
		return nil, err
	}
	ecKey, err := hdNode.ECPrivKey()
	if err != nil {
		return nil, err
	}
	key, err := crypto.ToECDSA(ecKey.Serialize())
	if err != nil {
		return nil, err
	}

	account := newAccount(key)
	account.Mnemonic = append([]string{}, opts.Mnemonic...)
	account.DerivationPath = path.String()
	return account, nil
}

// NewAccountFromPrivateKey parses a hex encoded private key, with or without
// the 0x prefix.
func NewAccountFromPrivateKey(privateKey string) (*Account, error) {
	privateKey = strings.TrimPrefix(strings.TrimSpace(privateKey), "0x")
	if len(privateKey) != 64 {
		return nil, ErrInvalidSecretFormat
	}
	if _, err := hex.DecodeString(privateKey); err != nil {
		return nil, ErrInvalidSecretFormat
	}
	key, err := crypto.HexToECDSA(privateKey)
	if err != nil {
		return nil, ErrInvalidSecretFormat
	}
	return newAccount(key), nil
}

// ImportAccount accepts either a private key or a mnemonic phrase.
func ImportAccount(secret string) (*Account, error) {
	words := strings.Fields(secret)
	if len(words) > 1 {
		account, err := NewAccountFromMnemonic(NewAccountFromMnemonicOpts{
			Mnemonic: words,
		})
		if err != nil {
			return nil, ErrInvalidSecretFormat
		}
		return account, nil
	}
	return NewAccountFromPrivateKey(secret)
}

// IsValidAddress returns whether the given string is a 20 bytes hex address
// prefixed by 0x. Mixed case addresses must carry a valid EIP-55 checksum.
func IsValidAddress(addr string) bool {
	if !strings.HasPrefix(addr, "0x") || !common.IsHexAddress(addr) {
		return false
	}
	body := addr[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(addr).Hex() == addr
}

// PrivateKey returns the signing key. It is meant to be used only by the
// component that owns the account for its whole lifetime.
func (a *Account) PrivateKey() *ecdsa.PrivateKey {
	return a.privateKey
}

// PrivateKeyHex returns the 0x prefixed hex encoding of the private key.
func (a *Account) PrivateKeyHex() string {
	if a.privateKey == nil {
		return ""
	}
	return hexutil.Encode(crypto.FromECDSA(a.privateKey))
}

// Wipe zeroes the private key and forgets the mnemonic.
func (a *Account) Wipe() {
	if a.privateKey != nil && a.privateKey.D != nil {
		a.privateKey.D.SetInt64(0)
	}
	a.privateKey = nil
	for i := range a.Mnemonic {
		a.Mnemonic[i] = ""
	}
	a.Mnemonic = nil
}

func newAccount(key *ecdsa.PrivateKey) *Account {
	return &Account{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PublicKey:  hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey)),
		privateKey: key,
	}
}
