package domain

import (
	"errors"
	"unicode/utf8"

	"github.com/sentry-network/sentry-wallet/pkg/wallet"
)

// MinPasswordLength is the minimum number of characters a vault password
// must have.
const MinPasswordLength = 8

// Vault is the password encrypted private key stored for a user identity.
// Only the ciphertext is ever persisted.
type Vault struct {
	UserID     string
	Ciphertext string
}

// ValidatePassword enforces the password policy.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooWeak
	}
	return nil
}

// NewVault encrypts the given secret with password.
func NewVault(userID, secret, password string) (*Vault, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	ciphertext, err := Encrypt(secret, password)
	if err != nil {
		return nil, err
	}
	return &Vault{UserID: userID, Ciphertext: ciphertext}, nil
}

// Secret decrypts the vault. Wrong password and corrupted ciphertext are
// indistinguishable to the caller.
func (v *Vault) Secret(password string) (string, error) {
	if v == nil || v.Ciphertext == "" {
		return "", ErrDecryptionFailed
	}
	return Decrypt(v.Ciphertext, password)
}

// Encrypt wraps wallet.Encrypt translating its errors into domain ones.
func Encrypt(plaintext, password string) (string, error) {
	ciphertext, err := wallet.Encrypt(wallet.EncryptOpts{
		PlainText:  plaintext,
		Passphrase: password,
	})
	if err != nil {
		if errors.Is(err, wallet.ErrNullPassphrase) {
			return "", ErrPasswordTooWeak
		}
		return "", ErrInternal.WithCause(err)
	}
	return ciphertext, nil
}

// Decrypt wraps wallet.Decrypt. Every failure is reported as
// ErrDecryptionFailed without cause so that nothing about the ciphertext
// leaks through the error.
func Decrypt(ciphertext, password string) (string, error) {
	plaintext, err := wallet.Decrypt(wallet.DecryptOpts{
		CypherText: ciphertext,
		Passphrase: password,
	})
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return plaintext, nil
}
