package wallet

import "errors"

var (
	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrDecryptionFailed is returned by Decrypt for any cypher that can not be
	// opened with the given passphrase. A wrong passphrase and a corrupted
	// cypher are not told apart.
	ErrDecryptionFailed = errors.New("unable to decrypt: wrong passphrase or corrupted data")
	// ErrInvalidScryptCost ...
	ErrInvalidScryptCost = errors.New("scrypt cost parameter out of range")

	// ErrInvalidSecretFormat is returned when a secret is neither a valid hex
	// encoded private key nor a valid BIP39 mnemonic.
	ErrInvalidSecretFormat = errors.New("secret is not a valid private key or mnemonic")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)

	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"can optionally start with 'm/' for absolute paths",
	)
)
