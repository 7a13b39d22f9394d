package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"unicode/utf8"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLen      = 32
	keyLen       = 32
	scryptR      = 8
	scryptP      = 1
	minScryptLog = 10
	maxScryptLog = 22
)

// ScryptLogN is the base-2 logarithm of the scrypt cost used by Encrypt.
// It is written as the first byte of every cypher, so changing it never
// prevents decrypting vaults created with a different value.
var ScryptLogN uint8 = 18

// EncryptOpts is the struct given to Encrypt method
type EncryptOpts struct {
	PlainText  string
	Passphrase string
}

func (o EncryptOpts) validate() error {
	if len(o.PlainText) <= 0 {
		return ErrNullPlainText
	}
	if len(o.Passphrase) <= 0 {
		return ErrNullPassphrase
	}
	if ScryptLogN < minScryptLog || ScryptLogN > maxScryptLog {
		return ErrInvalidScryptCost
	}
	return nil
}

// Encrypt encrypts (with AES-256-GCM) a plaintext with a key stretched from
// the provided passphrase. The returned cypher is the base64 encoding of
// logN | nonce | sealed text | salt.
func Encrypt(opts EncryptOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	logN := ScryptLogN
	key, salt, err := DeriveKey([]byte(opts.Passphrase), nil, logN)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return "", err
	}

	cypher := append([]byte{logN}, nonce...)
	cypher = gcm.Seal(cypher, nonce, []byte(opts.PlainText), nil)
	cypher = append(cypher, salt...)

	return base64.StdEncoding.EncodeToString(cypher), nil
}

// DecryptOpts is the struct given to Decrypt method
type DecryptOpts struct {
	CypherText string
	Passphrase string
}

func (o DecryptOpts) validate() error {
	if len(o.CypherText) <= 0 {
		return ErrNullCypherText
	}
	if len(o.Passphrase) <= 0 {
		return ErrNullPassphrase
	}
	return nil
}

// Decrypt reverts Encrypt. Whatever goes wrong once the inputs are known to
// be non-empty is reported as ErrDecryptionFailed.
func Decrypt(opts DecryptOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(opts.CypherText)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(data) < 1+saltLen {
		return "", ErrDecryptionFailed
	}

	logN := data[0]
	if logN < minScryptLog || logN > maxScryptLog {
		return "", ErrDecryptionFailed
	}
	data = data[1:]
	salt, data := data[len(data)-saltLen:], data[:len(data)-saltLen]

	key, _, err := DeriveKey([]byte(opts.Passphrase), salt, logN)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	gcm, err := newGCM(key)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(data) < gcm.NonceSize()+gcm.Overhead() {
		return "", ErrDecryptionFailed
	}

	nonce, text := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, text, nil)
	if err != nil || len(plaintext) == 0 || !utf8.Valid(plaintext) {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// DeriveKey derives a 32 byte array key from a custom passhprase. A random
// salt is generated if none is given.
func DeriveKey(passphrase, salt []byte, logN uint8) ([]byte, []byte, error) {
	if salt == nil {
		salt = make([]byte, saltLen)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, err
		}
	}
	key, err := scrypt.Key(passphrase, salt, 1<<logN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(blockCipher)
}
