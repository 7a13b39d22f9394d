package domain

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the closed set of failures surfaced by the wallet.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidSecretFormat
	KindPasswordTooWeak
	KindDecryptionFailed
	KindNotFound
	KindPersistence
	KindInvalidRecipient
	KindInvalidAmount
	KindInsufficientFunds
	KindNetwork
	KindTransactionFailed
	KindTransactionPending
	KindAlreadyInProgress
	KindMustBeUnlocked
	KindMustBeLocked
	KindInvalidNominee
	KindNomineeNotFound
)

var kindNames = map[ErrorKind]string{
	KindInternal:            "Internal",
	KindInvalidSecretFormat: "InvalidSecretFormat",
	KindPasswordTooWeak:     "PasswordTooWeak",
	KindDecryptionFailed:    "DecryptionFailed",
	KindNotFound:            "NotFound",
	KindPersistence:         "PersistenceError",
	KindInvalidRecipient:    "InvalidRecipient",
	KindInvalidAmount:       "InvalidAmount",
	KindInsufficientFunds:   "InsufficientFunds",
	KindNetwork:             "NetworkError",
	KindTransactionFailed:   "TransactionFailed",
	KindTransactionPending:  "TransactionPending",
	KindAlreadyInProgress:   "AlreadyInProgress",
	KindMustBeUnlocked:      "MustBeUnlocked",
	KindMustBeLocked:        "MustBeLocked",
	KindInvalidNominee:      "InvalidNominee",
	KindNomineeNotFound:     "NomineeNotFound",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindInternal]
}

// Error is the only error type returned across the application boundary.
// Message is always safe to show to a user. Err, when set, is the underlying
// cause and must never carry secret material.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes any two errors of the same kind match, so that the sentinels
// below can be used with errors.Is whatever the message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

// WithMessage returns a copy of the error with a more specific message.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

var (
	// ErrInternal ...
	ErrInternal = &Error{Kind: KindInternal, Message: "internal error"}
	// ErrInvalidSecretFormat is returned when an imported secret is neither a
	// private key nor a mnemonic.
	ErrInvalidSecretFormat = &Error{
		Kind: KindInvalidSecretFormat, Message: "invalid private key or mnemonic",
	}
	// ErrPasswordTooWeak ...
	ErrPasswordTooWeak = &Error{
		Kind:    KindPasswordTooWeak,
		Message: fmt.Sprintf("password must be at least %d characters long", MinPasswordLength),
	}
	// ErrDecryptionFailed covers both a wrong password and a corrupted vault.
	ErrDecryptionFailed = &Error{Kind: KindDecryptionFailed, Message: "incorrect password"}
	// ErrNotFound is returned when no vault exists for an identity.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "no wallet exists for this identity"}
	// ErrPersistence ...
	ErrPersistence = &Error{Kind: KindPersistence, Message: "could not access wallet storage"}
	// ErrInvalidRecipient ...
	ErrInvalidRecipient = &Error{Kind: KindInvalidRecipient, Message: "invalid recipient address"}
	// ErrInvalidAmount ...
	ErrInvalidAmount = &Error{Kind: KindInvalidAmount, Message: "amount must be greater than zero"}
	// ErrInsufficientFunds ...
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds"}
	// ErrNetwork ...
	ErrNetwork = &Error{Kind: KindNetwork, Message: "ledger network is unreachable"}
	// ErrTransactionFailed is returned for transactions reverted on-chain.
	ErrTransactionFailed = &Error{Kind: KindTransactionFailed, Message: "transaction failed"}
	// ErrTransactionPending is returned when a transaction is not confirmed
	// within the wait bound. It is not a failure, the transaction can still be
	// looked up by hash.
	ErrTransactionPending = &Error{
		Kind: KindTransactionPending, Message: "transaction not yet confirmed",
	}
	// ErrAlreadyInProgress ...
	ErrAlreadyInProgress = &Error{
		Kind: KindAlreadyInProgress, Message: "another wallet operation is in progress",
	}
	// ErrMustBeUnlocked ...
	ErrMustBeUnlocked = &Error{
		Kind: KindMustBeUnlocked, Message: "wallet must be unlocked to perform this operation",
	}
	// ErrMustBeLocked ...
	ErrMustBeLocked = &Error{
		Kind: KindMustBeLocked, Message: "wallet must be locked to perform this operation",
	}
	// ErrInvalidNominee ...
	ErrInvalidNominee = &Error{Kind: KindInvalidNominee, Message: "invalid nominee"}
	// ErrNomineeNotFound ...
	ErrNomineeNotFound = &Error{Kind: KindNomineeNotFound, Message: "no nominee set"}
)

// KindOf returns the kind of the first *Error found in the chain of err, or
// KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
