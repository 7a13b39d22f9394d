package ports

import "context"

// ProfileStore is the remote per user record holding the encrypted wallet
// and the nominee mirror. Implementations must return domain.ErrNotFound
// when the user has no vault and domain.ErrPersistence for any backend
// failure.
type ProfileStore interface {
	GetEncryptedWallet(ctx context.Context, userID string) (string, error)
	SetEncryptedWallet(ctx context.Context, userID, ciphertext string) error
	// GetNomineeData returns nil data if no nominee is mirrored.
	GetNomineeData(ctx context.Context, userID string) ([]byte, error)
	// SetNomineeData with nil data clears the mirror.
	SetNomineeData(ctx context.Context, userID string, data []byte) error
	Close()
}

// LocalStore is a key value store private to the installation.
type LocalStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close()
}

// IdentityVerifier resolves an identity provider token to a user id.
type IdentityVerifier interface {
	Verify(token string) (string, error)
}
