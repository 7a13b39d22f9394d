package postgresdb

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
)

const (
	walletColumn  = "encrypted_wallet"
	nomineeColumn = "nominee_data"
)

// profile mirrors the profiles table of the hosted deployment, keyed by the
// identity provider user id.
type profile struct {
	ID              string  `gorm:"primaryKey"`
	EncryptedWallet *string `gorm:"column:encrypted_wallet"`
	NomineeData     *string `gorm:"column:nominee_data"`
}

func (profile) TableName() string {
	return "profiles"
}

type profileStore struct {
	db *gorm.DB
}

// NewProfileStore connects to the given postgres data source and migrates
// the profiles table.
func NewProfileStore(dsn string) (ports.ProfileStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing postgres connection string")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&profile{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Debug("profiles table migrated")

	return &profileStore{db}, nil
}

func (s *profileStore) GetEncryptedWallet(
	ctx context.Context, userID string,
) (string, error) {
	p, err := s.get(ctx, userID, walletColumn)
	if err != nil {
		return "", err
	}
	if p == nil || p.EncryptedWallet == nil || *p.EncryptedWallet == "" {
		return "", domain.ErrNotFound
	}
	return *p.EncryptedWallet, nil
}

func (s *profileStore) SetEncryptedWallet(
	ctx context.Context, userID, ciphertext string,
) error {
	return s.upsert(ctx, walletColumn, &profile{
		ID:              userID,
		EncryptedWallet: &ciphertext,
	})
}

func (s *profileStore) GetNomineeData(
	ctx context.Context, userID string,
) ([]byte, error) {
	p, err := s.get(ctx, userID, nomineeColumn)
	if err != nil {
		return nil, err
	}
	if p == nil || p.NomineeData == nil || *p.NomineeData == "" {
		return nil, nil
	}
	return []byte(*p.NomineeData), nil
}

func (s *profileStore) SetNomineeData(
	ctx context.Context, userID string, data []byte,
) error {
	var nominee *string
	if data != nil {
		str := string(data)
		nominee = &str
	}
	return s.upsert(ctx, nomineeColumn, &profile{
		ID:          userID,
		NomineeData: nominee,
	})
}

func (s *profileStore) Close() {
	if db, err := s.db.DB(); err == nil {
		db.Close()
	}
}

func (s *profileStore) get(
	ctx context.Context, userID, column string,
) (*profile, error) {
	var p profile
	err := s.db.WithContext(ctx).
		Select("id", column).
		Where("id = ?", userID).
		Take(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, domain.ErrPersistence.WithCause(err)
	}
	return &p, nil
}

// upsert inserts the profile or, if it already exists, overwrites only the
// given column.
func (s *profileStore) upsert(
	ctx context.Context, column string, p *profile,
) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{column}),
	}).Create(p).Error
	if err != nil {
		return domain.ErrPersistence.WithCause(err)
	}
	return nil
}
