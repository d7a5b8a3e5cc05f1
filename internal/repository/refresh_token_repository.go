package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ldaehi0205/go-board-backend/internal/domain"
	"github.com/ldaehi0205/go-board-backend/internal/observability"
	"github.com/ldaehi0205/go-board-backend/internal/security"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token already revoked")
)

type RefreshTokenRepository interface {
	Create(userID uint, familyID string, expiresAt time.Time) (*domain.RefreshToken, error)
	FindByToken(token string) (*domain.RefreshToken, error)
	Revoke(id uint) error
	Rotate(oldID, userID uint, familyID string, newExpiresAt time.Time) (*domain.RefreshToken, error)
	RevokeFamily(familyID string) (int64, error)
	DeleteExpiredBefore(cutoff time.Time) (int64, error)
}

type GormRefreshTokenRepository struct{ db *gorm.DB }

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

func (r *GormRefreshTokenRepository) Create(userID uint, familyID string, expiresAt time.Time) (*domain.RefreshToken, error) {
	value, err := security.NewRefreshTokenValue()
	if err != nil {
		return nil, err
	}
	token := &domain.RefreshToken{
		Token:      value,
		UserID:     userID,
		FamilyID:   familyID,
		ExpiresAt:  expiresAt,
		LastSeenAt: time.Now().UTC(),
	}
	if err := r.db.Create(token).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "create", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "create", "success")
	return token, nil
}

func (r *GormRefreshTokenRepository) FindByToken(value string) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	if err := r.db.Where("token = ?", value).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "refresh_token", "find_by_token", "not_found")
			return nil, ErrRefreshTokenNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "find_by_token", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "find_by_token", "success")
	return &token, nil
}

// Revoke flips the revoked flag. Revoking an already-revoked token is a
// no-op success; only a missing row is an error.
func (r *GormRefreshTokenRepository) Revoke(id uint) error {
	res := r.db.Model(&domain.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "revoke", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&domain.RefreshToken{}).Where("id = ?", id).Count(&count).Error; err != nil {
			observability.RecordRepositoryOperation(context.Background(), "refresh_token", "revoke", "error")
			return err
		}
		if count == 0 {
			observability.RecordRepositoryOperation(context.Background(), "refresh_token", "revoke", "not_found")
			return ErrRefreshTokenNotFound
		}
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "revoke", "success")
	return nil
}

// Rotate revokes the presented token and creates its successor in a single
// transaction. The revoke is a compare-and-swap on the revoked flag: when
// two rotations race over the same token, exactly one sees RowsAffected==1
// and commits; the other aborts with ErrRefreshTokenRevoked.
func (r *GormRefreshTokenRepository) Rotate(oldID, userID uint, familyID string, newExpiresAt time.Time) (*domain.RefreshToken, error) {
	value, err := security.NewRefreshTokenValue()
	if err != nil {
		return nil, err
	}
	next := &domain.RefreshToken{
		Token:      value,
		UserID:     userID,
		FamilyID:   familyID,
		ExpiresAt:  newExpiresAt,
		LastSeenAt: time.Now().UTC(),
	}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.RefreshToken{}).
			Where("id = ? AND revoked = ?", oldID, false).
			Updates(map[string]any{"revoked": true, "last_seen_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRefreshTokenRevoked
		}
		return tx.Create(next).Error
	})
	if err != nil {
		if errors.Is(err, ErrRefreshTokenRevoked) {
			observability.RecordRepositoryOperation(context.Background(), "refresh_token", "rotate", "lost_race")
		} else {
			observability.RecordRepositoryOperation(context.Background(), "refresh_token", "rotate", "error")
		}
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "rotate", "success")
	return next, nil
}

// RevokeFamily revokes every live token descended from the same login.
// Used when a revoked token is replayed, which signals theft of the chain.
func (r *GormRefreshTokenRepository) RevokeFamily(familyID string) (int64, error) {
	res := r.db.Model(&domain.RefreshToken{}).
		Where("family_id = ? AND revoked = ?", familyID, false).
		Update("revoked", true)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "revoke_family", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "revoke_family", "success")
	return res.RowsAffected, nil
}

// DeleteExpiredBefore prunes revoked rows whose absolute expiry passed
// before cutoff. Operational housekeeping; nothing in the service schedules
// it.
func (r *GormRefreshTokenRepository) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("revoked = ? AND expires_at < ?", true, cutoff).Delete(&domain.RefreshToken{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "delete_expired", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "delete_expired", "success")
	return res.RowsAffected, nil
}
