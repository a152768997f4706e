package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/abhikhya/shopcart/internal/models"
	"github.com/abhikhya/shopcart/internal/tokens"
)

// AddRefresh stores the token hashed, the raw value never touches the DB.
func (r *GormRepo) AddRefresh(ctx context.Context, raw, jti string, userID uint, expiresAt time.Time) error {
	rec := models.RefreshToken{
		Token:     tokens.Sha256Hex(raw),
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt.Unix(),
	}
	return r.DB.WithContext(ctx).Create(&rec).Error
}

func (r *GormRepo) RefreshUsable(ctx context.Context, jti string) (bool, error) {
	var rec models.RefreshToken
	err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rec.Revoked || time.Now().Unix() > rec.ExpiresAt {
		return false, nil
	}
	return true, nil
}

func (r *GormRepo) RevokeRefresh(ctx context.Context, raw string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", tokens.Sha256Hex(raw)).
		Update("revoked", true).Error
}
