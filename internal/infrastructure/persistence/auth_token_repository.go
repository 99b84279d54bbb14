package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/domain/shared"
	"github.com/mailriver/backend/internal/infrastructure/persistence/models"
)

// GormAuthTokenRepository implements identity.AuthTokenRepository using GORM
type GormAuthTokenRepository struct {
	db *gorm.DB
}

// NewGormAuthTokenRepository creates a new GormAuthTokenRepository
func NewGormAuthTokenRepository(db *gorm.DB) *GormAuthTokenRepository {
	return &GormAuthTokenRepository{db: db}
}

// FindByToken finds an auth token by its value and purpose
func (r *GormAuthTokenRepository) FindByToken(ctx context.Context, token string, purpose identity.AuthTokenPurpose) (*identity.AuthToken, error) {
	var model models.AuthTokenModel
	if err := r.db.WithContext(ctx).
		Where("token = ? AND purpose = ?", token, purpose).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an auth token
func (r *GormAuthTokenRepository) Save(ctx context.Context, token *identity.AuthToken) error {
	model := models.AuthTokenModelFromDomain(token)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteExpired removes tokens past their expiry and returns the count
func (r *GormAuthTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.AuthTokenModel{}, "expires_at < ?", time.Now())
	return result.RowsAffected, result.Error
}
