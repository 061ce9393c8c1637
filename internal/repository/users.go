package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medichain-server/internal/domain"
	"medichain-server/internal/models"
)

// UserRepository is the GORM-backed user store.
type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("user not found")
		}
		return nil, domain.Internal("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByDID(ctx context.Context, did string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "did = ?", did).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("user not found")
		}
		return nil, domain.Internal("find user by did", err)
	}
	return &user, nil
}
