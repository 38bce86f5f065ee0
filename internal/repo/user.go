package repo

import (
	"context"

	"github.com/Skotchmaster/shopfront/internal/models"
)

func (r *GormRepo) UserEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.DB.WithContext(ctx).
		Select("id", "name", "email", "role", "created_at").
		Order("created_at DESC").Order("id DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
