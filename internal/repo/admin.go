package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopfront/internal/models"
)

func (r *GormRepo) AdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// UpsertAdmin creates the admin or replaces name and password of the row with
// the same email. It reports whether a new row was inserted.
func (r *GormRepo) UpsertAdmin(ctx context.Context, a *models.Admin) (bool, error) {
	created := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Admin
		err := tx.Where("email = ?", a.Email).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(a).Error
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&existing).Updates(map[string]any{"name": a.Name, "password": a.Password}).Error; err != nil {
			return err
		}
		a.ID = existing.ID
		a.Role = existing.Role
		a.CreatedAt = existing.CreatedAt
		return nil
	})
	return created, err
}
