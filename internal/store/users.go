package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lebrely-io/backend/internal/models"
)

// Users is the repository for local user records.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create inserts a new user. A loss on the email unique index surfaces as
// models.ErrDuplicateEmail.
func (u *Users) Create(ctx context.Context, user *models.User) error {
	err := u.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *Users) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user %d: %w", id, err)
	}
	return &user, nil
}

func (u *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	return &user, nil
}

func (u *Users) ByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user by external id: %w", err)
	}
	return &user, nil
}

// LinkExternal attaches an external identity id to an existing row and
// commits immediately. A loss on the external_id unique index surfaces as
// models.ErrDuplicateExternalID.
func (u *Users) LinkExternal(ctx context.Context, user *models.User, externalID string) error {
	err := u.db.WithContext(ctx).Model(user).Update("external_id", externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicateExternalID
		}
		return fmt.Errorf("failed to link external id: %w", err)
	}
	user.ExternalID = &externalID
	return nil
}

// Update persists profile field changes.
func (u *Users) Update(ctx context.Context, user *models.User) error {
	err := u.db.WithContext(ctx).Save(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return nil
}

// Deactivate soft-deletes a user by flipping is_active. Rows are never
// hard-deleted here.
func (u *Users) Deactivate(ctx context.Context, id uint) error {
	result := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a row outright. Only used as a compensating action when
// the provider rejects a signup after the local insert already happened.
func (u *Users) Delete(ctx context.Context, id uint) error {
	result := u.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// List returns users ordered by id with offset/limit pagination.
func (u *Users) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	var users []models.User
	err := u.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
