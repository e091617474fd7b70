// Package repository implements the typed data access layer on gorm. Every
// user-scoped query filters by user id; cross-user access is impossible at
// this layer, not just at the handlers.
package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"mysre-backend/domain/model"
	apperrors "mysre-backend/pkg/errors"
)

// UserRepository persists users synced from the auth provider.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureUser creates the local row on first sign-in and returns it on every
// later call. Email and name refresh from the provider when they change.
func (r *UserRepository) EnsureUser(ctx context.Context, id, email, name string) (*model.User, error) {
	user := model.User{ID: id, Email: email, Name: name, Role: model.RoleUser}
	err := r.db.WithContext(ctx).Where(model.User{ID: id}).
		Attrs(model.User{Email: email, Name: name, Role: model.RoleUser}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("ensure user", err)
	}
	if (email != "" && user.Email != email) || (name != "" && user.Name != name) {
		updates := map[string]any{}
		if email != "" {
			updates["email"] = email
		}
		if name != "" {
			updates["name"] = name
		}
		if err := r.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, apperrors.NewDatabaseError("sync user", err)
		}
	}
	return &user, nil
}

// GetByID fetches a user.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("user")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	return &user, nil
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name  *string
	Group *string
}

// UpdateProfile applies a partial profile update and returns the fresh row.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*model.User, error) {
	updates := map[string]any{}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Group != nil {
		updates["group"] = *update.Group
	}
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, apperrors.NewDatabaseError("update profile", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NewNotFoundError("user")
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateSettings replaces the settings blob.
func (r *UserRepository) UpdateSettings(ctx context.Context, id string, settings datatypes.JSON) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("settings", settings)
	if result.Error != nil {
		return apperrors.NewDatabaseError("update settings", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user")
	}
	return nil
}

// UpdateAvatarURL stores the uploaded avatar's public URL.
func (r *UserRepository) UpdateAvatarURL(ctx context.Context, id, url string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("avatar_url", url)
	if result.Error != nil {
		return apperrors.NewDatabaseError("update avatar", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user")
	}
	return nil
}

// SetVerified flips the verification flag. Admin-only at the handler layer.
func (r *UserRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("verified", verified)
	if result.Error != nil {
		return apperrors.NewDatabaseError("set verified", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user")
	}
	return nil
}
