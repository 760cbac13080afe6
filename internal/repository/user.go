package repository

import (
	"context"
	"errors"
	"time"

	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail finds a user by email. Returns (nil, nil) when no row exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.GetLogger().Error("Failed to get user by email",
			zap.String("email", email),
			zap.Duration("duration", time.Since(start)),
			zap.Error(result.Error),
		)
		return nil, result.Error
	}

	return &user, nil
}

// Create inserts a new user row
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	start := time.Now()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		logger.GetLogger().Error("Failed to create user",
			zap.String("email", user.Email),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}

	logger.GetLogger().Info("User created",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
	)

	return nil
}

// UpdateRefreshToken sets (or clears, with nil) the stored refresh token
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID uint, token *string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token)

	if result.Error != nil {
		logger.GetLogger().Error("Failed to update refresh token",
			zap.Uint("user_id", userID),
			zap.Error(result.Error),
		)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// RotateRefreshToken swaps the stored refresh token for a new one, but only
// if the stored value still equals current. The conditional update makes the
// read-compare-write race between concurrent refresh calls a single atomic
// statement: exactly one caller wins. Returns false when the stored token no
// longer matched.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID uint, current, next string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND refresh_token = ?", userID, current).
		Update("refresh_token", next)

	if result.Error != nil {
		logger.GetLogger().Error("Failed to rotate refresh token",
			zap.Uint("user_id", userID),
			zap.Error(result.Error),
		)
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ConfirmEmail marks the user with this email as confirmed
func (r *UserRepository) ConfirmEmail(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("confirmed", true)

	if result.Error != nil {
		logger.GetLogger().Error("Failed to confirm email",
			zap.String("email", email),
			zap.Error(result.Error),
		)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.GetLogger().Info("Email confirmed",
		zap.String("email", email),
	)

	return nil
}

// UpdateAvatar stores the new avatar URL and returns the fresh row
func (r *UserRepository) UpdateAvatar(ctx context.Context, email, url string) (*model.User, error) {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("avatar", url)

	if result.Error != nil {
		logger.GetLogger().Error("Failed to update avatar",
			zap.String("email", email),
			zap.Error(result.Error),
		)
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
