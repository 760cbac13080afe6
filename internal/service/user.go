package service

import (
	"context"
	"io"

	apperrors "github.com/contactdesk/contactdesk/internal/errors"
	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"go.uber.org/zap"
)

// AvatarUploader stores an avatar image and returns its public URL.
// pkg/imghost.Client satisfies it.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, publicID string, file io.Reader) (string, error)
}

// UserService owns profile operations on the authenticated account
type UserService struct {
	users    UserStore
	uploader AvatarUploader
	sessions *SessionCache
}

func NewUserService(users UserStore, uploader AvatarUploader, sessions *SessionCache) *UserService {
	return &UserService{users: users, uploader: uploader, sessions: sessions}
}

// UpdateAvatar uploads the image to the external host, persists the new
// URL and overwrites the session cache entry so the change is visible
// on the very next request instead of after the cache entry expires.
func (s *UserService) UpdateAvatar(ctx context.Context, user *model.User, file io.Reader) (*model.User, error) {
	// Reusing the email as public ID makes re-uploads overwrite the
	// previous avatar instead of accumulating orphans on the host.
	url, err := s.uploader.UploadAvatar(ctx, user.Email, file)
	if err != nil {
		logger.GetLogger().Error("Avatar upload failed",
			zap.String("email", user.Email),
			zap.Error(err),
		)
		return nil, apperrors.WrapError(apperrors.ErrServiceUnavailable, err)
	}

	updated, err := s.users.UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if updated == nil {
		return nil, apperrors.ErrUserNotFound
	}

	s.sessions.Set(ctx, updated)

	return updated, nil
}
