package service

import (
	"context"

	"github.com/contactdesk/contactdesk/internal/dto"
	apperrors "github.com/contactdesk/contactdesk/internal/errors"
	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/contactdesk/contactdesk/pkg/imghost"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"go.uber.org/zap"
)

// UserStore is the persistence contract AuthService runs on.
// repository.UserRepository satisfies it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateRefreshToken(ctx context.Context, userID uint, token *string) error
	RotateRefreshToken(ctx context.Context, userID uint, current, next string) (bool, error)
	ConfirmEmail(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, email, url string) (*model.User, error)
}

// AuthService owns the account lifecycle: signup, credential login,
// refresh token rotation and email confirmation.
type AuthService struct {
	users    UserStore
	hasher   *PasswordHasher
	tokens   *TokenService
	sessions *SessionCache
	notifier ConfirmationMailer
}

func NewAuthService(users UserStore, hasher *PasswordHasher, tokens *TokenService, sessions *SessionCache, notifier ConfirmationMailer) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		notifier: notifier,
	}
}

// Signup registers a new unconfirmed account and queues the confirmation
// email. The email address must not already be taken.
func (s *AuthService) Signup(ctx context.Context, req dto.SignupRequest) (*model.User, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if existing != nil {
		return nil, apperrors.ErrAccountExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	avatar := imghost.GravatarURL(req.Email, 250)
	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Avatar:   &avatar,
		Role:     model.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token, err := s.tokens.CreateEmailToken(user.Email)
	if err != nil {
		logger.GetLogger().Error("Failed to create email verification token",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	} else {
		s.notifier.QueueConfirmation(user.Email, user.Username, token)
	}

	return user, nil
}

// Login checks credentials and issues a fresh access/refresh token pair.
// The refresh token is persisted before the response is returned, so a
// crash cannot hand out a token the store never saw.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return nil, apperrors.ErrInvalidEmail
	}
	if !user.Confirmed {
		return nil, apperrors.ErrEmailNotConfirmed
	}
	if !s.hasher.Verify(req.Password, user.Password) {
		return nil, apperrors.ErrInvalidPassword
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a new pair. Tokens are
// single-use: presenting one that is not the currently stored token
// clears the stored token, so a stolen-and-replayed token locks the
// account out of refreshing until the next password login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	email, err := s.tokens.DecodeRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		s.tripwire(ctx, user)
		return nil, apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.tokens.CreateAccessToken(user.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	nextRefresh, err := s.tokens.CreateRefreshToken(user.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	rotated, err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, nextRefresh)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !rotated {
		// Lost the rotation race: a concurrent request already consumed
		// this token. Treat it the same as a replay.
		s.tripwire(ctx, user)
		return nil, apperrors.ErrInvalidRefreshToken
	}

	s.sessions.Invalidate(ctx, user.Email)

	return dto.NewTokenResponse(accessToken, nextRefresh, s.tokens.AccessTTL()), nil
}

// tripwire revokes the stored refresh token after a replay so the pair
// minted from the stolen token also stops working.
func (s *AuthService) tripwire(ctx context.Context, user *model.User) {
	logger.GetLogger().Warn("Refresh token replay detected, revoking stored token",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
	)
	if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
		logger.GetLogger().Error("Failed to revoke refresh token",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}
	s.sessions.Invalidate(ctx, user.Email)
}

// ConfirmEmail marks the account in the verification token as confirmed.
// Confirming twice is not an error.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error) {
	email, err := s.tokens.DecodeEmailToken(token)
	if err != nil {
		return false, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return false, apperrors.ErrVerification
	}
	if user.Confirmed {
		return true, nil
	}

	if err := s.users.ConfirmEmail(ctx, email); err != nil {
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	s.sessions.Invalidate(ctx, email)

	return false, nil
}

// RequestEmailConfirmation re-sends the confirmation email. The response
// never reveals whether the address is registered.
func (s *AuthService) RequestEmailConfirmation(ctx context.Context, email string) (alreadyConfirmed bool, err error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return false, nil
	}
	if user.Confirmed {
		return true, nil
	}

	token, err := s.tokens.CreateEmailToken(user.Email)
	if err != nil {
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	s.notifier.QueueConfirmation(user.Email, user.Username, token)

	return false, nil
}

// CurrentUser resolves an access token to its user row, reading through
// the session cache.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	email, err := s.tokens.ResolveIdentity(accessToken)
	if err != nil {
		return nil, err
	}

	if user, ok := s.sessions.Get(ctx, email); ok {
		return user, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return nil, apperrors.ErrUnauthorized
	}

	s.sessions.Set(ctx, user)

	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.tokens.CreateAccessToken(user.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	refreshToken, err := s.tokens.CreateRefreshToken(user.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return dto.NewTokenResponse(accessToken, refreshToken, s.tokens.AccessTTL()), nil
}
