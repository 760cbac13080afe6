package handler

import (
	"net/http"

	"github.com/contactdesk/contactdesk/internal/constants"
	"github.com/contactdesk/contactdesk/internal/dto"
	apperrors "github.com/contactdesk/contactdesk/internal/errors"
	"github.com/contactdesk/contactdesk/internal/service"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new account and queues the confirmation email
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Warn("Invalid signup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		logger.GetLogger().Warn("Signup failed",
			zap.String("email", req.Email),
			zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Signup failed", apperrors.GetErrorMessage(err)))
		return
	}

	logger.GetLogger().Info("User registered",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID))

	c.JSON(http.StatusCreated, gin.H{
		"user":   dto.NewUserResponse(user),
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

// Login authenticates credentials and issues a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Warn("Invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		logger.GetLogger().Warn("Login failed",
			zap.String("email", req.Email),
			zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Authentication failed", apperrors.GetErrorMessage(err)))
		return
	}

	logger.GetLogger().Info("User logged in", zap.String("email", req.Email))

	c.JSON(http.StatusOK, tokens)
}

// RefreshToken rotates a refresh token into a new token pair. The token
// arrives the same way access tokens do, as an Authorization bearer.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Token refresh failed", apperrors.ErrInvalidRefreshToken.Message))
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		logger.GetLogger().Warn("Token refresh failed", zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Token refresh failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// ConfirmEmail marks the account in the verification token as confirmed
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	token := c.Param("token")

	alreadyConfirmed, err := h.authService.ConfirmEmail(c.Request.Context(), token)
	if err != nil {
		logger.GetLogger().Warn("Email confirmation failed", zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Email confirmation failed", apperrors.GetErrorMessage(err)))
		return
	}

	if alreadyConfirmed {
		c.JSON(http.StatusOK, constants.BuildSuccessResponse("Your email is already confirmed"))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Email confirmed"))
}

// RequestEmail re-sends the confirmation email without disclosing
// whether the address exists.
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req dto.RequestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Warn("Invalid email request", zap.Error(err))
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	alreadyConfirmed, err := h.authService.RequestEmailConfirmation(c.Request.Context(), req.Email)
	if err != nil {
		logger.GetLogger().Error("Email confirmation request failed",
			zap.String("email", req.Email),
			zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Request failed", apperrors.GetErrorMessage(err)))
		return
	}

	if alreadyConfirmed {
		c.JSON(http.StatusOK, constants.BuildSuccessResponse("Your email is already confirmed"))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Check your email for confirmation."))
}
