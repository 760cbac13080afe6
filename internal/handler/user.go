package handler

import (
	"net/http"

	"github.com/contactdesk/contactdesk/internal/constants"
	"github.com/contactdesk/contactdesk/internal/dto"
	apperrors "github.com/contactdesk/contactdesk/internal/errors"
	"github.com/contactdesk/contactdesk/internal/middleware"
	"github.com/contactdesk/contactdesk/internal/service"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxAvatarSize caps avatar uploads at 5 MB
const maxAvatarSize = 5 << 20

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(apperrors.ErrUnauthorized.Message, nil))
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateAvatar replaces the authenticated user's avatar with the
// uploaded image file.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(apperrors.ErrUnauthorized.Message, nil))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.GetLogger().Warn("Avatar upload without file",
			zap.String("email", user.Email),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Missing file field", err.Error()))
		return
	}
	if fileHeader.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("File too large", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Unreadable file", err.Error()))
		return
	}
	defer file.Close()

	updated, err := h.userService.UpdateAvatar(c.Request.Context(), user, file)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Avatar update failed", apperrors.GetErrorMessage(err)))
		return
	}

	logger.GetLogger().Info("Avatar updated",
		zap.String("email", updated.Email),
		zap.Uint("user_id", updated.ID))

	c.JSON(http.StatusOK, dto.NewUserResponse(updated))
}
