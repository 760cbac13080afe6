package handler

import (
	"net/http"
	"strconv"

	"github.com/contactdesk/contactdesk/internal/constants"
	"github.com/contactdesk/contactdesk/internal/dto"
	apperrors "github.com/contactdesk/contactdesk/internal/errors"
	"github.com/contactdesk/contactdesk/internal/middleware"
	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/contactdesk/contactdesk/internal/service"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

func requireUser(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(apperrors.ErrUnauthorized.Message, nil))
	}
	return user, ok
}

func contactIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid contact id", c.Param("id")))
		return 0, false
	}
	return uint(id), true
}

// List returns a page of the caller's contacts
func (h *ContactHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	params := constants.ParsePaginationParams(c)
	contacts, total, err := h.contactService.List(c.Request.Context(), user.ID, params.Limit, params.Offset)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to list contacts", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, params.Page, pageTotal(total, params.Limit), dto.NewContactListResponse(contacts)))
}

// ListAll returns a page over every user's contacts. Routed behind the
// moderator/admin role guard.
func (h *ContactHandler) ListAll(c *gin.Context) {
	params := constants.ParsePaginationParams(c)
	contacts, total, err := h.contactService.ListAll(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to list contacts", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, params.Page, pageTotal(total, params.Limit), dto.NewContactListResponse(contacts)))
}

// Get returns one of the caller's contacts by id
func (h *ContactHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := contactIDParam(c)
	if !ok {
		return
	}

	contact, err := h.contactService.Get(c.Request.Context(), id, user.ID)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Contact lookup failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.NewContactResponse(contact))
}

// Create adds a contact to the caller's book
func (h *ContactHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Warn("Invalid contact payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to create contact", apperrors.GetErrorMessage(err)))
		return
	}

	logger.GetLogger().Info("Contact created",
		zap.Uint("contact_id", contact.ID),
		zap.Uint("user_id", user.ID))

	c.JSON(http.StatusCreated, dto.NewContactResponse(contact))
}

// Update replaces every mutable field of the caller's contact
func (h *ContactHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := contactIDParam(c)
	if !ok {
		return
	}

	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Warn("Invalid contact payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	contact, err := h.contactService.Update(c.Request.Context(), id, user.ID, req)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to update contact", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.NewContactResponse(contact))
}

// Delete removes the caller's contact by id
func (h *ContactHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := contactIDParam(c)
	if !ok {
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), id, user.ID); err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to delete contact", apperrors.GetErrorMessage(err)))
		return
	}

	logger.GetLogger().Info("Contact deleted",
		zap.Uint("contact_id", id),
		zap.Uint("user_id", user.ID))

	c.Status(http.StatusNoContent)
}

// Search returns the caller's contacts matching the query substring
func (h *ContactHandler) Search(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	query := c.Param("query")
	params := constants.ParsePaginationParams(c)

	contacts, err := h.contactService.Search(c.Request.Context(), user.ID, query, params.Limit, params.Offset)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Search failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.NewContactListResponse(contacts))
}

// UpcomingBirthdays returns the caller's contacts with birthdays in the
// next N days.
func (h *ContactHandler) UpcomingBirthdays(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery(constants.QueryParamDays, strconv.Itoa(constants.DefaultBirthdayDays)))
	if err != nil || days < constants.MinBirthdayDays || days > constants.MaxBirthdayDays {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid days parameter", c.Query(constants.QueryParamDays)))
		return
	}

	params := constants.ParsePaginationParams(c)
	contacts, err := h.contactService.UpcomingBirthdays(c.Request.Context(), user.ID, days, params.Limit, params.Offset)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to fetch birthdays", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.NewContactListResponse(contacts))
}
