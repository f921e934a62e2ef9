package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pedro-backend-go/internal/core"
	"pedro-backend-go/internal/models"
)

// BusinessHandler serves the business-profile CRUD endpoints.
type BusinessHandler struct {
	partnerService core.PartnerService
	logger         *zap.Logger
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(ps core.PartnerService, logger *zap.Logger) *BusinessHandler {
	return &BusinessHandler{partnerService: ps, logger: logger}
}

// RegisterBusiness handles POST /api/business/register. One business per
// owner; a second registration attempt gets 409.
func (h *BusinessHandler) RegisterBusiness(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var form models.BusinessForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	partner, err := h.partnerService.Register(c.Request.Context(), identity.UID, form)
	if err != nil {
		if errors.Is(err, core.ErrBusinessAlreadyExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Masz już zarejestrowaną firmę"})
			return
		}
		h.logger.Error("Business registration failed",
			zap.String("uid", identity.UID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Nie udało się zarejestrować firmy"})
		return
	}

	c.JSON(http.StatusCreated, partner)
}

// GetOwnBusiness handles GET /api/business/me.
func (h *BusinessHandler) GetOwnBusiness(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	partner, err := h.partnerService.GetOwn(c.Request.Context(), identity.UID)
	if err != nil {
		if errors.Is(err, core.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Nie znaleziono firmy"})
			return
		}
		h.logger.Error("Fetching own business failed",
			zap.String("uid", identity.UID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Nie udało się pobrać danych firmy"})
		return
	}
	c.JSON(http.StatusOK, partner)
}

// UpdateBusiness handles PUT /api/business/update. Only the owner may edit,
// and only the profile fields; billing and business-model state are not
// client-writable.
func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req models.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	partner, err := h.partnerService.Update(c.Request.Context(), identity.UID, req)
	if err != nil {
		h.writeBusinessError(c, identity.UID, "Business update failed", err, "Nie udało się zaktualizować danych firmy")
		return
	}
	c.JSON(http.StatusOK, partner)
}

// DeleteBusiness handles DELETE /api/business/delete. The body must echo
// the exact confirmation marker before any mutation happens.
func (h *BusinessHandler) DeleteBusiness(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req models.DeleteBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	summary, err := h.partnerService.Delete(c.Request.Context(), identity.UID, req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidConfirmation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.writeBusinessError(c, identity.UID, "Business deletion failed", err, "Nie udało się usunąć firmy")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// writeBusinessError maps the shared partner-service errors (not found,
// forbidden) and falls back to a logged 500.
func (h *BusinessHandler) writeBusinessError(c *gin.Context, uid, logMsg string, err error, fallback string) {
	switch {
	case errors.Is(err, core.ErrPartnerNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Nie znaleziono firmy"})
	case errors.Is(err, core.ErrForbiddenAccess):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Brak uprawnień do tej firmy"})
	default:
		h.logger.Error(logMsg,
			zap.String("uid", uid),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}
