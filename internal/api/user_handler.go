package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pedro-backend-go/internal/core"
	"pedro-backend-go/internal/models"
)

// UserHandler serves user-profile and account-lifecycle endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

// InitializeUserProfile handles POST /api/users/initialize. Called by the
// client right after Firebase sign-in to make sure a backend profile
// exists. Returns 201 when the profile was created on this call, 200 when
// it already existed.
func (h *UserHandler) InitializeUserProfile(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error("User profile initialization failed",
			zap.String("uid", identity.UID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Nie udało się utworzyć profilu użytkownika"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, user)
}

// GetCurrentUserProfile handles GET /api/users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), identity.UID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Nie znaleziono profilu użytkownika"})
			return
		}
		h.logger.Error("Fetching user profile failed",
			zap.String("uid", identity.UID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Nie udało się pobrać profilu użytkownika"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword handles POST /api/user/change-password. The new password
// is applied to the Firebase Auth identity and all other sessions are
// revoked.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	summary, err := h.userService.ChangePassword(c.Request.Context(), identity.UID, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Nie znaleziono konta użytkownika"})
		case errors.Is(err, core.ErrNoIdentityEmail):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Nie znaleziono adresu email użytkownika"})
		default:
			h.logger.Error("Password change failed",
				zap.String("uid", identity.UID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Wystąpił błąd podczas zmiany hasła"})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UpdateEmail handles POST /api/user/update-email. The address moves on
// the Firebase Auth identity after a duplicate check; the new address must
// be verified again via the emailed link.
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req models.UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	summary, err := h.userService.UpdateEmail(c.Request.Context(), identity.UID, req.NewEmail)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Ten adres email jest już używany przez inne konto"})
		case errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Nie znaleziono konta użytkownika"})
		default:
			h.logger.Error("Email update failed",
				zap.String("uid", identity.UID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Wystąpił błąd podczas aktualizacji emaila"})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}

// DeleteAccount handles DELETE /api/user/delete-account. The body must echo
// the exact confirmation marker; the composed deletion removes the owned
// business (if any), the user document and the Firebase Auth identity.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req models.DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	summary, err := h.userService.DeleteAccount(c.Request.Context(), identity.UID, req.Confirmation)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidConfirmation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Nie znaleziono konta"})
		default:
			h.logger.Error("Account deletion failed",
				zap.String("uid", identity.UID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Nie udało się usunąć konta"})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}
