package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pedro-backend-go/internal/core"
)

// ResolverHandler serves the post-login account resolution endpoint.
type ResolverHandler struct {
	resolverService core.ResolverService
	logger          *zap.Logger
}

// NewResolverHandler creates a new ResolverHandler.
func NewResolverHandler(rs core.ResolverService, logger *zap.Logger) *ResolverHandler {
	return &ResolverHandler{resolverService: rs, logger: logger}
}

// ResolveAccount handles GET /api/account/resolve. It guarantees a user
// document exists for the caller and reports whether they own a business,
// so the client knows which screen to show. A degraded resolution (business
// lookup failed) still returns 200 with the safe no-business outcome.
func (h *ResolverHandler) ResolveAccount(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	resolution, err := h.resolverService.Resolve(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error("Account resolution failed",
			zap.String("uid", identity.UID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Nie udało się rozpoznać konta"})
		return
	}

	c.JSON(http.StatusOK, ResolveResponse{
		Outcome:     string(resolution.Outcome),
		PartnerID:   resolution.PartnerID,
		UserCreated: resolution.UserCreated,
		Degraded:    resolution.Degraded,
	})
}
