package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pedro-backend-go/internal/db"
	"pedro-backend-go/internal/legal"
	"pedro-backend-go/internal/models"
)

// DependencyProbe checks reachability of a backing service.
type DependencyProbe func(ctx context.Context) error

// MiscHandler serves health, legal documents and the system-config
// reference data. These endpoints are public.
type MiscHandler struct {
	systemConfigRepo db.SystemConfigRepository
	firestoreProbe   DependencyProbe
	environment      string
	smtpConfigured   bool
	stripeConfigured bool
	logger           *zap.Logger
}

// NewMiscHandler creates a new MiscHandler. firestoreProbe may be nil when
// no datastore check is wanted (tests).
func NewMiscHandler(
	scRepo db.SystemConfigRepository,
	firestoreProbe DependencyProbe,
	environment string,
	smtpConfigured, stripeConfigured bool,
	logger *zap.Logger,
) *MiscHandler {
	return &MiscHandler{
		systemConfigRepo: scRepo,
		firestoreProbe:   firestoreProbe,
		environment:      environment,
		smtpConfigured:   smtpConfigured,
		stripeConfigured: stripeConfigured,
		logger:           logger,
	}
}

// HealthCheck handles GET /api/health. Reports overall status plus
// per-dependency checks; a failing Firestore probe degrades the status but
// the endpoint still answers 200 so load balancers see the process alive.
func (h *MiscHandler) HealthCheck(c *gin.Context) {
	services := map[string]string{
		"smtp":   configuredLabel(h.smtpConfigured),
		"stripe": configuredLabel(h.stripeConfigured),
	}

	status := "ok"
	if h.firestoreProbe != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.firestoreProbe(ctx); err != nil {
			h.logger.Warn("Firestore health probe failed", zap.Error(err))
			services["firebase"] = "unreachable"
			status = "degraded"
		} else {
			services["firebase"] = "ok"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: h.environment,
		Services:    services,
	})
}

func configuredLabel(configured bool) string {
	if configured {
		return "configured"
	}
	return "not_configured"
}

// GetLegalDocument handles GET /api/legal/:slug.
func (h *MiscHandler) GetLegalDocument(c *gin.Context) {
	slug := c.Param("slug")
	doc, err := legal.Get(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Nie znaleziono dokumentu"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// GetSystemConfig handles GET /api/system-config. Falls back to a static
// default when the Firestore document is missing, so a fresh environment
// still renders the onboarding form.
func (h *MiscHandler) GetSystemConfig(c *gin.Context) {
	cfg, err := h.systemConfigRepo.Get(c.Request.Context())
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			h.logger.Error("Fetching system config failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Nie udało się pobrać konfiguracji"})
			return
		}
		cfg = defaultSystemConfig()
	}
	c.JSON(http.StatusOK, cfg)
}

func defaultSystemConfig() *models.SystemConfig {
	return &models.SystemConfig{
		Categories: []models.Category{
			{ID: "gastronomia", Name: "Gastronomia", Slug: "gastronomia", IsActive: true, SortOrder: 1},
			{ID: "uslugi", Name: "Usługi", Slug: "uslugi", IsActive: true, SortOrder: 2},
			{ID: "handel", Name: "Handel", Slug: "handel", IsActive: true, SortOrder: 3},
		},
		Cities: []models.City{
			{Name: "Warszawa", Slug: "warszawa", IsActive: true, SortOrder: 1,
				Coordinates: models.Coordinates{Latitude: 52.2297, Longitude: 21.0122}},
			{Name: "Kraków", Slug: "krakow", IsActive: true, SortOrder: 2,
				Coordinates: models.Coordinates{Latitude: 50.0647, Longitude: 19.9450}},
		},
		BusinessTypes: []string{"restaurant", "retail", "service", "other"},
	}
}
