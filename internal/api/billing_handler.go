package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pedro-backend-go/internal/core"
	"pedro-backend-go/internal/models"
)

// Large invoice events with many line items run into tens of kilobytes;
// 1 MiB leaves ample headroom while still bounding the read.
const maxWebhookBodyBytes = 1 << 20

// BillingHandler serves the Stripe session endpoints and the webhook.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, logger: logger}
}

// CreateCheckoutSession handles POST /api/stripe/create-checkout-session.
// Starts a pay-per-use subscription checkout for the caller's business.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req models.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	session, err := h.billingService.CreateCheckoutSession(c.Request.Context(), identity.UID, req.PartnerID)
	if err != nil {
		h.writeBillingError(c, identity.UID, "Checkout session creation failed", err, "Nie udało się rozpocząć płatności")
		return
	}
	c.JSON(http.StatusOK, session)
}

// CreatePortalSession handles POST /api/stripe/create-portal-session.
// Requires an existing Stripe customer; businesses that never started
// checkout get 400.
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req models.PortalSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	url, err := h.billingService.CreatePortalSession(c.Request.Context(), identity.UID, req.PartnerID)
	if err != nil {
		if errors.Is(err, core.ErrNoStripeCustomer) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Firma nie ma jeszcze aktywnych rozliczeń"})
			return
		}
		h.writeBillingError(c, identity.UID, "Portal session creation failed", err, "Nie udało się otworzyć panelu rozliczeń")
		return
	}
	c.JSON(http.StatusOK, PortalSessionResponse{URL: url})
}

// HandleWebhook handles POST /api/stripe/webhook. Unauthenticated; the
// Stripe-Signature header is the only trust anchor. Processing failures
// other than a bad signature are still acknowledged with 200 so Stripe
// does not retry events we have chosen to drop.
func (h *BillingHandler) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.Warn("Webhook body over size limit", zap.Int64("limit", maxErr.Limit))
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "payload too large"})
			return
		}
		h.logger.Warn("Reading webhook body failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := h.billingService.HandleWebhook(c.Request.Context(), payload, sigHeader); err != nil {
		if errors.Is(err, core.ErrWebhookSignature) {
			h.logger.Warn("Webhook signature verification failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid signature"})
			return
		}
		// Document-write failures return 500 so Stripe redelivers the event.
		h.logger.Error("Webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "event processing failed"})
		return
	}

	c.JSON(http.StatusOK, WebhookAck{Received: true})
}

func (h *BillingHandler) writeBillingError(c *gin.Context, uid, logMsg string, err error, fallback string) {
	switch {
	case errors.Is(err, core.ErrPartnerNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Nie znaleziono firmy"})
	case errors.Is(err, core.ErrForbiddenAccess):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Brak uprawnień do tej firmy"})
	case errors.Is(err, core.ErrStripeClient):
		h.logger.Error(logMsg, zap.String("uid", uid), zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Usługa płatności jest chwilowo niedostępna"})
	default:
		h.logger.Error(logMsg, zap.String("uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}
