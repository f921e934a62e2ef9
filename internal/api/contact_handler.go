package api

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pedro-backend-go/internal/core"
	"pedro-backend-go/internal/mailer"
	"pedro-backend-go/internal/models"
)

// contactSendTimeout bounds a single SMTP delivery so a stuck mail server
// cannot hold the request open.
const contactSendTimeout = 10 * time.Second

// ContactHandler serves the public contact form.
type ContactHandler struct {
	mailer    core.Mailer
	recipient string
	logger    *zap.Logger
}

// NewContactHandler creates a new ContactHandler. recipient is the inbox
// that receives contact-form submissions.
func NewContactHandler(m core.Mailer, recipient string, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{mailer: m, recipient: recipient, logger: logger}
}

// SubmitContactForm handles POST /api/contact. Unauthenticated.
func (h *ContactHandler) SubmitContactForm(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorResponse(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), contactSendTimeout)
	defer cancel()

	subject := "Nowa wiadomość z formularza kontaktowego PEDRO"
	htmlBody, textBody := renderContactMessage(req)

	if err := h.mailer.Send(ctx, h.recipient, subject, htmlBody, textBody); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			h.logger.Warn("Contact form submitted but SMTP is not configured")
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Wysyłanie wiadomości jest chwilowo niedostępne"})
			return
		}
		h.logger.Error("Contact mail delivery failed",
			zap.String("sender_email", req.Email),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Nie udało się wysłać wiadomości"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Wiadomość została wysłana"})
}

// renderContactMessage builds the HTML and plain-text bodies. User input is
// HTML-escaped; the sender address goes into Reply-To semantics via the
// body since the form sends from our own address.
func renderContactMessage(req models.ContactRequest) (string, string) {
	name := html.EscapeString(req.Name)
	email := html.EscapeString(req.Email)
	message := html.EscapeString(req.Message)

	htmlBody := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2 style="color: #1a1a2e;">Nowa wiadomość z formularza kontaktowego</h2>
  <p><strong>Imię i nazwisko:</strong> %s</p>
  <p><strong>E-mail:</strong> %s</p>
  <hr style="border: none; border-top: 1px solid #ddd;">
  <p style="white-space: pre-wrap;">%s</p>
</div>`, name, email, message)

	textBody := fmt.Sprintf("Nowa wiadomość z formularza kontaktowego\n\nImię i nazwisko: %s\nE-mail: %s\n\n%s\n",
		req.Name, req.Email, req.Message)

	return htmlBody, textBody
}
