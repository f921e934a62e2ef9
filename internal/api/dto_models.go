package api

// ErrorResponse is the standard error body for all endpoints. Error carries
// a user-facing (Polish) message; Details is optional developer context.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is the standard body for operations with no payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// ResolveResponse is the account-resolver result returned to the client.
// Outcome drives the landing screen: "no_business" routes to onboarding,
// "has_business" to the dashboard.
type ResolveResponse struct {
	Outcome     string `json:"outcome"`
	PartnerID   string `json:"partnerId,omitempty"`
	UserCreated bool   `json:"userCreated"`
	Degraded    bool   `json:"degraded"`
}

// HealthResponse reports service liveness plus dependency readiness.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Environment string            `json:"environment"`
	Services    map[string]string `json:"services"`
}

// WebhookAck is Stripe's expected acknowledgement body.
type WebhookAck struct {
	Received bool `json:"received"`
}

// PortalSessionResponse carries the Stripe customer-portal redirect URL.
type PortalSessionResponse struct {
	URL string `json:"url"`
}
