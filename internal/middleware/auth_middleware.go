package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pedro-backend-go/internal/core"
)

// IdentityContextKey is the gin context key under which the authenticated
// caller's identity is stored by VerifyToken.
const IdentityContextKey = "authIdentity"

// AuthCookieName is the fallback cookie checked when no Authorization
// header is present. Browser clients that cannot attach headers (e.g.
// top-level navigations) send the Firebase ID token in this cookie.
const AuthCookieName = "firebase-auth-token"

// ErrorResponse mirrors the api package's error body. Defined locally to
// avoid an import cycle between middleware and api.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// VerifiedToken is the subset of Firebase token data the middleware needs.
type VerifiedToken struct {
	UID    string
	Claims map[string]interface{}
}

// TokenVerifier abstracts Firebase ID token verification so handlers can be
// tested without a live auth client. Production code wraps
// *auth.Client.VerifyIDToken via NewFirebaseVerifier.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*VerifiedToken, error)
}

// firebaseVerifyFunc adapts a bare verification function to TokenVerifier.
type firebaseVerifyFunc func(ctx context.Context, idToken string) (*VerifiedToken, error)

func (f firebaseVerifyFunc) VerifyIDToken(ctx context.Context, idToken string) (*VerifiedToken, error) {
	return f(ctx, idToken)
}

// NewFirebaseVerifier wraps a verification function (typically a closure
// over *auth.Client.VerifyIDToken) as a TokenVerifier.
func NewFirebaseVerifier(verify func(ctx context.Context, idToken string) (*VerifiedToken, error)) TokenVerifier {
	return firebaseVerifyFunc(verify)
}

// AuthMiddleware authenticates requests with Firebase ID tokens.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates an AuthMiddleware. Both dependencies are
// required; the application cannot serve authenticated routes without them.
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("AuthMiddleware requires a non-nil TokenVerifier")
	}
	if logger == nil {
		panic("AuthMiddleware requires a non-nil zap.Logger")
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// VerifyToken verifies the Firebase ID token carried in the Authorization
// header ("Bearer {token}") or, failing that, in the firebase-auth-token
// cookie. On success the caller's identity is stored in the gin context
// under IdentityContextKey; otherwise the request is aborted with 401.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, src := extractToken(c)
		if idToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Wymagane uwierzytelnienie"})
			return
		}

		token, err := m.verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			// Log the detail server-side; the client only gets a generic message.
			m.logger.Warn("ID token verification failed",
				zap.String("token_source", src),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Nieprawidłowy lub wygasły token uwierzytelniający"})
			return
		}

		identity := core.Identity{UID: token.UID}
		if email, ok := token.Claims["email"].(string); ok {
			identity.Email = email
		}
		if name, ok := token.Claims["name"].(string); ok {
			identity.DisplayName = name
		}
		if verified, ok := token.Claims["email_verified"].(bool); ok {
			identity.EmailVerified = verified
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// extractToken returns the raw ID token and where it came from
// ("header" or "cookie"); empty token means no credentials were sent.
func extractToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], "header"
		}
		return "", "header"
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie, "cookie"
	}
	return "", ""
}

// IdentityFromContext retrieves the identity stored by VerifyToken.
// The boolean is false when the route was not behind the auth middleware.
func IdentityFromContext(c *gin.Context) (core.Identity, bool) {
	v, exists := c.Get(IdentityContextKey)
	if !exists {
		return core.Identity{}, false
	}
	identity, ok := v.(core.Identity)
	return identity, ok
}
