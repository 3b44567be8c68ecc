package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wecre8/oto/internal/infrastructure/auth"
	"github.com/wecre8/oto/internal/interfaces/http/dto"
)

// Hook auth context keys
const (
	HookClaimsKey  = "hook_claims"
	HookSubjectKey = "hook_subject"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

var errMissingBearer = errors.New("missing bearer token")

// TokenValidator validates bearer tokens issued by the host platform
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// HookAuthConfig holds configuration for the hook authentication middleware
type HookAuthConfig struct {
	// Validator is required for token validation
	Validator TokenValidator
	// Logger for middleware logging, optional
	Logger *zap.Logger
}

// HookAuth rejects requests without a valid HS256 bearer token signed with
// the shared hook secret
func HookAuth(cfg HookAuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, errMissingBearer, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, errMissingBearer, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			handleAuthError(c, cfg, errMissingBearer, "Missing token")
			return
		}

		claims, err := cfg.Validator.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(HookClaimsKey, claims)
		c.Set(HookSubjectKey, claims.Subject)

		cfg.Logger.Debug("Hook authentication successful",
			zap.String("subject", claims.Subject),
			zap.String("path", c.Request.URL.Path),
		)
		c.Next()
	}
}

func handleAuthError(c *gin.Context, cfg HookAuthConfig, err error, message string) {
	cfg.Logger.Warn("Hook authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	errorMessage := "Authentication required"
	status := http.StatusUnauthorized

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code = dto.ErrCodeTokenInvalid
		errorMessage = "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidIssuer), errors.Is(err, auth.ErrInvalidToken):
		code = dto.ErrCodeTokenInvalid
		errorMessage = "Invalid token"
	case errors.Is(err, auth.ErrMissingSecret):
		code = dto.ErrCodeUnavailable
		errorMessage = "Hook authentication is not configured"
		status = http.StatusServiceUnavailable
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, errorMessage, GetRequestID(c)))
}

// GetHookClaims retrieves the validated hook claims from gin.Context
func GetHookClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(HookClaimsKey); exists {
		if hookClaims, ok := claims.(*auth.Claims); ok {
			return hookClaims
		}
	}
	return nil
}

// GetHookSubject returns the subject of the validated hook token
func GetHookSubject(c *gin.Context) string {
	return c.GetString(HookSubjectKey)
}
