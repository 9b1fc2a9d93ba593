package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/vendorledger/internal/infrastructure/auth"
	"github.com/erp/vendorledger/internal/infrastructure/logger"
	"github.com/erp/vendorledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"

	bearerPrefix = "Bearer "
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// JWTConfig configures JWTAuth.
type JWTConfig struct {
	Verifier TokenVerifier
	// SkipPaths are served without a token.
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth requires a valid bearer token on every path not in SkipPaths. The
// user id is stored on the gin context and on the request context for logs.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if skipped(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, bearerPrefix) {
			unauthorized(c, "Invalid authorization header format")
			return
		}
		token := strings.TrimPrefix(header, bearerPrefix)
		if token == "" {
			unauthorized(c, "Missing token")
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			log.Debug("token rejected",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token has expired"
			}
			unauthorized(c, msg)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}

// GetJWTUserID returns the authenticated user id, or uuid.Nil.
func GetJWTUserID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(JWTUserIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}
