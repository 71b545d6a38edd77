// Package middleware provides http middlewares.
package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/pkg/tokenpkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/web"
)

const (
	// APIKeyHeaderKey is the header inspected for the client API key.
	APIKeyHeaderKey = "X-API-Key"
	// AuthHeaderKey is the header inspected for the bearer token.
	AuthHeaderKey = "authorization"
	// AuthTypeBearer is the only supported authorization type.
	AuthTypeBearer = "bearer"
	// AuthPayloadKey is the gin context key holding the verified token payload.
	AuthPayloadKey = "authorization_payload"
)

var (
	// ErrAPIKeyNotFound indicates a missing X-API-Key header.
	ErrAPIKeyNotFound = errors.New("the API key is missing")
	// ErrInvalidAPIKey indicates that the X-API-Key header does not match the configured key.
	ErrInvalidAPIKey = errors.New("invalid API key")
	// ErrAuthHeaderNotFound indicates a missing authorization header.
	ErrAuthHeaderNotFound = errors.New("authorization header is not provided")
	// ErrBadAuthHeaderFormat indicates a malformed authorization header.
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")
	// ErrUnsupportedAuthType indicates an authorization type other than bearer.
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
	// ErrForbiddenRole indicates that the route is not allowed for the caller's role.
	ErrForbiddenRole = errors.New("operation is not allowed for this role")
)

// AddAuthorization creates a token and sets the request authorization header for tests.
func AddAuthorization(
	t *testing.T,
	request *http.Request,
	tokenMaker tokenpkg.Maker,
	authorizationType string,
	username string,
	role domain.Role,
	duration time.Duration,
) {
	t.Helper()

	token, _, err := tokenMaker.CreateToken(username, string(role), duration)
	if err != nil {
		t.Fatalf("tokenMaker.CreateToken(%v, %v, %v) returned error: %v", username, role, duration, err)
	}

	authorizationHeader := fmt.Sprintf("%s %s", authorizationType, token)
	request.Header.Set(AuthHeaderKey, authorizationHeader)
}

// APIKeyAuth rejects any request that does not carry the configured client API key.
// It runs before the bearer token middleware on every route.
func APIKeyAuth(key string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		apiKey := ctx.GetHeader(APIKeyHeaderKey)
		if len(apiKey) == 0 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAPIKeyNotFound))
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrInvalidAPIKey))
			return
		}

		ctx.Next()
	}
}

// AuthMiddleware verifies the bearer token and stores its payload in the gin context.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorizationHeader := ctx.GetHeader(AuthHeaderKey)
		if len(authorizationHeader) == 0 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAuthHeaderNotFound))
			return
		}

		fields := strings.Fields(authorizationHeader)
		if len(fields) < 2 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrBadAuthHeaderFormat))
			return
		}

		authorizationType := strings.ToLower(fields[0])
		if authorizationType != AuthTypeBearer {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrUnsupportedAuthType))
			return
		}

		accessToken := fields[1]

		payload, err := tokenMaker.VerifyToken(accessToken)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		ctx.Set(AuthPayloadKey, payload)
		ctx.Next()
	}
}

// RequireRoles rejects requests whose token role is not one of the given roles.
// It must run after AuthMiddleware.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		payload := ctx.MustGet(AuthPayloadKey).(*tokenpkg.Payload)

		for _, role := range roles {
			if payload.Role == string(role) {
				ctx.Next()
				return
			}
		}

		ctx.AbortWithStatusJSON(http.StatusForbidden, web.Error(ErrForbiddenRole))
	}
}

// Identity extracts the caller identity from the verified token payload.
func Identity(ctx *gin.Context) domain.Identity {
	payload := ctx.MustGet(AuthPayloadKey).(*tokenpkg.Payload)

	return domain.Identity{
		Username: payload.Username,
		Role:     domain.Role(payload.Role),
	}
}
