package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/auth"
	"github.com/khoahotran/social-api/pkg/logger"
)

const (
	GinContextKeyUserID = "userID"
)

var (
	errCredentialsMissing = apperror.NewUnauthorized("Authentication credentials were not provided.", nil)
)

// authenticate reads the bearer token if there is one. A present but invalid
// token is an error even where authentication is optional.
func authenticate(c *gin.Context, jwtSvc *auth.JWTService) (uuid.UUID, bool, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return uuid.Nil, false, nil
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return uuid.Nil, false, apperror.NewUnauthorized("Invalid token format.", nil)
	}

	claims, err := jwtSvc.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, false, apperror.NewUnauthorized("Given token not valid for any token type.", err)
	}
	return claims.UserID, true, nil
}

func AuthMiddleware(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok, err := authenticate(c, jwtSvc)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !ok {
			_ = c.Error(errCredentialsMissing)
			c.Abort()
			return
		}

		c.Set(GinContextKeyUserID, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware lets anonymous requests through and identifies the
// caller when a token is sent.
func OptionalAuthMiddleware(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok, err := authenticate(c, jwtSvc)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if ok {
			c.Set(GinContextKeyUserID, userID)
		}
		c.Next()
	}
}

// RequireUser rejects anonymous callers. Used for the write routes of
// resources whose reads are public.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserIDFromGinContext(c); !ok {
			_ = c.Error(errCredentialsMissing)
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetUserIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(GinContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return userUUID, true
}

func viewerFromGinContext(c *gin.Context) uuid.NullUUID {
	userID, ok := GetUserIDFromGinContext(c)
	return uuid.NullUUID{UUID: userID, Valid: ok}
}

// ErrorMiddleware renders the last handler error as {"detail": ...}.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
		}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, fields...)
		} else {
			log.Warn("Request rejected", append(fields, zap.Error(err))...)
		}

		c.JSON(status, apperror.ToJSON(err))
	}
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
