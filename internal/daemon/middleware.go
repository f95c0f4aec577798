package daemon

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lebrely-io/backend/internal/models"
)

const (
	// Context keys
	UserContextKey  = "user"
	TokenContextKey = "access_token"

	correlationIDKey = "correlation_id"
)

// CorrelationMiddleware adds a unique correlation ID to each request so
// log entries can be tied back to it. An existing X-Correlation-ID header
// is kept; otherwise a new UUID is generated.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(correlationIDKey, correlationID)
		c.Header("X-Correlation-ID", correlationID)

		c.Next()
	}
}

// GetCorrelationID retrieves the correlation ID from the request context.
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(correlationIDKey); exists {
		if strID, ok := id.(string); ok {
			return strID
		}
	}
	return ""
}

// LogWithCorrelation creates a logrus entry carrying the correlation ID.
func LogWithCorrelation(c *gin.Context) *logrus.Entry {
	return logrus.WithField("correlation_id", GetCorrelationID(c))
}

// RequireAuth validates the bearer token by forwarding it to the identity
// provider and resolves the local user. Requests without a valid token get
// a 401; the token itself is never inspected locally.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		user, err := s.Auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			LogWithCorrelation(c).WithError(err).Debugln("Bearer token rejected")
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserContextKey, user)
		c.Set(TokenContextKey, token)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if len(header) == 0 {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || len(parts[1]) == 0 {
		return "", false
	}

	return parts[1], true
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: message})
}

// currentUser pulls the authenticated user set by RequireAuth.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func accessToken(c *gin.Context) string {
	return c.GetString(TokenContextKey)
}
