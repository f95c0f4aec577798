package daemon

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lebrely-io/backend/internal/models"
	"github.com/lebrely-io/backend/internal/supabase"
)

// respondError maps the service error taxonomy onto HTTP statuses:
// provider rejections 401, constraint violations 400, lookup misses 404,
// anything else 500.
func respondError(c *gin.Context, err error) {
	var authErr *supabase.AuthError

	switch {
	case errors.As(err, &authErr):
		unauthorized(c, authErr.Reason)
	case errors.Is(err, models.ErrIdentityNotFound),
		errors.Is(err, models.ErrUserInactive):
		unauthorized(c, err.Error())
	case errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrDuplicateExternalID):
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	default:
		LogWithCorrelation(c).WithError(err).Errorln("Request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
}
