package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	domainpricing "ratecraft/internal/domain/pricing"
)

// respondError maps domain errors onto HTTP statuses. Validation failures
// carry their field detail; unknown errors stay opaque 500s.
func respondError(c *gin.Context, err error) {
	var verr *domainpricing.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}
	if errors.Is(err, domainpricing.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch {
	case errors.Is(err, domainpricing.ErrConfigNotFound),
		errors.Is(err, domainpricing.ErrRuleNotFound),
		errors.Is(err, domainpricing.ErrOverrideNotFound),
		errors.Is(err, domainpricing.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
