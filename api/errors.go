package api

import (
	"errors"
	"net/http"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP statuses. Unknown errors are
// logged and return a generic 500 so internals never leak to clients.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validationErr	*domain.ValidationError
		notFoundErr	*domain.NotFoundError
		capacityErr	*domain.CapacityError
		pointsErr	*domain.InsufficientPointsError
		conflictErr	*domain.ConflictError
		storeErr	*domain.StoreUnavailableError
		dependencyErr	*domain.ExternalDependencyError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &capacityErr),
		errors.As(err, &pointsErr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &storeErr):
		logger.Error("store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "service temporarily unavailable"})
	case errors.As(err, &dependencyErr):
		logger.Error("external dependency failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		logger.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
