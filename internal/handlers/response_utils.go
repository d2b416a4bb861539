package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"layout-proxy/internal/models"
	"layout-proxy/internal/service"
	"layout-proxy/internal/upstream"
)

// RespondWithError sends a standardized JSON error response.
func RespondWithError(c *gin.Context, httpStatus int, appErrorCode string, message string, details interface{}) {
	errResp := models.APIError{
		Code:    appErrorCode,
		Message: message,
		Details: details,
	}
	c.AbortWithStatusJSON(httpStatus, errResp)
}

// RespondWithJSON writes an already encoded JSON body.
func RespondWithJSON(c *gin.Context, httpStatus int, body []byte) {
	c.Data(httpStatus, "application/json; charset=utf-8", body)
}

// respondWithServiceError maps a service or upstream failure to the error
// envelope and logs it.
func respondWithServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var ue *upstream.Error
	switch {
	case upstream.IsTimeout(err):
		logger.Warn("Upstream timeout", zap.Error(err), zap.String("request_id", RequestIDFrom(c)))
		RespondWithError(c, http.StatusGatewayTimeout, models.ErrorCodeRequestTimeout, "Upstream service timed out.", nil)
	case upstream.IsPayload(err), errors.Is(err, service.ErrInvalidPayload):
		logger.Warn("Invalid upstream payload", zap.Error(err), zap.String("request_id", RequestIDFrom(c)))
		RespondWithError(c, http.StatusBadGateway, models.ErrorCodeInvalidUpstreamPayload, "Upstream returned a payload that could not be decoded.", nil)
	case errors.As(err, &ue):
		logger.Warn("Upstream failure", zap.Error(err), zap.String("request_id", RequestIDFrom(c)))
		var details interface{}
		if ue.StatusCode != 0 {
			details = gin.H{"upstream_status": ue.StatusCode}
		}
		RespondWithError(c, http.StatusBadGateway, models.ErrorCodeUpstream, "Upstream service request failed.", details)
	default:
		logger.Error("Request failed", zap.Error(err), zap.String("request_id", RequestIDFrom(c)))
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to process request.", nil)
	}
}
