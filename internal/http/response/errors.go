package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/orgsync-backend/internal/ingestion"
	"github.com/yungbote/orgsync-backend/internal/platform/apierr"
	"github.com/yungbote/orgsync-backend/internal/platform/sciforma"
	"github.com/yungbote/orgsync-backend/internal/services"
)

// FromError maps a service-layer failure onto the HTTP status and stable
// code the caller should see. Anything unrecognized stays an opaque 500.
func FromError(err error) *apierr.Error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return apierr.New(http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, services.ErrSessionBusy):
		return apierr.New(http.StatusConflict, "run_in_progress", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusGatewayTimeout, "timeout", err)
	}

	var inputErr *ingestion.InputError
	if errors.As(err, &inputErr) {
		return apierr.New(http.StatusBadRequest, string(inputErr.Code), err)
	}
	var opErr *sciforma.OperationError
	if errors.As(err, &opErr) {
		return apierr.New(statusForRemote(opErr.Code), string(opErr.Code), err)
	}
	return apierr.New(http.StatusInternalServerError, "internal", err)
}

// statusForRemote keeps caller-input problems in the 4xx range and surfaces
// upstream trouble as a gateway error. Encode failures are our own bug.
func statusForRemote(code sciforma.OperationErrorCode) int {
	switch code {
	case sciforma.OperationErrorValidation:
		return http.StatusBadRequest
	case sciforma.OperationErrorTimeout:
		return http.StatusGatewayTimeout
	case sciforma.OperationErrorEncodeFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// RespondServiceError classifies err and writes the error envelope.
func RespondServiceError(c *gin.Context, err error) {
	apiErr := FromError(err)
	RespondError(c, apiErr.Status, apiErr.Code, err)
}
