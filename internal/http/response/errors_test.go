package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/yungbote/orgsync-backend/internal/ingestion"
	"github.com/yungbote/orgsync-backend/internal/platform/sciforma"
	"github.com/yungbote/orgsync-backend/internal/services"
)

func TestFromErrorClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "session not found",
			err:        fmt.Errorf("acquire: %w", services.ErrSessionNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "session_not_found",
		},
		{
			name:       "session busy",
			err:        services.ErrSessionBusy,
			wantStatus: http.StatusConflict,
			wantCode:   "run_in_progress",
		},
		{
			name:       "request deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "timeout",
		},
		{
			name:       "missing columns",
			err:        &ingestion.InputError{Code: ingestion.InputErrorMissingColumns, Missing: []string{"division"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "missing_columns",
		},
		{
			name:       "remote validation",
			err:        &sciforma.OperationError{Code: sciforma.OperationErrorValidation, Operation: "create"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name:       "remote timeout",
			err:        fmt.Errorf("resolve division \"D1\": %w", &sciforma.OperationError{Code: sciforma.OperationErrorTimeout, Operation: "get"}),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "timeout",
		},
		{
			name:       "remote unavailable",
			err:        &sciforma.OperationError{Code: sciforma.OperationErrorTransientUnavailable, Operation: "patch", StatusCode: 503},
			wantStatus: http.StatusBadGateway,
			wantCode:   "transient_unavailable",
		},
		{
			name:       "remote auth",
			err:        &sciforma.OperationError{Code: sciforma.OperationErrorAuthFailed, Operation: "token"},
			wantStatus: http.StatusBadGateway,
			wantCode:   "auth_failed",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			apiErr := FromError(tc.err)
			if apiErr.Status != tc.wantStatus {
				t.Fatalf("status: want=%d got=%d", tc.wantStatus, apiErr.Status)
			}
			if apiErr.Code != tc.wantCode {
				t.Fatalf("code: want=%q got=%q", tc.wantCode, apiErr.Code)
			}
			if !errors.Is(apiErr, apiErr.Err) {
				t.Fatalf("classified error must unwrap to the cause")
			}
		})
	}
}
