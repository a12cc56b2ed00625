package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/sales-insights/internal/utils"
)

// Error codes carried in the JSON error envelope.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
)

// APIError is the body of an error envelope.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// toAPIError classifies err for HTTP callers. Internal failures never leak their cause.
func toAPIError(err error) (int, APIError) {
	if appErr, ok := utils.AsAppError(err); ok && appErr.Kind == utils.KindInvalid {
		return http.StatusBadRequest, APIError{
			Code:    CodeValidation,
			Message: appErr.Msg,
			Details: appErr.Details,
		}
	}
	return http.StatusInternalServerError, APIError{
		Code:    CodeInternal,
		Message: "internal server error",
	}
}

// toStatus maps err onto a gRPC status.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := utils.AsAppError(err); ok && appErr.Kind == utils.KindInvalid {
		return status.Error(codes.InvalidArgument, describeInvalid(appErr))
	}
	return status.Error(codes.Internal, "internal error")
}

func describeInvalid(appErr *utils.AppError) string {
	if len(appErr.Details) == 0 {
		return appErr.Msg
	}
	fields := make([]string, 0, len(appErr.Details))
	for field := range appErr.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, appErr.Details[field]))
	}
	return appErr.Msg + " (" + strings.Join(parts, "; ") + ")"
}
