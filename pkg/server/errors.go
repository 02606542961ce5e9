package server

import (
	"net/http"

	perrors "github.com/matzehuels/plantgate/pkg/errors"
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      perrors.Code `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
}

// statusFor maps an error code to the HTTP status returned to API clients.
func statusFor(code perrors.Code) int {
	switch code {
	case perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidSearch,
		perrors.ErrCodeInvalidLimit, perrors.ErrCodeInvalidSpeciesID:
		return http.StatusBadRequest
	case perrors.ErrCodeNotFound:
		return http.StatusNotFound
	case perrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case perrors.ErrCodeAPIKeyMissing:
		return http.StatusServiceUnavailable
	case perrors.ErrCodeUnauthorized, perrors.ErrCodeUpstream, perrors.ErrCodeNetwork:
		return http.StatusBadGateway
	case perrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	writeErrorStatus(w, r, statusFor(code), code, perrors.UserMessage(err))
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, code perrors.Code, msg string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: GetRequestID(r.Context()),
	}})
}
