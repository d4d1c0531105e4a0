package handler

import (
	"encoding/json"
	"net/http"

	dErrors "mintgate/pkg/domain-errors"
)

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

type balanceResponse struct {
	Balance uint64 `json:"balance"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain error codes onto HTTP statuses. The mapping is the
// only place transport learns about the error taxonomy.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	writeJSON(w, statusFor(code), errorResponse{
		Error:       string(code),
		Description: err.Error(),
	})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotAllowed:
		return http.StatusForbidden
	case dErrors.CodeInsufficientPayment:
		return http.StatusPaymentRequired
	case dErrors.CodeInvalidPool, dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodePoolDisabled, dErrors.CodeLimitExceeded, dErrors.CodeCapacityExceeded:
		return http.StatusConflict
	case dErrors.CodeAdmissionBusy:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
