package rest

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/logger"
	"max.ks1230/expenses-api/internal/model/customerr"
)

const internalErrorDetail = "internal error"

type errorBody struct {
	Detail string `json:"detail"`
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{customerr.ErrDuplicateEmail, http.StatusBadRequest},
	{customerr.ErrInvalidCredentials, http.StatusUnauthorized},
	{customerr.ErrMissingCredential, http.StatusUnauthorized},
	{customerr.ErrExpiredToken, http.StatusUnauthorized},
	{customerr.ErrInvalidToken, http.StatusUnauthorized},
	{customerr.ErrMissingRangeBounds, http.StatusBadRequest},
	{customerr.ErrInvalidID, http.StatusBadRequest},
	{customerr.ErrNotFound, http.StatusNotFound},
	{customerr.ErrNoFieldsToUpdate, http.StatusBadRequest},
}

// statusOf maps an error onto the response status and the detail shown to the
// client. Unknown errors never leak their message.
func statusOf(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error()
		}
	}
	var validation *customerr.ValidationError
	if errors.As(err, &validation) {
		return http.StatusUnprocessableEntity, validation.Error()
	}
	return http.StatusInternalServerError, internalErrorDetail
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to write response", zap.Error(err))
	}
}
