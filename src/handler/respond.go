package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/controller"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeDomainError maps the controller error taxonomy onto HTTP statuses.
// Every error carries its human-readable reason through to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, controller.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, controller.ErrNotOpen):
		status = http.StatusConflict
	case errors.Is(err, controller.ErrInvalidPayload),
		errors.Is(err, controller.ErrInvalidPremium),
		errors.Is(err, controller.ErrPremiumLooksLikeUSD),
		errors.Is(err, controller.ErrValidationFailed):
		status = http.StatusBadRequest
	case errors.Is(err, controller.ErrLedgerWriteFailed):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
