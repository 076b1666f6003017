package utils

import (
	"encoding/json"
	"errors"
	"net/http"
)

type messageBody struct {
	Message string `json:"message"`
}

// statusCarrier is implemented by errors that know which HTTP status they
// should surface as.
type statusCarrier interface {
	Status() int
}

// RespondJSON writes the payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// RespondError emits the {message} body every failed request gets. Status
// comes from the error when it carries one, otherwise 500.
func RespondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var carrier statusCarrier
	if errors.As(err, &carrier) {
		status = carrier.Status()
	}
	RespondJSON(w, status, messageBody{Message: err.Error()})
}

// RespondMessage writes a bare {message} body with the given status.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, messageBody{Message: message})
}
