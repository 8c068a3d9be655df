package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/mirefield/gatherspace/internal/errors"
	"github.com/mirefield/gatherspace/internal/services/gathering/app"
)

// errorResponse is the JSON shape of every failed request.
type errorResponse struct {
	Code            string   `json:"code"`
	Message         string   `json:"message"`
	Errors          []string `json:"errors,omitempty"`
	IncompleteItems []string `json:"incomplete_items,omitempty"`
}

// WriteJSON writes a JSON response with the provided status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return fmt.Errorf("response writer is required")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// WriteError writes a JSON error response using typed status mapping.
//
// Validation failures carry their per-field messages, and a blocked launch
// carries the incomplete setup item keys, so clients need no second request
// to learn what to fix.
func WriteError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	response := errorResponse{
		Code:    string(apperrors.CodeOf(err)),
		Message: err.Error(),
	}
	var validation app.ValidationError
	if errors.As(err, &validation) {
		response.Errors = validation.Errors
	}
	var incomplete app.IncompleteSetupError
	if errors.As(err, &incomplete) {
		for _, item := range incomplete.Items {
			response.IncompleteItems = append(response.IncompleteItems, string(item))
		}
	}
	_ = WriteJSON(w, apperrors.HTTPStatus(err), response)
}
