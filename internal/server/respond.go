package server

import (
	"encoding/json"
	"errors"
	"net/http"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a SiftError code to its HTTP status; anything else
// reports as an internal error without leaking detail.
func writeError(w http.ResponseWriter, err error) {
	var se *sifterr.SiftError
	if errors.As(err, &se) {
		writeJSON(w, sifterr.HTTPStatus(se.Code), errorBody{Error: errorDetail{
			Code:       se.Code,
			Message:    se.Message,
			Suggestion: se.Suggestion,
		}})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
		Code:    sifterr.ErrCodeInternal,
		Message: "internal error",
	}})
}
