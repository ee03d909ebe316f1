package utils

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope every handler writes: a human message
// plus an optional payload.
type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Message: message, Data: data})
}

// WriteError writes the error envelope. Client errors carry the detail
// back to the caller; server errors keep it out of the response, the
// handler logs it instead.
func WriteError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := APIResponse{Message: message}
	if err != nil && status < http.StatusInternalServerError {
		resp.Error = err.Error()
	}
	json.NewEncoder(w).Encode(resp)
}
