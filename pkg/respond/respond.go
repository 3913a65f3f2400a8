package respond

import (
	"encoding/json"
	"net/http"
)

// Envelope - общий формат ответа API
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, r *http.Request, code int, message string, data interface{}) {
	JSON(w, r, code, Envelope{Success: true, Message: message, Data: data})
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string, details ...string) {
	JSON(w, r, code, Envelope{Success: false, Message: message, Errors: details})
}
