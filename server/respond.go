package server

import (
	"encoding/json"
	"net/http"
)

// codeResponse mirrors the login UI's {code, message} payload.
type codeResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeCode(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, codeResponse{Code: status, Message: message})
}
