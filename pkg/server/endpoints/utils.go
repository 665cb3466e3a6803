package endpoints

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in JSON error bodies.
const (
	codeBadRequest   = "bad_request"
	codeInvalid      = "invalid_workflow"
	codeNotFound     = "not_found"
	codeUnavailable  = "unavailable"
	codeExecution    = "execution_failed"
	codeInternal     = "internal"
	maxWorkflowBytes = 4 << 20
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithError(w http.ResponseWriter, status int, code string, message string) {
	respondWithJSON(w, status, map[string]interface{}{"error": errorBody{Code: code, Message: message}})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
