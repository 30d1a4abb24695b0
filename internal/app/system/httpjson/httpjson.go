// Package httpjson holds the JSON response conventions for the API.
//
// Every error response is {"error": "<message>"} with a 4xx/5xx status;
// success payloads are written as-is. Business-rule conflicts (duplicate
// review, duplicate vote, already liked, already verified) use 409
// uniformly.
package httpjson

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// Respond writes v as a JSON body with the given status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the uniform {"error": msg} body.
func Error(w http.ResponseWriter, status int, msg string) {
	Respond(w, status, errorBody{Error: msg})
}

// Message writes the uniform {"message": msg} body.
func Message(w http.ResponseWriter, status int, msg string) {
	Respond(w, status, messageBody{Message: msg})
}

// Decode reads the request body into v; a false return means a 400 has
// already been written.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
