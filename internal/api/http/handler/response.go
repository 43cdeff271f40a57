package handler

import (
	"encoding/json"
	"net/http"
)

// envelope is the response shape of the account endpoints.
type envelope struct {
	Data  any    `json:"data"`
	Error bool   `json:"error"`
	Msg   string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any, msg string) {
	writeJSON(w, status, envelope{Data: data, Error: false, Msg: msg})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Data: nil, Error: true, Msg: msg})
}
