package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/gophchat-server/internal/model"
)

var errRequestTooLarge = errors.New("request too large")

func handleError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, model.ErrEmailTaken):
		writeFailure(w, http.StatusConflict, "Email already in use.")
	case errors.Is(err, model.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "User not found")
	case errors.Is(err, model.ErrIncorrectPassword):
		writeFailure(w, http.StatusUnauthorized, "Incorrect password")
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidMessage):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &maxBytesErr), errors.Is(err, errRequestTooLarge):
		writeFailure(w, http.StatusRequestEntityTooLarge, "File exceeds maximum upload size")
	default:
		writeFailure(w, http.StatusInternalServerError, "internal server error")
	}
}
