package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dtroode/gophchat-server/internal/logger"
	"github.com/dtroode/gophchat-server/internal/model"
)

// AuthService defines account creation and login operations.
type AuthService interface {
	Signup(ctx context.Context, params model.SignupParams) (model.UserView, error)
	Login(ctx context.Context, params model.LoginParams) (model.Session, error)
}

// Auth handles account endpoints.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

// Signup creates an account.
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var params model.SignupParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		handleError(w, fmt.Errorf("%w: malformed body", model.ErrInvalidInput))
		return
	}

	user, err := h.authService.Signup(r.Context(), params)
	if err != nil {
		h.logger.Info("Auth handler: signup failed",
			"email", params.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeData(w, http.StatusOK, user, "User created successfully")
}

// Login verifies credentials and returns the user with an access token.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var params model.LoginParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		handleError(w, fmt.Errorf("%w: malformed body", model.ErrInvalidInput))
		return
	}

	session, err := h.authService.Login(r.Context(), params)
	if err != nil {
		h.logger.Info("Auth handler: login failed",
			"email", params.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeData(w, http.StatusOK, session, "Logged in successfully")
}
