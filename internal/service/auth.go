package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/gophchat-server/internal/logger"
	"github.com/dtroode/gophchat-server/internal/model"
)

// Auth creates accounts and verifies logins.
type Auth struct {
	userStore    model.UserStore
	tokenManager model.TokenManager
	validate     *validator.Validate
	hashCost     int
	logger       *logger.Logger
}

func NewAuth(userStore model.UserStore, tokenManager model.TokenManager, logger *logger.Logger) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenManager: tokenManager,
		validate:     validator.New(),
		hashCost:     bcrypt.DefaultCost,
		logger:       logger,
	}
}

// Signup creates a new account. It returns model.ErrEmailTaken when the email is already registered.
func (a *Auth) Signup(ctx context.Context, params model.SignupParams) (model.UserView, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if err := a.validate.Struct(params); err != nil {
		return model.UserView{}, fmt.Errorf("%w: %s", model.ErrInvalidInput, err.Error())
	}

	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	_, err := a.userStore.GetByEmail(ctx, params.Email)
	if err == nil {
		a.logger.Info("Auth service: user already exists",
			"email", params.Email)
		return model.UserView{}, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.UserView{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), a.hashCost)
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.UserView{}, err
		}
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return model.UserView{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registration completed successfully",
		"email", params.Email,
		"user_id", user.ID)

	return user.View(), nil
}

// Login verifies credentials and issues an access token.
func (a *Auth) Login(ctx context.Context, params model.LoginParams) (model.Session, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if err := a.validate.Struct(params); err != nil {
		return model.Session{}, fmt.Errorf("%w: %s", model.ErrInvalidInput, err.Error())
	}

	user, err := a.userStore.GetByEmail(ctx, params.Email)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, err
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(params.Password))
	if err != nil {
		a.logger.Info("Auth service: login rejected",
			"email", params.Email)
		return model.Session{}, model.ErrIncorrectPassword
	}

	accessToken, err := a.tokenManager.GenerateAccessToken(user.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login completed successfully",
		"user_id", user.ID)

	return model.Session{
		User:        user.View(),
		AccessToken: accessToken,
	}, nil
}
