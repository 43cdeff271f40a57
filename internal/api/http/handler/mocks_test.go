package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gophchat-server/internal/model"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, params model.SignupParams) (model.UserView, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.UserView), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, params model.LoginParams) (model.Session, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Session), args.Error(1)
}

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) SubmitWithAttachment(ctx context.Context, params model.SubmitParams, data []byte, fileName string) (model.ResolvedMessage, error) {
	args := m.Called(ctx, params, data, fileName)
	return args.Get(0).(model.ResolvedMessage), args.Error(1)
}
