package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gophchat-server/internal/model"
)

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	if fn, ok := args.Get(0).(func(context.Context, model.User) model.User); ok {
		return fn(ctx, user), args.Error(1)
	}
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) ListExcept(ctx context.Context, id string) ([]model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]model.User), args.Error(1)
}

// MockMessageStore mocks the MessageStore interface
type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) Create(ctx context.Context, message model.Message) (model.Message, error) {
	args := m.Called(ctx, message)
	return args.Get(0).(model.Message), args.Error(1)
}

func (m *MockMessageStore) GetConversation(ctx context.Context, a, b string) ([]model.Message, error) {
	args := m.Called(ctx, a, b)
	return args.Get(0).([]model.Message), args.Error(1)
}

// MockAttachmentStore mocks the AttachmentStore interface
type MockAttachmentStore struct {
	mock.Mock
}

func (m *MockAttachmentStore) Create(ctx context.Context, attachment model.Attachment) (model.Attachment, error) {
	args := m.Called(ctx, attachment)
	return args.Get(0).(model.Attachment), args.Error(1)
}

func (m *MockAttachmentStore) GetByID(ctx context.Context, id uuid.UUID) (model.Attachment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Attachment), args.Error(1)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockTokenManager mocks the TokenManager interface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) ParseAccessToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
