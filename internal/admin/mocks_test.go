package admin

import (
	"context"

	"support-bot/internal/database/models"
	"support-bot/internal/gateway"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

// MockGateway is a mock implementing the gateway.Gateway interface
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SendToUser(ctx context.Context, userID int64, text string, format gateway.Format) (gateway.MessageRef, error) {
	args := m.Called(ctx, userID, text, format)
	return args.Get(0).(gateway.MessageRef), args.Error(1)
}

func (m *MockGateway) SendToChannel(ctx context.Context, chatID int64, text string, format gateway.Format) (gateway.MessageRef, error) {
	args := m.Called(ctx, chatID, text, format)
	return args.Get(0).(gateway.MessageRef), args.Error(1)
}

func (m *MockGateway) EditMessage(ctx context.Context, chatID int64, messageID string, text string, format gateway.Format) error {
	args := m.Called(ctx, chatID, messageID, text, format)
	return args.Error(0)
}

func (m *MockGateway) SendMenu(ctx context.Context, userID int64, text string, format gateway.Format, rows [][]gateway.Button) (gateway.MessageRef, error) {
	args := m.Called(ctx, userID, text, format, rows)
	return args.Get(0).(gateway.MessageRef), args.Error(1)
}

func (m *MockGateway) EditMenu(ctx context.Context, chatID int64, messageID string, text string, format gateway.Format, rows [][]gateway.Button) error {
	args := m.Called(ctx, chatID, messageID, text, format, rows)
	return args.Error(0)
}

func (m *MockGateway) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	args := m.Called(ctx, callbackID, text, alert)
	return args.Error(0)
}

func (m *MockGateway) SendFile(ctx context.Context, chatID int64, path string, caption string) (gateway.MessageRef, error) {
	args := m.Called(ctx, chatID, path, caption)
	return args.Get(0).(gateway.MessageRef), args.Error(1)
}

// MockUserRepository is a mock for database.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, userID int64, name string) (*models.User, error) {
	args := m.Called(ctx, userID, name)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) SetPhone(ctx context.Context, userID int64, phone string) error {
	args := m.Called(ctx, userID, phone)
	return args.Error(0)
}

func (m *MockUserRepository) Get(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) All(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) AllIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]int64); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAdminChecker is a mock implementing auth.AdminCheckerInterface
type MockAdminChecker struct {
	mock.Mock
}

func (m *MockAdminChecker) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminChecker) AdminIDs() []int64 {
	args := m.Called()
	if ids, ok := args.Get(0).([]int64); ok {
		return ids
	}
	return nil
}

// MockRunner is a mock implementing BroadcastRunner. Run signals done so
// tests can wait for the detached goroutine.
type MockRunner struct {
	mock.Mock
	done chan struct{}
}

func NewMockRunner() *MockRunner {
	return &MockRunner{done: make(chan struct{}, 1)}
}

func (m *MockRunner) Run(ctx context.Context, initiatorID int64, text string, recipients []int64) {
	m.Called(ctx, initiatorID, text, recipients)
	m.done <- struct{}{}
}
