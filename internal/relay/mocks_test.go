package relay

import (
	"context"
	"time"

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

// MockMessageRepository is a mock for database.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) SaveUserMessage(ctx context.Context, userID int64, text string) (*models.Message, error) {
	args := m.Called(ctx, userID, text)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) SaveOperatorMessage(ctx context.Context, userID int64, text, operatorName string) (*models.Message, error) {
	args := m.Called(ctx, userID, text, operatorName)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) UserMessages(ctx context.Context, userID int64, limit int64) ([]models.Message, error) {
	args := m.Called(ctx, userID, limit)
	if msgs, ok := args.Get(0).([]models.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) LastUserMessage(ctx context.Context, userID int64) (*models.Message, error) {
	args := m.Called(ctx, userID)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) CountOperatorRepliesAfter(ctx context.Context, userID int64, after time.Time, afterSeq int64) (int64, error) {
	args := m.Called(ctx, userID, after, afterSeq)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) CountOperatorReplies(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) AllMessages(ctx context.Context) ([]models.Message, error) {
	args := m.Called(ctx)
	if msgs, ok := args.Get(0).([]models.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMappingRepository is a mock for database.MappingRepository
type MockMappingRepository struct {
	mock.Mock
}

func (m *MockMappingRepository) Save(ctx context.Context, messageID string, userID int64, userName, questionText string) (*models.MessageMapping, error) {
	args := m.Called(ctx, messageID, userID, userName, questionText)
	if mapping, ok := args.Get(0).(*models.MessageMapping); ok {
		return mapping, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMappingRepository) Get(ctx context.Context, messageID string) (*models.MessageMapping, error) {
	args := m.Called(ctx, messageID)
	if mapping, ok := args.Get(0).(*models.MessageMapping); ok {
		return mapping, args.Error(1)
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

// MockAdminFlow is a mock implementing AdminFlow
type MockAdminFlow struct {
	mock.Mock
}

func (m *MockAdminFlow) AwaitingText(adminID int64) bool {
	args := m.Called(adminID)
	return args.Bool(0)
}

func (m *MockAdminFlow) HandleText(ctx context.Context, adminID int64, text string) error {
	args := m.Called(ctx, adminID, text)
	return args.Error(0)
}

func (m *MockAdminFlow) SendMainMenu(ctx context.Context, adminID int64) error {
	args := m.Called(ctx, adminID)
	return args.Error(0)
}

// MockExporter is a mock implementing Exporter
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) ExportAll(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
