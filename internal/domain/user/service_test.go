package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, email, passwordHash string) (int, error) {
	args := m.Called(ctx, email, passwordHash)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, NewCredentialsValidator(), slog.Default())
}

func TestService_Register(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("Create", mock.Anything, "student@example.com", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("studying1")) == nil
	})).Return(123, nil)

	userID, err := service.Register(context.Background(), "  Student@Example.com ", "studying1")
	assert.NoError(t, err)
	assert.Equal(t, 123, userID)

	mockRepo.AssertExpectations(t)
}

func TestService_Register_Invalid(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	_, err := service.Register(context.Background(), "student@example.com", "short")
	assert.ErrorIs(t, err, ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Register_Exists(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("Create", mock.Anything, "a@b.co", mock.AnythingOfType("string")).Return(0, ErrExists)

	_, err := service.Register(context.Background(), "a@b.co", "studying1")
	assert.ErrorIs(t, err, ErrExists)
}

func TestService_Register_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("Create", mock.Anything, "a@b.co", mock.AnythingOfType("string")).Return(0, errors.New("database error"))

	_, err := service.Register(context.Background(), "a@b.co", "studying1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("studying1"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := User{ID: 5, Email: "a@b.co", Password: string(hash)}

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(m *MockRepository)
		wantErr  error
	}{
		{
			name:     "success",
			email:    "A@B.co",
			password: "studying1",
			setup: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.co").Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "a@b.co",
			password: "wrong1234",
			setup: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.co").Return(stored, nil)
			},
			wantErr: ErrInvalidAuth,
		},
		{
			name:     "unknown user",
			email:    "x@b.co",
			password: "studying1",
			setup: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "x@b.co").Return(User{}, ErrNotFound)
			},
			wantErr: ErrInvalidAuth,
		},
		{
			name:     "malformed email",
			email:    "nope",
			password: "studying1",
			setup:    func(m *MockRepository) {},
			wantErr:  ErrInvalidAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setup(mockRepo)
			service := newTestService(mockRepo)

			u, err := service.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5, u.ID)
		})
	}
}
