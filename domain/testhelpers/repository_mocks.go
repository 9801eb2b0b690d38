package testhelpers

import (
	"context"

	"summa/domain/entities"
	"summa/domain/events"
	"summa/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, id string, patch *entities.UserPatch) (*entities.User, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

// MockUserAccountRepository is a mock implementation of UserAccountRepository
type MockUserAccountRepository struct {
	mock.Mock
}

func (m *MockUserAccountRepository) GetByID(ctx context.Context, id string) (*entities.UserAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserAccount), args.Error(1)
}

func (m *MockUserAccountRepository) Create(ctx context.Context, account *entities.UserAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockUserAccountRepository) Update(ctx context.Context, id string, patch *entities.UserAccountPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

// MockGameSessionRepository is a mock implementation of GameSessionRepository
type MockGameSessionRepository struct {
	mock.Mock
}

func (m *MockGameSessionRepository) GetByID(ctx context.Context, id string) (*entities.GameSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) Create(ctx context.Context, id string, patch *entities.GameSessionPatch) (*entities.GameSession, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) Update(ctx context.Context, id string, patch *entities.GameSessionPatch) (*entities.GameSession, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) ListOngoingForUser(ctx context.Context, userID string, limit int) ([]*entities.GameSession, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*entities.GameSession, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameSession), args.Error(1)
}

// MockGameSessionPlayerRepository is a mock implementation of GameSessionPlayerRepository
type MockGameSessionPlayerRepository struct {
	mock.Mock
}

func (m *MockGameSessionPlayerRepository) Get(ctx context.Context, gameSessionID, userID string) (*entities.GameSessionPlayer, error) {
	args := m.Called(ctx, gameSessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSessionPlayer), args.Error(1)
}

func (m *MockGameSessionPlayerRepository) ListBySession(ctx context.Context, gameSessionID string) ([]*entities.GameSessionPlayer, error) {
	args := m.Called(ctx, gameSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameSessionPlayer), args.Error(1)
}

func (m *MockGameSessionPlayerRepository) Upsert(ctx context.Context, player *entities.GameSessionPlayer) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockGameSessionPlayerRepository) Update(ctx context.Context, gameSessionID, userID string, patch *entities.GameSessionPlayerPatch) (*entities.GameSessionPlayer, error) {
	args := m.Called(ctx, gameSessionID, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSessionPlayer), args.Error(1)
}

func (m *MockGameSessionPlayerRepository) Delete(ctx context.Context, gameSessionID, userID string) error {
	args := m.Called(ctx, gameSessionID, userID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockRepositories hands out a fixed set of repository mocks
type MockRepositories struct {
	Users        *MockUserRepository
	UserAccounts *MockUserAccountRepository
	GameSessions *MockGameSessionRepository
	Players      *MockGameSessionPlayerRepository
}

// NewMockRepositories creates fresh mocks for every repository
func NewMockRepositories() *MockRepositories {
	return &MockRepositories{
		Users:        new(MockUserRepository),
		UserAccounts: new(MockUserAccountRepository),
		GameSessions: new(MockGameSessionRepository),
		Players:      new(MockGameSessionPlayerRepository),
	}
}

func (r *MockRepositories) UserRepository() interfaces.UserRepository { return r.Users }

func (r *MockRepositories) UserAccountRepository() interfaces.UserAccountRepository {
	return r.UserAccounts
}

func (r *MockRepositories) GameSessionRepository() interfaces.GameSessionRepository {
	return r.GameSessions
}

func (r *MockRepositories) GameSessionPlayerRepository() interfaces.GameSessionPlayerRepository {
	return r.Players
}

// AssertExpectations checks every repository mock
func (r *MockRepositories) AssertExpectations(t mock.TestingT) {
	r.Users.AssertExpectations(t)
	r.UserAccounts.AssertExpectations(t)
	r.GameSessions.AssertExpectations(t)
	r.Players.AssertExpectations(t)
}

// MockUnitOfWork is a mock implementation of UnitOfWork backed by repository mocks
type MockUnitOfWork struct {
	mock.Mock
	*MockRepositories
	Publisher *MockEventPublisher
}

// NewMockUnitOfWork creates a unit of work sharing repos
func NewMockUnitOfWork(repos *MockRepositories, publisher *MockEventPublisher) *MockUnitOfWork {
	return &MockUnitOfWork{MockRepositories: repos, Publisher: publisher}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher {
	return m.Publisher
}

// AssertExpectations checks the unit of work itself, not the repositories
func (m *MockUnitOfWork) AssertExpectations(t mock.TestingT) bool {
	return m.Mock.AssertExpectations(t)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
	DirectRepos     *MockRepositories
	DirectPublisher *MockEventPublisher
}

func (m *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	args := m.Called()
	return args.Get(0).(interfaces.UnitOfWork)
}

func (m *MockUnitOfWorkFactory) Direct() interfaces.Repositories {
	return m.DirectRepos
}

func (m *MockUnitOfWorkFactory) Publisher() interfaces.EventPublisher {
	return m.DirectPublisher
}
