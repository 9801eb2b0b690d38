package testhelpers

import (
	"context"

	"summa/domain/entities"
	"summa/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

var (
	_ interfaces.GameSessionService = (*MockGameSessionService)(nil)
	_ interfaces.PlayerService      = (*MockPlayerService)(nil)
	_ interfaces.UserService        = (*MockUserService)(nil)
)

// MockGameSessionService is a mock implementation of GameSessionService
type MockGameSessionService struct {
	mock.Mock
}

func (m *MockGameSessionService) GetByID(ctx context.Context, id string) (*entities.GameSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionService) Create(ctx context.Context, actor *entities.UserAccount, input *entities.GameSessionInput) (*entities.GameSession, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionService) Update(ctx context.Context, actor *entities.UserAccount, id string, patch *entities.GameSessionPatch) (*entities.GameSession, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionService) End(ctx context.Context, actor *entities.UserAccount, id string, at entities.Timestamp) (*entities.GameSession, error) {
	args := m.Called(ctx, actor, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionService) ListOngoing(ctx context.Context, userID string) ([]*entities.GameSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionService) ListForUser(ctx context.Context, userID string, limit int) ([]*entities.GameSession, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameSession), args.Error(1)
}

// MockPlayerService is a mock implementation of PlayerService
type MockPlayerService struct {
	mock.Mock
}

func (m *MockPlayerService) List(ctx context.Context, gameSessionID string) ([]*entities.GameSessionPlayer, error) {
	args := m.Called(ctx, gameSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameSessionPlayer), args.Error(1)
}

func (m *MockPlayerService) AddPlayer(ctx context.Context, actor *entities.UserAccount, gameSessionID, username string) (*entities.GameSessionPlayer, error) {
	args := m.Called(ctx, actor, gameSessionID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSessionPlayer), args.Error(1)
}

func (m *MockPlayerService) RemovePlayer(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string) error {
	args := m.Called(ctx, actor, gameSessionID, userID)
	return args.Error(0)
}

func (m *MockPlayerService) UpdateStackBb(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, stackBb float64) (*entities.GameSessionPlayer, error) {
	args := m.Called(ctx, actor, gameSessionID, userID, stackBb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSessionPlayer), args.Error(1)
}

func (m *MockPlayerService) UpdateBuyins(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, buyins int) (*entities.GameSessionPlayer, error) {
	args := m.Called(ctx, actor, gameSessionID, userID, buyins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSessionPlayer), args.Error(1)
}

func (m *MockPlayerService) Update(ctx context.Context, actor *entities.UserAccount, gameSessionID, userID string, patch *entities.GameSessionPlayerPatch) (*entities.GameSessionPlayer, error) {
	args := m.Called(ctx, actor, gameSessionID, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSessionPlayer), args.Error(1)
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserService) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserService) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserService) GetAccount(ctx context.Context, id string) (*entities.UserAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserAccount), args.Error(1)
}

func (m *MockUserService) EnsureAccount(ctx context.Context, seed *entities.NewAccount) (*entities.UserAccount, bool, error) {
	args := m.Called(ctx, seed)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.UserAccount), args.Bool(1), args.Error(2)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id string, patch *entities.UserPatch) (*entities.User, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}
