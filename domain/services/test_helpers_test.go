package services

import (
	"context"
	"testing"

	"summa/domain/entities"
	"summa/domain/testhelpers"
)

type fixture struct {
	factory   *testhelpers.MockUnitOfWorkFactory
	direct    *testhelpers.MockRepositories
	publisher *testhelpers.MockEventPublisher
	uow       *testhelpers.MockUnitOfWork
	txRepos   *testhelpers.MockRepositories
	txBus     *testhelpers.MockEventPublisher
}

func newFixture() *fixture {
	f := &fixture{
		direct:    testhelpers.NewMockRepositories(),
		publisher: new(testhelpers.MockEventPublisher),
		txRepos:   testhelpers.NewMockRepositories(),
		txBus:     new(testhelpers.MockEventPublisher),
	}
	f.uow = testhelpers.NewMockUnitOfWork(f.txRepos, f.txBus)
	f.factory = &testhelpers.MockUnitOfWorkFactory{DirectRepos: f.direct, DirectPublisher: f.publisher}
	return f
}

// expectTransaction wires a unit of work that begins and is rolled back by defer
func (f *fixture) expectTransaction(ctx context.Context, commit bool) {
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)
	if commit {
		f.uow.On("Commit").Return(nil)
	}
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.factory.AssertExpectations(t)
	f.direct.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.txRepos.AssertExpectations(t)
	f.txBus.AssertExpectations(t)
}

func account(id string, admin bool) *entities.UserAccount {
	return &entities.UserAccount{
		User:    entities.User{ID: id, Username: id, Name: id},
		Email:   id + "@example.com",
		IsAdmin: admin,
	}
}
