package infrastructure

import (
	"summa/domain/interfaces"
	busevents "summa/events"
)

// RepositoryFactory is what the storage layer provides to build units of work
type RepositoryFactory interface {
	CreateWithPublisher(publisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork
	Direct() interfaces.Repositories
}

// UnitOfWorkFactory implements interfaces.UnitOfWorkFactory. Every unit of
// work buffers its events and hands them to the event publisher on commit.
type UnitOfWorkFactory struct {
	repoFactory    RepositoryFactory
	eventPublisher interfaces.EventPublisher
	direct         interfaces.Repositories
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory. A non-nil users
// repository replaces the direct user repository, typically a cache.
func NewUnitOfWorkFactory(repoFactory RepositoryFactory, eventPublisher interfaces.EventPublisher, users interfaces.UserRepository) *UnitOfWorkFactory {
	direct := repoFactory.Direct()
	if users != nil {
		direct = &overlayRepositories{Repositories: direct, users: users}
	}
	return &UnitOfWorkFactory{
		repoFactory:    repoFactory,
		eventPublisher: eventPublisher,
		direct:         direct,
	}
}

// Create creates a new UnitOfWork with its own transactional event buffer
func (f *UnitOfWorkFactory) Create() interfaces.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(busevents.NewTransactionalBus(f.eventPublisher))
}

// Direct returns repositories that run each statement on its own
func (f *UnitOfWorkFactory) Direct() interfaces.Repositories {
	return f.direct
}

// Publisher returns the publisher for writes made outside a unit of work
func (f *UnitOfWorkFactory) Publisher() interfaces.EventPublisher {
	return f.eventPublisher
}

type overlayRepositories struct {
	interfaces.Repositories
	users interfaces.UserRepository
}

func (o *overlayRepositories) UserRepository() interfaces.UserRepository {
	return o.users
}
