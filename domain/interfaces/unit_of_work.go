package interfaces

import (
	"context"

	"summa/domain/events"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding transaction ends
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}

// Repositories groups the repositories of one storage scope
type Repositories interface {
	UserRepository() UserRepository
	UserAccountRepository() UserAccountRepository
	GameSessionRepository() GameSessionRepository
	GameSessionPlayerRepository() GameSessionPlayerRepository
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	Repositories

	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases pending events
	Commit() error

	// Rollback rolls back the transaction and drops pending events
	Rollback() error

	// EventBus returns the publisher whose events are released on commit
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork
	Create() UnitOfWork

	// Direct returns repositories that run each statement on its own
	Direct() Repositories

	// Publisher returns the publisher for writes made outside a unit of work
	Publisher() EventPublisher
}
