package repository

import (
	"context"
	"errors"
	"fmt"

	"summa/database"
	"summa/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	userRepo               interfaces.UserRepository
	userAccountRepo        interfaces.UserAccountRepository
	gameSessionRepo        interfaces.GameSessionRepository
	playerRepo             interfaces.GameSessionPlayerRepository
}

// UnitOfWorkFactory builds units of work and pool-backed repositories
type UnitOfWorkFactory struct {
	db     *database.DB
	direct *directRepositories
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db: db,
		direct: &directRepositories{
			users:        NewUserRepository(db),
			userAccounts: NewUserAccountRepository(db),
			gameSessions: NewGameSessionRepository(db),
			players:      NewGameSessionPlayerRepository(db),
		},
	}
}

// CreateWithPublisher creates a UnitOfWork whose events go through transactionalPublisher
func (f *UnitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Direct returns repositories that run each statement on the pool
func (f *UnitOfWorkFactory) Direct() interfaces.Repositories {
	return f.direct
}

type directRepositories struct {
	users        *UserRepository
	userAccounts *UserAccountRepository
	gameSessions *GameSessionRepository
	players      *GameSessionPlayerRepository
}

func (d *directRepositories) UserRepository() interfaces.UserRepository { return d.users }

func (d *directRepositories) UserAccountRepository() interfaces.UserAccountRepository {
	return d.userAccounts
}

func (d *directRepositories) GameSessionRepository() interfaces.GameSessionRepository {
	return d.gameSessions
}

func (d *directRepositories) GameSessionPlayerRepository() interfaces.GameSessionPlayerRepository {
	return d.players
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = newUserRepositoryWithTx(tx)
	u.userAccountRepo = newUserAccountRepositoryWithTx(tx)
	u.gameSessionRepo = newGameSessionRepositoryWithTx(tx)
	u.playerRepo = newGameSessionPlayerRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction, then releases pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		// Writes are durable at this point; event delivery is best effort
		_ = u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and drops pending events
func (u *unitOfWork) Rollback() error {
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() interfaces.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// UserAccountRepository returns the account repository for this unit of work
func (u *unitOfWork) UserAccountRepository() interfaces.UserAccountRepository {
	if u.userAccountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userAccountRepo
}

// GameSessionRepository returns the game session repository for this unit of work
func (u *unitOfWork) GameSessionRepository() interfaces.GameSessionRepository {
	if u.gameSessionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.gameSessionRepo
}

// GameSessionPlayerRepository returns the player repository for this unit of work
func (u *unitOfWork) GameSessionPlayerRepository() interfaces.GameSessionPlayerRepository {
	if u.playerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.playerRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
