package repository

import (
	"context"
	"testing"
	"time"

	"summa/domain/events"
	busevents "summa/events"
	"summa/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	published []events.Event
}

func (p *capturePublisher) Publish(event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func TestUnitOfWork(t *testing.T) {
	testutil.SkipIfShort(t)
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	host := testutil.CreateTestUser("host")
	require.NoError(t, factory.Direct().UserRepository().Create(ctx, host))

	t.Run("commit persists and flushes events", func(t *testing.T) {
		publisher := &capturePublisher{}
		uow := factory.CreateWithPublisher(busevents.NewTransactionalBus(publisher))
		require.NoError(t, uow.Begin(ctx))

		id := uuid.NewString()
		_, err := uow.GameSessionRepository().Create(ctx, id,
			testutil.CreateTestGameSessionPatch("Committed", host.ID, time.Now()))
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.GameSessionCreatedEvent{GameSessionID: id, CreatorID: host.ID}))
		assert.Empty(t, publisher.published)

		require.NoError(t, uow.Commit())
		assert.Len(t, publisher.published, 1)

		session, err := factory.Direct().GameSessionRepository().GetByID(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, session)
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		publisher := &capturePublisher{}
		uow := factory.CreateWithPublisher(busevents.NewTransactionalBus(publisher))
		require.NoError(t, uow.Begin(ctx))

		id := uuid.NewString()
		_, err := uow.GameSessionRepository().Create(ctx, id,
			testutil.CreateTestGameSessionPatch("Rolled back", host.ID, time.Now()))
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.GameSessionCreatedEvent{GameSessionID: id}))

		require.NoError(t, uow.Rollback())
		assert.Empty(t, publisher.published)

		session, err := factory.Direct().GameSessionRepository().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("begin twice fails", func(t *testing.T) {
		uow := factory.CreateWithPublisher(busevents.NewTransactionalBus(&capturePublisher{}))
		require.NoError(t, uow.Begin(ctx))
		defer func() { _ = uow.Rollback() }()

		assert.Error(t, uow.Begin(ctx))
	})

	t.Run("repositories require begin", func(t *testing.T) {
		uow := factory.CreateWithPublisher(busevents.NewTransactionalBus(&capturePublisher{}))
		assert.Panics(t, func() { uow.GameSessionPlayerRepository() })
	})

	t.Run("commit without begin fails", func(t *testing.T) {
		uow := factory.CreateWithPublisher(nil)
		assert.Error(t, uow.Commit())
		assert.NoError(t, uow.Rollback())
	})
}
