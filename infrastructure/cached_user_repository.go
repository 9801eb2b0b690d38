package infrastructure

import (
	"context"
	"time"

	"summa/domain/entities"
	"summa/domain/events"
	"summa/domain/interfaces"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

const (
	userIDKeyPrefix       = "user_id_"
	userUsernameKeyPrefix = "user_username_"
)

// CachedUserRepository serves user lookups from memory. Entries are dropped on
// writes through the repository and on UserUpdatedEvent from any instance.
type CachedUserRepository struct {
	inner interfaces.UserRepository
	cache *cache.Cache
}

// NewCachedUserRepository wraps inner with a cache whose entries live for ttl
func NewCachedUserRepository(inner interfaces.UserRepository, ttl time.Duration) *CachedUserRepository {
	return &CachedUserRepository{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	if user, ok := r.lookup(userIDKeyPrefix + id); ok {
		return user, nil
	}

	user, err := r.inner.GetByID(ctx, id)
	if err != nil || user == nil {
		return user, err
	}
	r.store(user)
	return user, nil
}

func (r *CachedUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	if user, ok := r.lookup(userUsernameKeyPrefix + username); ok {
		return user, nil
	}

	user, err := r.inner.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return user, err
	}
	r.store(user)
	return user, nil
}

func (r *CachedUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	return r.inner.GetByIDs(ctx, ids)
}

func (r *CachedUserRepository) Create(ctx context.Context, user *entities.User) error {
	if err := r.inner.Create(ctx, user); err != nil {
		return err
	}
	r.Invalidate(user.ID)
	return nil
}

func (r *CachedUserRepository) Update(ctx context.Context, id string, patch *entities.UserPatch) (*entities.User, error) {
	user, err := r.inner.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.Invalidate(id)
	return user, nil
}

// Invalidate drops every entry of the user, including the one under a
// username it no longer holds
func (r *CachedUserRepository) Invalidate(userID string) {
	r.cache.Delete(userIDKeyPrefix + userID)
	for key, item := range r.cache.Items() {
		if user, ok := item.Object.(entities.User); ok && user.ID == userID {
			r.cache.Delete(key)
		}
	}
	log.WithField("userID", userID).Debug("Cache cleared for user")
}

// HandleEvent invalidates on profile changes; it is registered on the local bus
func (r *CachedUserRepository) HandleEvent(ctx context.Context, event events.Event) {
	if e, ok := event.(events.UserUpdatedEvent); ok {
		r.Invalidate(e.UserID)
	}
}

// lookup returns a copy so callers cannot mutate cached entries
func (r *CachedUserRepository) lookup(key string) (*entities.User, bool) {
	data, found := r.cache.Get(key)
	if !found {
		return nil, false
	}
	user, ok := data.(entities.User)
	if !ok {
		return nil, false
	}
	return &user, true
}

func (r *CachedUserRepository) store(user *entities.User) {
	r.cache.SetDefault(userIDKeyPrefix+user.ID, *user)
	r.cache.SetDefault(userUsernameKeyPrefix+user.Username, *user)
}
