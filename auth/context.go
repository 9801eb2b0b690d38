package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"summa/domain/entities"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// State is the sign-in state of a Context
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is the observable state of a Context
type Snapshot struct {
	State  State
	Myself *entities.UserAccount
	Err    error
}

// TokenMirror is the server endpoint pair that holds a copy of the token as a cookie
type TokenMirror interface {
	Push(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Context tracks who is signed in. It verifies tokens, provisions the account
// on first sign-in, keeps the token mirror current and refreshes the token on
// a schedule while signed in.
type Context struct {
	authenticator   *Authenticator
	mirror          TokenMirror
	refreshInterval time.Duration
	scheduler       gocron.Scheduler

	mu         sync.Mutex
	state      State
	identity   *Identity
	myself     *entities.UserAccount
	err        error
	source     TokenSource
	refreshJob gocron.Job
	observers  map[int]func(Snapshot)
	nextID     int
}

// NewContext creates a signed-out context. mirror may be nil when no server
// keeps a cookie copy.
func NewContext(authenticator *Authenticator, mirror TokenMirror, refreshInterval time.Duration) (*Context, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create token refresh scheduler: %w", err)
	}
	scheduler.Start()

	return &Context{
		authenticator:   authenticator,
		mirror:          mirror,
		refreshInterval: refreshInterval,
		scheduler:       scheduler,
		observers:       make(map[int]func(Snapshot)),
	}, nil
}

// SignIn verifies a token from source and signs its holder in. The source is
// polled again every refresh interval until sign-out.
func (c *Context) SignIn(ctx context.Context, source TokenSource) error {
	c.transition(Authenticating, nil, nil, nil)

	token, err := source.Token(ctx)
	if err != nil {
		c.stopRefresh()
		c.transition(Unauthenticated, nil, nil, err)
		return fmt.Errorf("failed to obtain token: %w", err)
	}

	identity, account, err := c.authenticator.FromToken(ctx, token)
	if err != nil {
		c.stopRefresh()
		c.transition(Unauthenticated, nil, nil, err)
		return err
	}

	c.pushMirror(ctx, token)

	c.mu.Lock()
	c.source = source
	c.mu.Unlock()

	if err := c.scheduleRefresh(); err != nil {
		log.WithError(err).Warn("Token refresh not scheduled")
	}

	c.transition(Authenticated, identity, account, nil)
	log.WithField("userId", account.ID).Info("Signed in")
	return nil
}

// Restore signs in from an existing session cookie. No refresh is scheduled
// since no token source is known.
func (c *Context) Restore(ctx context.Context, cookie string) error {
	c.stopRefresh()
	c.transition(Authenticating, nil, nil, nil)

	identity, account, err := c.authenticator.FromCookie(ctx, cookie)
	if err != nil {
		c.transition(Unauthenticated, nil, nil, err)
		return err
	}

	c.transition(Authenticated, identity, account, nil)
	log.WithField("userId", account.ID).Info("Restored session from cookie")
	return nil
}

// SignOut forgets the identity, stops refreshing and clears the mirror
func (c *Context) SignOut(ctx context.Context) error {
	c.stopRefresh()
	c.transition(Unauthenticated, nil, nil, nil)

	if c.mirror != nil {
		if err := c.mirror.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete token mirror: %w", err)
		}
	}
	return nil
}

// Refresh fetches a new token, re-verifies it and re-pushes the mirror.
// A failing refresh keeps the current identity and records the error.
func (c *Context) Refresh(ctx context.Context) error {
	c.mu.Lock()
	source := c.source
	state := c.state
	c.mu.Unlock()

	if source == nil || state != Authenticated {
		return ErrUnauthenticated
	}

	token, err := source.Token(ctx)
	if err == nil {
		_, err = c.authenticator.VerifyToken(ctx, token)
	}
	if err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		c.notify()
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	c.pushMirror(ctx, token)
	log.Debug("Refreshed bearer token")
	return nil
}

// Snapshot returns the current state
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Myself returns the signed-in account
func (c *Context) Myself() (*entities.UserAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Authenticated {
		return nil, ErrUnauthenticated
	}
	return c.myself, nil
}

// OnChange registers fn to run after every state change and returns a func
// that unregisters it
func (c *Context) OnChange(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Close stops the refresh scheduler
func (c *Context) Close() error {
	return c.scheduler.Shutdown()
}

func (c *Context) scheduleRefresh() error {
	if c.refreshInterval <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshJob != nil {
		return nil
	}

	job, err := c.scheduler.NewJob(
		gocron.DurationJob(c.refreshInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := c.Refresh(ctx); err != nil {
				log.WithError(err).Warn("Scheduled token refresh failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule token refresh: %w", err)
	}
	c.refreshJob = job
	return nil
}

// stopRefresh forgets the token source and removes the refresh job
func (c *Context) stopRefresh() {
	c.mu.Lock()
	job := c.refreshJob
	c.refreshJob = nil
	c.source = nil
	c.mu.Unlock()

	if job != nil {
		if err := c.scheduler.RemoveJob(job.ID()); err != nil {
			log.WithError(err).Warn("Failed to remove token refresh job")
		}
	}
}

func (c *Context) pushMirror(ctx context.Context, token string) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Push(ctx, token); err != nil {
		log.WithError(err).Warn("Failed to push token mirror")
	}
}

func (c *Context) transition(state State, identity *Identity, myself *entities.UserAccount, err error) {
	c.mu.Lock()
	c.state = state
	c.identity = identity
	c.myself = myself
	c.err = err
	c.mu.Unlock()
	c.notify()
}

func (c *Context) notify() {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func (c *Context) snapshotLocked() Snapshot {
	return Snapshot{State: c.state, Myself: c.myself, Err: c.err}
}
