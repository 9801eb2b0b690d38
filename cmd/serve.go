package cmd

import (
	"context"
	"fmt"
	"time"

	"summa/api"
	"summa/application"
	"summa/auth"
	"summa/config"
	"summa/database"
	"summa/domain/interfaces"
	"summa/domain/services"
	busevents "summa/events"
	"summa/infrastructure"
	"summa/infrastructure/observability"
	"summa/live"
	"summa/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long:  `Run migrations, connect to the database and NATS when configured, and serve the HTTP API until interrupted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting summa...")

	// Load configuration
	cfg := config.Get()
	instanceID := uuid.NewString()[:8]

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.MigrateUp(cfg.GetDatabaseURL()); err != nil {
		db.Close()
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus, with NATS fan-out between instances when configured
	eventBus := busevents.NewBus()
	var (
		eventPublisher interfaces.EventPublisher = eventBus
		natsClient     *infrastructure.NATSClient
	)
	if cfg.NATSServers != "" {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers, instanceID)
		if err := natsClient.Connect(ctx); err != nil {
			db.Close()
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if err := natsClient.EnsureEventStream(); err != nil {
			log.WithError(err).Warn("Failed to ensure event stream")
		}

		mapper := infrastructure.NewEventSubjectMapper()
		eventPublisher = infrastructure.NewNATSEventPublisher(natsClient, mapper, eventBus, instanceID)
		subscriber := infrastructure.NewNATSEventSubscriber(natsClient, mapper, eventBus, instanceID)
		if err := subscriber.SubscribeAll(); err != nil {
			log.WithError(err).Warn("Failed to subscribe to remote events")
		}
		log.Info("NATS event fan-out enabled")
	}

	// Initialize unit of work factory with a cached user read path
	cachedUsers := infrastructure.NewCachedUserRepository(repository.NewUserRepository(db), cfg.UserCacheTTL)
	eventBus.SubscribeAll(cachedUsers.HandleEvent)
	uowFactory := infrastructure.NewUnitOfWorkFactory(repository.NewUnitOfWorkFactory(db), eventPublisher, cachedUsers)

	// Initialize services and hooks
	gameSessionService := services.NewGameSessionService(uowFactory)
	playerService := services.NewPlayerService(uowFactory, cfg.InitialStackBb)
	userService := services.NewUserService(uowFactory)
	hooks := application.NewHooks(live.NewHub(eventBus), gameSessionService, playerService, userService)

	// Initialize authentication
	verifier, err := newTokenVerifier(ctx, cfg)
	if err != nil {
		closeAll(db, natsClient)
		return err
	}
	cookies := auth.NewSessionCookies(cfg.SessionCookieSecret, cfg.SessionCookieTTL)
	authenticator := auth.NewAuthenticator(verifier, cookies, userService)

	server := api.NewServer(cfg, hooks, authenticator)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("HTTP server shutdown incomplete")
		}
		return nil
	})

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"instance":    instanceID,
	}).Info("summa is running")
	err = g.Wait()

	// Let in-flight event handlers finish before closing their dependencies
	eventBus.Wait()
	closeAll(db, natsClient)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := observability.ShutdownGlobalMetrics(shutdownCtx); shutdownErr != nil {
		log.WithError(shutdownErr).Warn("Failed to flush metrics")
	}

	log.Info("Shutdown completed")
	return err
}

func newTokenVerifier(ctx context.Context, cfg *config.Config) (auth.TokenVerifier, error) {
	switch cfg.AuthProvider {
	case "oidc":
		verifier, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OIDC verifier: %w", err)
		}
		return verifier, nil
	case "hmac":
		return auth.NewHMACVerifier(cfg.AuthHMACSecret, auth.HMACIssuer), nil
	default:
		return nil, fmt.Errorf("unknown auth provider: %s", cfg.AuthProvider)
	}
}

func closeAll(db *database.DB, natsClient *infrastructure.NATSClient) {
	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Warn("Error closing NATS client")
		}
	}
	log.Info("Closing database connection...")
	db.Close()
}
