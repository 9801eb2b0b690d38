package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"summa/application"
	"summa/auth"
	"summa/config"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Server is the HTTP surface of summa
type Server struct {
	cfg           *config.Config
	engine        *gin.Engine
	hooks         *application.Hooks
	authenticator *auth.Authenticator
	httpServer    *http.Server
}

// NewServer creates the server and registers its routes
func NewServer(cfg *config.Config, hooks *application.Hooks, authenticator *auth.Authenticator) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{
		cfg:           cfg,
		engine:        engine,
		hooks:         hooks,
		authenticator: authenticator,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Empty cookie responses and event streams must reach the client unbuffered
	s.engine.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{auth.TokenCarbonCopiesPath}),
		gzip.WithExcludedPathsRegexs([]string{`^/api/game-sessions/[^/]+/stream$`}),
	))

	s.engine.POST(auth.TokenCarbonCopiesPath, s.createTokenCarbonCopy)
	s.engine.DELETE(auth.TokenCarbonCopiesPath, s.deleteTokenCarbonCopy)

	api := s.engine.Group("/api")
	api.Use(requireAuth(s.authenticator))

	api.GET("/me", s.getMe)
	api.PATCH("/me", s.updateMe)
	api.GET("/users/:username", s.getUser)

	sessions := api.Group("/game-sessions")
	sessions.POST("", s.createGameSession)
	sessions.GET("/ongoing", s.listOngoingGameSessions)
	sessions.GET("/:id", s.getGameSession)
	sessions.POST("/:id/end", s.endGameSession)
	sessions.GET("/:id/stream", s.streamGameSession)
	sessions.GET("/:id/players", s.listPlayers)
	sessions.POST("/:id/players", s.addPlayer)
	sessions.DELETE("/:id/players/:userId", s.removePlayer)
	sessions.PATCH("/:id/players/:userId", s.updatePlayer)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.WithField("addr", s.cfg.ListenAddr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
