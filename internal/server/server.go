// Package server exposes the negotiation engine over HTTP: session
// lifecycle endpoints, operator input, and an SSE event stream for web
// observers.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/negotiation"
)

// Server wires the session registry and the completion client behind a
// gin router.
type Server struct {
	registry *negotiation.Registry
	client   completion.Client
	cfg      *config.Config
	logger   *logging.Logger
	router   *gin.Engine
}

// New builds the server and its routes.
func New(registry *negotiation.Registry, client completion.Client, cfg *config.Config, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDiscard()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		registry: registry,
		client:   client,
		cfg:      cfg,
		logger:   logger,
		router:   router,
	}

	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	s.registerRoutes()
	return s
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	sess := s.router.Group("/session")
	sess.POST("/create", s.handleCreate)
	sess.GET("/stream", s.handleStream)
	sess.POST("/input", s.handleInput)
	sess.POST("/typing", s.handleTyping)
	sess.POST("/stop", s.handleStop)
	sess.GET("/history", s.handleHistory)
	sess.GET("/log", s.handleLog)
	sess.GET("/list", s.handleList)
}

// Start serves until ctx is cancelled, then shuts down gracefully and
// stops every running session.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		s.registry.StopAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("server listening", "addr", s.cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// corsMiddleware allows the configured web origins, including their
// preflight requests.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed[origin] || allowed["*"]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
