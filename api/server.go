package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
	"github.com/clipforge/media-api/internal/database"
)

// Server represents the HTTP server
type Server struct {
	engine         *gin.Engine
	httpServer     *http.Server
	db             *database.DB
	maxUploadBytes int64
	limiters       *limiterRegistry

	// Dependencies for handlers
	dependencies *types.Dependencies
}

// NewServer creates a new HTTP server. maxUploadBytes bounds request bodies;
// it must cover the largest accepted media upload.
func NewServer(address string, maxUploadBytes int64) *Server {
	// Create Gin engine with recovery middleware only
	engine := gin.New()
	engine.Use(gin.Recovery())

	server := &Server{
		engine:         engine,
		maxUploadBytes: maxUploadBytes,
		limiters:       newLimiterRegistry(),
		httpServer: &http.Server{
			Addr:           address,
			Handler:        engine,
			ReadTimeout:    10 * time.Minute, // large uploads stream slowly
			WriteTimeout:   10 * time.Minute,
			IdleTimeout:    30 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
	}

	return server
}

// SetDatabase sets the database connection
func (s *Server) SetDatabase(db *database.DB) {
	s.db = db
	if s.dependencies == nil {
		s.dependencies = &types.Dependencies{}
	}
	s.dependencies.DB = db
}

// SetDependencies sets all handler dependencies
func (s *Server) SetDependencies(deps *types.Dependencies) {
	s.dependencies = deps
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() error {
	// Setup global middleware
	s.setupMiddleware()

	// Setup routes
	if err := s.setupRoutes(); err != nil {
		return err
	}

	return nil
}

// setupMiddleware configures global middleware
func (s *Server) setupMiddleware() {
	// Logger middleware
	s.engine.Use(gin.Logger())

	// Global CORS
	s.engine.Use(CORS())

	// Global request size limit, sized for media uploads
	maxBytes := s.maxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	s.engine.Use(RequestSizeLimitWithSize(maxBytes))
}

// setupRoutes delegates to the main route registration
func (s *Server) setupRoutes() error {
	return RegisterRoutes(s.engine, s.dependencies, s.limiters)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the response cache cleanup goroutine if the cache owns one
	if s.dependencies != nil && s.dependencies.Cache != nil {
		if stopper, ok := s.dependencies.Cache.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}

	// Stop the rate limiter prune goroutine
	s.limiters.Close()

	return s.httpServer.Shutdown(ctx)
}
