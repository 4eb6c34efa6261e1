// Package api implements the admin HTTP API: authentication, seed-site
// CRUD, crawl lifecycle control, listings, and public search.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openengine/openengine/internal/auth"
	"github.com/openengine/openengine/internal/config"
	"github.com/openengine/openengine/internal/crawler"
	"github.com/openengine/openengine/internal/domain"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/metrics"
)

// SeedStore is the seed-site persistence the API mutates.
type SeedStore interface {
	List(ctx context.Context) ([]domain.SeedSite, error)
	Add(ctx context.Context, url string, seeds []string) error
	Delete(ctx context.Context, url string) error
	UpdateURL(ctx context.Context, oldURL, newURL string) error
	AddSeed(ctx context.Context, url, seed string) error
	RemoveSeed(ctx context.Context, url, seed string) error
	ReplaceSeed(ctx context.Context, url, oldSeed, newSeed string) error
}

// ResourceLister lists crawled resources.
type ResourceLister interface {
	List(ctx context.Context) ([]domain.Resource, error)
}

// PotentialLister lists potential urls.
type PotentialLister interface {
	List(ctx context.Context) ([]domain.PotentialURL, error)
}

// AdminStore is the credential persistence behind login and set-admin.
type AdminStore interface {
	Count(ctx context.Context) (int, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	Upsert(ctx context.Context, username, passwordHash string) error
}

// CrawlManager drives the single active crawl.
type CrawlManager interface {
	Start(ctx context.Context, opts crawler.Options) error
	Stop() error
	TogglePause() (crawler.State, error)
	State() crawler.State
}

// Searcher ranks pages for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// Params holds the collaborators for building a server.
type Params struct {
	Config     *config.Config
	Logger     logger.Interface
	Metrics    *metrics.Metrics
	JWTManager *auth.JWTManager
	Seeds      SeedStore
	Resources  ResourceLister
	Potentials PotentialLister
	Admins     AdminStore
	Crawls     CrawlManager
	Search     Searcher
}

// Server is the admin HTTP server.
type Server struct {
	router *gin.Engine
	server *http.Server
	log    logger.Interface
}

// NewServer builds the router and the http.Server around it.
func NewServer(p Params) *Server {
	router := NewRouter(p)

	srv := &http.Server{
		Addr:         p.Config.Server.Address,
		Handler:      router,
		ReadTimeout:  p.Config.Server.ReadTimeout,
		WriteTimeout: p.Config.Server.WriteTimeout,
		IdleTimeout:  p.Config.Server.IdleTimeout,
	}

	return &Server{
		router: router,
		server: srv,
		log:    p.Logger.WithComponent("api"),
	}
}

// NewRouter builds the gin engine with all middleware and routes. Split out
// of NewServer so handler tests can drive it with httptest.
func NewRouter(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(p.Logger))
	router.Use(corsMiddleware())

	h := newHandlers(p)

	// Public surface.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(p.Metrics.Handler()))
	router.POST("/login", h.login)
	router.POST("/set-admin", h.setAdmin)
	router.GET("/get-admin", h.adminPage)
	router.POST("/search", h.search)

	// Everything else requires a bearer token unless DEV skips auth.
	authed := router.Group("/")
	authed.Use(auth.Middleware(p.JWTManager, p.Config.Auth.Dev))

	authed.POST("/add-seed-url", h.addSeedURL)
	authed.POST("/delete-seed-url", h.deleteSeedURL)
	authed.POST("/update-seed-url", h.updateSeedURL)
	authed.POST("/add-seed-to-url", h.addSeedToURL)
	authed.POST("/delete-seed-from-url", h.deleteSeedFromURL)
	authed.POST("/update-seed-url-seed", h.updateSeedURLSeed)

	authed.GET("/get-seed-urls", h.getSeedURLs)
	authed.GET("/get-crawled-urls", h.getCrawledURLs)
	authed.GET("/get-potential-urls", h.getPotentialURLs)

	authed.POST("/start-crawl", h.startCrawl)
	authed.POST("/stop-crawl", h.stopCrawl)
	authed.POST("/toggle-crawl", h.toggleCrawl)

	return router
}

// Start runs the server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// loggingMiddleware logs each request with its status and duration.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP())
	}
}

// corsMiddleware adds permissive CORS headers for the admin page.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
