package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openengine/openengine/internal/auth"
	"github.com/openengine/openengine/internal/config"
	"github.com/openengine/openengine/internal/crawler"
	"github.com/openengine/openengine/internal/database"
	"github.com/openengine/openengine/internal/frontier"
	"github.com/openengine/openengine/internal/logger"
)

// handlers carries the route implementations and their collaborators.
type handlers struct {
	cfg        *config.Config
	log        logger.Interface
	jwtManager *auth.JWTManager
	seeds      SeedStore
	resources  ResourceLister
	potentials PotentialLister
	admins     AdminStore
	crawls     CrawlManager
	searcher   Searcher
}

func newHandlers(p Params) *handlers {
	return &handlers{
		cfg:        p.Config,
		log:        p.Logger.WithComponent("api"),
		jwtManager: p.JWTManager,
		seeds:      p.Seeds,
		resources:  p.Resources,
		potentials: p.Potentials,
		admins:     p.Admins,
		crawls:     p.Crawls,
		searcher:   p.Search,
	}
}

// message renders a domain-level outcome. CRUD failures are ordinary
// outcomes here, not HTTP errors.
func message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// badRequest renders a malformed-body failure.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request: " + err.Error()})
}

// unauthorized renders 401 with the bearer challenge.
func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.JSON(http.StatusUnauthorized, gin.H{"message": "could not validate credentials"})
}

// === Auth routes ===

// login verifies credentials and issues a bearer token.
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	admin, err := h.admins.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		unauthorized(c)
		return
	}

	if err := auth.VerifyPassword(admin.Password, req.Password); err != nil {
		h.log.Warn("Login failed", "username", req.Username)
		unauthorized(c)
		return
	}

	token, err := h.jwtManager.GenerateToken(req.Username)
	if err != nil {
		h.log.Error("Failed to generate token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token, Type: "bearer"})
}

// setAdmin sets an admin credential. Open while the admins table is empty
// so the first operator can bootstrap; afterwards it requires a token.
func (h *handlers) setAdmin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	count, err := h.admins.Count(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to count admins", "error", err)
		message(c, "could not set credentials")
		return
	}

	if count > 0 && !h.cfg.Auth.Dev && !auth.HasValidToken(c, h.jwtManager) {
		unauthorized(c)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("Failed to hash password", "error", err)
		message(c, "could not set credentials")
		return
	}

	if err := h.admins.Upsert(c.Request.Context(), req.Username, hash); err != nil {
		h.log.Error("Failed to store credentials", "error", err)
		message(c, "could not set credentials")
		return
	}

	message(c, "credentials set")
}

// === Seed-site routes ===

func (h *handlers) addSeedURL(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if !frontier.Valid(req.URL) {
		message(c, "url must have a scheme and a host")
		return
	}

	if err := h.seeds.Add(c.Request.Context(), req.URL, req.Seeds); err != nil {
		h.log.Warn("Failed to add seed url", "url", req.URL, "error", err)
		message(c, "could not add seed url: "+reason(err))
		return
	}

	message(c, "seed url added")
}

func (h *handlers) deleteSeedURL(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.seeds.Delete(c.Request.Context(), req.URL); err != nil {
		h.log.Warn("Failed to delete seed url", "url", req.URL, "error", err)
		message(c, "could not delete seed url: "+reason(err))
		return
	}

	message(c, "seed url deleted")
}

func (h *handlers) updateSeedURL(c *gin.Context) {
	var req urlUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if !frontier.Valid(req.URL) {
		message(c, "url must have a scheme and a host")
		return
	}

	if err := h.seeds.UpdateURL(c.Request.Context(), req.OldURL, req.URL); err != nil {
		h.log.Warn("Failed to update seed url", "url", req.OldURL, "error", err)
		message(c, "could not update seed url: "+reason(err))
		return
	}

	message(c, "seed url updated")
}

func (h *handlers) addSeedToURL(c *gin.Context) {
	var req seedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.seeds.AddSeed(c.Request.Context(), req.URL, req.Seed); err != nil {
		h.log.Warn("Failed to add seed", "url", req.URL, "error", err)
		message(c, "could not add seed: "+reason(err))
		return
	}

	message(c, "seed added")
}

func (h *handlers) deleteSeedFromURL(c *gin.Context) {
	var req seedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.seeds.RemoveSeed(c.Request.Context(), req.URL, req.Seed); err != nil {
		h.log.Warn("Failed to remove seed", "url", req.URL, "error", err)
		message(c, "could not remove seed: "+reason(err))
		return
	}

	message(c, "seed removed")
}

func (h *handlers) updateSeedURLSeed(c *gin.Context) {
	var req seedUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.seeds.ReplaceSeed(c.Request.Context(), req.URL, req.OldSeed, req.NewSeed); err != nil {
		h.log.Warn("Failed to replace seed", "url", req.URL, "error", err)
		message(c, "could not replace seed: "+reason(err))
		return
	}

	message(c, "seed updated")
}

// === Listing routes ===

func (h *handlers) getSeedURLs(c *gin.Context) {
	sites, err := h.seeds.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list seed urls", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list seed urls"})
		return
	}
	c.JSON(http.StatusOK, sites)
}

func (h *handlers) getCrawledURLs(c *gin.Context) {
	resources, err := h.resources.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list resources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list crawled urls"})
		return
	}
	c.JSON(http.StatusOK, resources)
}

func (h *handlers) getPotentialURLs(c *gin.Context) {
	urls, err := h.potentials.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list potential urls", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list potential urls"})
		return
	}
	c.JSON(http.StatusOK, urls)
}

// === Crawl lifecycle routes ===

func (h *handlers) startCrawl(c *gin.Context) {
	var req startCrawlRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	opts := crawler.Options{
		Whitelist:     req.Regex,
		MaxIterations: h.cfg.Crawler.MaxIterations,
		RevisitDelta:  h.cfg.Crawler.RevisitDelta,
		FetchTimeout:  h.cfg.Crawler.FetchTimeout,
	}
	if req.MaxIter != nil {
		opts.MaxIterations = *req.MaxIter
	}

	// The crawl outlives this request; it stops through /stop-crawl.
	if err := h.crawls.Start(context.WithoutCancel(c.Request.Context()), opts); err != nil {
		if errors.Is(err, crawler.ErrCrawlRunning) {
			c.JSON(http.StatusOK, startCrawlResponse{Message: "crawl already running"})
			return
		}
		h.log.Error("Failed to start crawl", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to start crawl"})
		return
	}

	c.JSON(http.StatusOK, startCrawlResponse{Message: "crawl started"})
}

func (h *handlers) stopCrawl(c *gin.Context) {
	if err := h.crawls.Stop(); err != nil {
		message(c, "no crawl running")
		return
	}
	message(c, "crawl stopping")
}

func (h *handlers) toggleCrawl(c *gin.Context) {
	state, err := h.crawls.TogglePause()
	if err != nil {
		message(c, "no crawl running")
		return
	}
	message(c, "crawl "+state.String())
}

// === Search ===

func (h *handlers) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.searcher.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.log.Error("Search failed", "query", req.Query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// reason maps store errors onto short operator-facing phrases.
func reason(err error) string {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return "not found"
	case errors.Is(err, database.ErrDuplicate):
		return "already exists"
	default:
		return "storage error"
	}
}
