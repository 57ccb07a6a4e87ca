// Package knowledge serves the read-only clinical catalogs. The catalog is
// immutable for the life of the process, so responses are memoized with a
// short TTL to keep serialization off the hot path.
package knowledge

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/cds-engine/internal/handler"
	"github.com/jwalitptl/cds-engine/internal/knowledge"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

type Handler struct {
	catalog *knowledge.Catalog
	cache   *gocache.Cache
}

func NewHandler(catalog *knowledge.Catalog) *Handler {
	return &Handler{
		catalog: catalog,
		cache:   gocache.New(cacheTTL, cacheCleanup),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	kb := r.Group("/knowledge")
	{
		kb.GET("/version", h.Version)
		kb.GET("/rules", h.cached("rules", func() interface{} { return h.catalog.Rules }))
		kb.GET("/red-flags", h.cached("red-flags", func() interface{} { return h.catalog.RedFlags }))
		kb.GET("/diagnoses", h.cached("diagnoses", func() interface{} { return h.catalog.Diagnoses }))
		kb.GET("/protocols", h.cached("protocols", func() interface{} { return h.catalog.Protocols }))
		kb.GET("/baselines", h.cached("baselines", func() interface{} { return h.catalog.Baselines }))
		kb.GET("/frequencies", h.cached("frequencies", func() interface{} { return h.catalog.Frequencies }))
		kb.GET("/guidelines", h.cached("guidelines", func() interface{} { return h.catalog.Guidelines }))
		kb.GET("/rules/:id", h.Rule)
	}
}

func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"version": h.catalog.Version}))
}

func (h *Handler) Rule(c *gin.Context) {
	rule, ok := h.catalog.RuleByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("rule not found"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rule))
}

func (h *Handler) cached(key string, load func() interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resp, ok := h.cache.Get(key); ok {
			c.JSON(http.StatusOK, resp)
			return
		}
		resp := handler.NewSuccessResponse(load())
		h.cache.Set(key, resp, gocache.DefaultExpiration)
		c.JSON(http.StatusOK, resp)
	}
}
