package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/cds-engine/internal/knowledge"
)

// Handler serves the operational endpoints: liveness, readiness and basic
// engine info.
type Handler struct {
	db      *sqlx.DB
	catalog *knowledge.Catalog
}

func NewHandler(db *sqlx.DB, catalog *knowledge.Catalog) *Handler {
	return &Handler{db: db, catalog: catalog}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"status":            "healthy",
		"knowledge_version": h.catalog.Version,
	}))
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse("database unreachable"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"status": "ready"}))
}
