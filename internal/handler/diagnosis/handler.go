package diagnosis

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/cds-engine/internal/handler"
	"github.com/jwalitptl/cds-engine/internal/middleware"
	"github.com/jwalitptl/cds-engine/internal/model"
	"github.com/jwalitptl/cds-engine/internal/service/diagnosis"
)

type Handler struct {
	service *diagnosis.Service
}

func NewHandler(service *diagnosis.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients/:id/diagnosis")
	{
		patients.POST("/suggestions", h.Suggest)
		patients.GET("/suggestions", h.ListSuggestions)
	}

	suggestions := r.Group("/diagnosis/suggestions")
	{
		suggestions.POST("/:id/accept", h.Accept)
		suggestions.POST("/:id/reject", h.Reject)
	}
}

func (h *Handler) Suggest(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	var req model.SuggestDiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	suggestions, err := h.service.Suggest(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), patientID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(suggestions))
}

func (h *Handler) ListSuggestions(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	suggestions, err := h.service.ListForPatient(c.Request.Context(), middleware.OrgID(c), patientID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(suggestions))
}

func (h *Handler) Accept(c *gin.Context) {
	suggestionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid suggestion id"))
		return
	}

	var req model.AcceptSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	diag, err := h.service.Accept(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), suggestionID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(diag))
}

func (h *Handler) Reject(c *gin.Context) {
	suggestionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid suggestion id"))
		return
	}

	var req model.RejectSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sug, err := h.service.Reject(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), suggestionID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sug))
}
