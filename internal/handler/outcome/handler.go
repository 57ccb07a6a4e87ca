package outcome

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/cds-engine/internal/handler"
	"github.com/jwalitptl/cds-engine/internal/middleware"
	"github.com/jwalitptl/cds-engine/internal/model"
	"github.com/jwalitptl/cds-engine/internal/service/outcome"
)

type Handler struct {
	service *outcome.Service
}

func NewHandler(service *outcome.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients/:id/outcome")
	{
		patients.POST("/predictions", h.Predict)
		patients.GET("/predictions", h.ListPredictions)
	}

	predictions := r.Group("/outcome/predictions")
	{
		predictions.POST("/:id/accept", h.Accept)
		predictions.POST("/:id/reject", h.Reject)
		predictions.POST("/:id/outcome", h.RecordOutcome)
	}
}

func (h *Handler) Predict(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	var req model.PredictOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	pred, err := h.service.Predict(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), patientID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(pred))
}

func (h *Handler) ListPredictions(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	preds, err := h.service.ListForPatient(c.Request.Context(), middleware.OrgID(c), patientID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(preds))
}

func (h *Handler) Accept(c *gin.Context) {
	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid prediction id"))
		return
	}

	pred, err := h.service.Accept(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), predictionID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(pred))
}

func (h *Handler) Reject(c *gin.Context) {
	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid prediction id"))
		return
	}

	var req model.RejectPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	pred, err := h.service.Reject(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), predictionID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(pred))
}

func (h *Handler) RecordOutcome(c *gin.Context) {
	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid prediction id"))
		return
	}

	var req model.RecordOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	pred, err := h.service.RecordOutcome(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), predictionID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(pred))
}
