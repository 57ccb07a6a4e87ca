package safety

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/cds-engine/internal/handler"
	"github.com/jwalitptl/cds-engine/internal/middleware"
	"github.com/jwalitptl/cds-engine/internal/model"
	"github.com/jwalitptl/cds-engine/internal/service/safety"
)

type Handler struct {
	service *safety.Service
}

func NewHandler(service *safety.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients/:id")
	{
		patients.POST("/safety/check", h.Check)
		patients.POST("/contraindications", h.Add)
		patients.GET("/contraindications", h.List)
		patients.GET("/alerts", h.ListAlerts)
	}

	contraindications := r.Group("/contraindications")
	{
		contraindications.POST("/:id/override", h.Override)
		contraindications.POST("/:id/deactivate", h.Deactivate)
	}

	r.POST("/alerts/:id/acknowledge", h.AcknowledgeAlert)
}

func (h *Handler) Check(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	var req model.SafetyCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.Check(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), patientID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) Add(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	var req model.AddContraindicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	finding, err := h.service.Add(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), patientID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(finding))
}

func (h *Handler) List(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "true"))

	findings, err := h.service.ListContraindications(c.Request.Context(), middleware.OrgID(c), patientID, activeOnly)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(findings))
}

func (h *Handler) Override(c *gin.Context) {
	findingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid finding id"))
		return
	}

	var req model.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	finding, err := h.service.Override(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), findingID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(finding))
}

func (h *Handler) Deactivate(c *gin.Context) {
	findingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid finding id"))
		return
	}

	var req model.DeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	finding, err := h.service.Deactivate(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), findingID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(finding))
}

func (h *Handler) ListAlerts(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	status := model.AlertStatus(c.Query("status"))

	alerts, err := h.service.ListAlerts(c.Request.Context(), middleware.OrgID(c), patientID, status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid alert id"))
		return
	}

	alert, err := h.service.AcknowledgeAlert(c.Request.Context(), middleware.OrgID(c), middleware.UserID(c), alertID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alert))
}
