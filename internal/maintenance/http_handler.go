package maintenance

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/maintenance-orders", h.Create)
	rg.GET("/maintenance-orders", h.List)
	rg.GET("/maintenance-orders/:id", h.Get)
}

type createOrderRequest struct {
	VehicleID               string `json:"vehicle_id" binding:"required"`
	StartDate               string `json:"start_date" binding:"required"`
	EstimatedCompletionDate string `json:"estimated_completion_date" binding:"required"`
	Urgent                  bool   `json:"urgent"`
	Description             string `json:"description"`
	QuotedCost              int64  `json:"quoted_cost"`
}

func (h *HTTPHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, req.EstimatedCompletionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": "estimated_completion_date must be YYYY-MM-DD"})
		return
	}

	o, err := h.svc.CreateOrder(c.Request.Context(), CreateOrderInput{
		VehicleID:               req.VehicleID,
		StartDate:               start,
		EstimatedCompletionDate: end,
		Urgent:                  req.Urgent,
		Description:             req.Description,
		QuotedCost:              req.QuotedCost,
	})
	switch {
	case errors.Is(err, ErrDateConflict):
		c.JSON(http.StatusConflict, gin.H{"code": "schedule_conflict", "message": err.Error()})
	case errors.Is(err, ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_window", "message": err.Error()})
	case errors.Is(err, ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
	default:
		c.JSON(http.StatusCreated, o)
	}
}

func (h *HTTPHandler) Get(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "maintenance order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *HTTPHandler) List(c *gin.Context) {
	f := ListOrdersFilter{
		VehicleID: strings.TrimSpace(c.Query("vehicle_id")),
		Status:    Status(strings.TrimSpace(c.Query("status"))),
		Limit:     20,
	}
	orders, total, err := h.svc.ListOrders(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": orders, "total": total})
}
