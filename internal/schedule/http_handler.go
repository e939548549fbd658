package schedule

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
	rg.POST("/schedules", h.Create)
	rg.GET("/schedules", h.List)
	rg.GET("/schedules/:id", h.Get)
}

type createScheduleRequest struct {
	VehicleID string `json:"vehicle_id" binding:"required"`
	DriverID  string `json:"driver_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

func (h *HTTPHandler) Create(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": "end_date must be YYYY-MM-DD"})
		return
	}

	sc, err := h.svc.CreateSchedule(c.Request.Context(), CreateScheduleInput{
		VehicleID: req.VehicleID,
		DriverID:  req.DriverID,
		StartDate: start,
		EndDate:   end,
	})
	switch {
	case errors.Is(err, ErrDateConflict):
		c.JSON(http.StatusConflict, gin.H{"code": "schedule_conflict", "message": err.Error()})
	case errors.Is(err, ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_window", "message": err.Error()})
	case errors.Is(err, ErrVehicleNotFound), errors.Is(err, ErrDriverNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
	default:
		c.JSON(http.StatusCreated, sc)
	}
}

func (h *HTTPHandler) Get(c *gin.Context) {
	sc, err := h.svc.GetSchedule(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "schedule not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (h *HTTPHandler) List(c *gin.Context) {
	f := ListSchedulesFilter{
		VehicleID: strings.TrimSpace(c.Query("vehicle_id")),
		DriverID:  strings.TrimSpace(c.Query("driver_id")),
		Status:    Status(strings.TrimSpace(c.Query("status"))),
		Limit:     20,
	}
	schedules, total, err := h.svc.ListSchedules(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": schedules, "total": total})
}
