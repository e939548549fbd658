package vehicle

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HTTPHandler 车辆 CRUD 的 HTTP 入口。
// 注意：status / assigned_driver_id 是派生字段，创建后只由对账引擎更新，
// 因此这里不提供直接修改状态的接口。
type HTTPHandler struct {
	repo *Repo
}

func NewHTTPHandler(db *gorm.DB) *HTTPHandler {
	return &HTTPHandler{repo: NewRepo(db)}
}

func (h *HTTPHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/vehicles", h.Create)
	rg.GET("/vehicles", h.List)
	rg.GET("/vehicles/:id", h.Get)
}

type createVehicleRequest struct {
	PlateNumber string `json:"plate_number" binding:"required"`
	VIN         string `json:"vin"`
	Model       string `json:"model"`
}

func (h *HTTPHandler) Create(c *gin.Context) {
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
		return
	}

	v := &Vehicle{
		ID:          uuid.NewString(),
		PlateNumber: strings.TrimSpace(req.PlateNumber),
		VIN:         strings.TrimSpace(req.VIN),
		Model:       strings.TrimSpace(req.Model),
		Status:      StatusIdle, // 新车默认空闲、未分配
	}
	if err := h.repo.Create(c.Request.Context(), v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *HTTPHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	v, err := h.repo.FindByID(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "vehicle not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *HTTPHandler) List(c *gin.Context) {
	status := Status(strings.TrimSpace(c.Query("status")))
	offset, limit := pagination(c)
	vs, total, err := h.repo.List(c.Request.Context(), status, offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": vs, "total": total})
}

func pagination(c *gin.Context) (offset, limit int) {
	page := atoiDefault(c.Query("page"), 1)
	size := atoiDefault(c.Query("page_size"), 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 20
	}
	return (page - 1) * size, size
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
