package driver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HTTPHandler struct {
	repo *Repo
}

func NewHTTPHandler(db *gorm.DB) *HTTPHandler {
	return &HTTPHandler{repo: NewRepo(db)}
}

func (h *HTTPHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/drivers", h.Create)
	rg.GET("/drivers", h.List)
	rg.GET("/drivers/:id", h.Get)
}

type createDriverRequest struct {
	Name      string `json:"name" binding:"required"`
	LicenseNo string `json:"license_no" binding:"required"`
	Phone     string `json:"phone"`
}

func (h *HTTPHandler) Create(c *gin.Context) {
	var req createDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
		return
	}

	d := &Driver{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		LicenseNo: strings.TrimSpace(req.LicenseNo),
		Phone:     strings.TrimSpace(req.Phone),
		Status:    "on_duty",
	}
	if err := h.repo.Create(c.Request.Context(), d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *HTTPHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	d, err := h.repo.FindByID(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "driver not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *HTTPHandler) List(c *gin.Context) {
	offset, limit := 0, 20
	if n, err := strconv.Atoi(c.Query("page_size")); err == nil && n > 0 && n <= 200 {
		limit = n
	}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 1 {
		offset = (n - 1) * limit
	}
	ds, total, err := h.repo.List(c.Request.Context(), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ds, "total": total})
}
