package reconcile

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/daterange"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/middleware"
)

// HTTPHandler 手动触发对账的 HTTP 入口（页面刷新 / 运维操作）。
// 一轮对账是全表扫描，手动触发口子单独加一层滑动窗口限流。
type HTTPHandler struct {
	engine  *Engine
	limiter middleware.RateLimiter
}

func NewHTTPHandler(engine *Engine) *HTTPHandler {
	return &HTTPHandler{
		engine:  engine,
		limiter: middleware.NewSlidingWindow(time.Minute, 6),
	}
}

func (h *HTTPHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/reconcile", h.Trigger)
}

type triggerRequest struct {
	// 可选：按指定日期跑一轮（YYYY-MM-DD），缺省为今天。
	// 主要给运维排查/补跑使用。
	Date string `json:"date"`
}

func (h *HTTPHandler) Trigger(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.Request.Context()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"code": "rate_limited", "message": "too many reconcile triggers, try again later"})
		return
	}

	today := daterange.DayStart(time.Now())

	if c.Request.ContentLength > 0 {
		var req triggerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
			return
		}
		if req.Date != "" {
			d, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": "date must be YYYY-MM-DD"})
				return
			}
			today = daterange.DayStart(d)
		}
	}

	report, err := h.engine.RunPass(c.Request.Context(), today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
