package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/config"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/logger"
)

// GinRecovery 防止 panic 把进程打崩，并记录栈信息。
func GinRecovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Errorf("panic in http %s %s err=%v stack=%s", c.Request.Method, c.Request.URL.Path, r, string(debug.Stack()))
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": "internal error"})
			}
		}()
		c.Next()
	}
}

// GinAccessLog 记录每个 HTTP 请求的耗时/状态码。
func GinAccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		fields := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"cost":   time.Since(start).String(),
		}
		if c.FullPath() == "" {
			fields["path"] = c.Request.URL.Path
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WithFields(fields).Warn("http request failed")
		} else {
			log.WithFields(fields).Info("http request ok")
		}
	}
}

// GinTracing 基于 OpenTracing 的 server 端中间件：
// 从请求头提取上游 span context，创建 server span 并注入 request ctx。
func GinTracing(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := opentracing.GlobalTracer()

		var parent opentracing.SpanContext
		if sc, err := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(c.Request.Header)); err == nil {
			parent = sc
		}

		operation := c.Request.Method + " " + c.FullPath()
		var span opentracing.Span
		if parent != nil {
			span = tracer.StartSpan(operation, ext.RPCServerOption(parent))
		} else {
			span = tracer.StartSpan(operation)
		}
		defer span.Finish()

		ext.SpanKindRPCServer.Set(span)
		ext.Component.Set(span, "http")
		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)
		if serviceName != "" {
			span.SetTag("service", serviceName)
		}

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(c.Request.Context(), span))
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
	}
}

// GinRateLimit 超出限流直接 429。
func GinRateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": "rate_limited", "message": "too many requests"})
			return
		}
		c.Next()
	}
}

const authInfoKey = "auth_info"

// AuthInfo 从 JWT 中解析出的最小用户信息。
type AuthInfo struct {
	Subject string
	Roles   []string
}

// AuthFromGinContext 从 gin 上下文取出鉴权信息。
func AuthFromGinContext(c *gin.Context) (AuthInfo, bool) {
	v, ok := c.Get(authInfoKey)
	if !ok {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// GinJWTAuth HTTP 侧的 JWT 鉴权：
// - 读取 `Authorization: Bearer <token>`
// - 校验 HS256 签名与标准字段，可选校验 iss/aud
// - PublicMethods 里的路径免鉴权（按 "METHOD /path" 或裸路径匹配）
func GinJWTAuth(cfg config.AuthConfig, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || isPublicPath(cfg.PublicMethods, c) {
			c.Next()
			return
		}
		if strings.TrimSpace(cfg.JWTSecret) == "" {
			if log != nil {
				log.Warn("auth enabled but jwt_secret is empty")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "auth not configured"})
			return
		}

		tokenStr := strings.TrimSpace(c.GetHeader("Authorization"))
		if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
			tokenStr = strings.TrimSpace(tokenStr[len("bearer "):])
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "missing authorization"})
			return
		}

		claims := struct {
			Roles []string `json:"roles"`
			jwt.RegisteredClaims
		}{}
		parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
			}
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithLeeway(30*time.Second))
		if err != nil || parsed == nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "invalid token"})
			return
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "invalid issuer"})
			return
		}
		if cfg.Audience != "" && !claimsAudienceContains(claims.Audience, cfg.Audience) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "invalid audience"})
			return
		}

		c.Set(authInfoKey, AuthInfo{Subject: claims.Subject, Roles: claims.Roles})
		c.Next()
	}
}

func isPublicPath(public []string, c *gin.Context) bool {
	if len(public) == 0 {
		return false
	}
	path := c.Request.URL.Path
	withMethod := c.Request.Method + " " + path
	for _, m := range public {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if m == path || m == withMethod {
			return true
		}
	}
	return false
}

func claimsAudienceContains(aud jwt.ClaimStrings, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || len(aud) == 0 {
		return false
	}
	for _, v := range aud {
		if strings.TrimSpace(v) == want {
			return true
		}
	}
	return false
}
