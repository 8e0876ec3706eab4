// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"brandai_backend/internal/api"
)

// チェック結果の値です。
const (
	StatusOK         = "ok"
	StatusDegraded   = "degraded"
	StatusDown       = "down"
	StatusDisabled   = "disabled"
	StatusConfigured = "configured"
	StatusMissingKey = "missing_key"
)

const checkTimeout = 2 * time.Second

// Check は依存先1つの状態を返します。
type Check struct {
	Name string
	Run  func(ctx context.Context) string
}

// GeminiCheck はAPIキーの設定状況を報告します。外部APIは呼び出しません。
func GeminiCheck(configured func() bool) Check {
	return Check{Name: "gemini", Run: func(ctx context.Context) string {
		if configured() {
			return StatusConfigured
		}
		return StatusMissingKey
	}}
}

// RedisCheck はRedisへのPINGを報告します。rdbがnilの場合はdisabledです。
func RedisCheck(rdb *redis.Client) Check {
	return Check{Name: "redis", Run: func(ctx context.Context) string {
		if rdb == nil {
			return StatusDisabled
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return StatusDown
		}
		return StatusOK
	}}
}

// HealthHandler はサービスヘルスチェック用の /healthz エンドポイントを処理します。
type HealthHandler struct {
	checks []Check
}

// NewHealthHandler はHealthHandlerの新しいインスタンスを生成します。
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health はHTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// 依存先がdownでも200を返し、statusをdegradedにします。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
		return
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	resp := api.HealthResponse{Status: StatusOK}
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for _, chk := range h.checks {
		result := chk.Run(ctx)
		resp.Checks[chk.Name] = result
		if result == StatusDown {
			resp.Status = StatusDegraded
		}
	}
	c.JSON(http.StatusOK, resp)
}
