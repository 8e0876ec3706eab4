// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"brandai_backend/internal/config"
	"brandai_backend/internal/platform/gemini"
	infrahttp "brandai_backend/internal/platform/http"
	"brandai_backend/internal/shared/ratelimiter"
)

// NewGeminiClient creates a Gemini client with its own HTTP client and a per-minute rate limiter.
func NewGeminiClient(cfg config.GeminiConfig) *gemini.Client {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	limiter := ratelimiter.NewRateLimiter(cfg.RPM, time.Minute)
	return gemini.NewClient(gemini.Config{APIKey: cfg.APIKey, Timeout: cfg.Timeout}, httpClient, limiter)
}
