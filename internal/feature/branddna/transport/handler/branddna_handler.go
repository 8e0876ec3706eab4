// Package handler はbranddnaフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"brandai_backend/internal/api"
	"brandai_backend/internal/feature/branddna/domain"
	"brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/feature/branddna/transport/http/dto"
	"brandai_backend/internal/shared/llmerr"
)

// BrandDNAService はブランドDNA抽出のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type BrandDNAService interface {
	ScrapeBrandInfo(ctx context.Context, rawURL string) (*entity.BrandInfo, error)
	Invalidate(ctx context.Context, rawURL string) error
}

// BrandDNAHandler はブランドDNA抽出のHTTPリクエストを処理します。
type BrandDNAHandler struct {
	svc BrandDNAService
}

// NewBrandDNAHandler はBrandDNAHandlerの新しいインスタンスを生成します。
func NewBrandDNAHandler(svc BrandDNAService) *BrandDNAHandler {
	return &BrandDNAHandler{svc: svc}
}

// Scrape はWebサイトを分析してブランドDNAを返します。
//
// エンドポイント: POST /v1/brand/scrape
// Content-Type: application/json
func (h *BrandDNAHandler) Scrape(c *gin.Context) {
	var req api.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("scrape request validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: domain.ErrInvalidURL.Error()})
		return
	}

	ctx := c.Request.Context()
	if req.Refresh {
		if err := h.svc.Invalidate(ctx, req.URL); err != nil && !errors.Is(err, domain.ErrInvalidURL) {
			slog.Warn("brand cache invalidation failed", "error", err, "url", req.URL)
		}
	}

	info, err := h.svc.ScrapeBrandInfo(ctx, req.URL)
	if err != nil {
		status := llmerr.KindOf(err).HTTPStatus()
		if errors.Is(err, domain.ErrInvalidURL) {
			status = http.StatusBadRequest
		}
		if status >= http.StatusInternalServerError {
			slog.Error("scrape failed", "error", err, "url", req.URL, "status", status)
		} else {
			slog.Warn("scrape rejected", "error", err, "url", req.URL)
		}
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.FromEntity(info))
}
