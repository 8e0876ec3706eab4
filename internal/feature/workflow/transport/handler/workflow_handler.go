// Package handler はworkflowフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"brandai_backend/internal/api"
	branddomain "brandai_backend/internal/feature/branddna/domain"
	brand "brandai_backend/internal/feature/branddna/domain/entity"
	critiquedomain "brandai_backend/internal/feature/critique/domain"
	critiquehandler "brandai_backend/internal/feature/critique/transport/handler"
	critiquedto "brandai_backend/internal/feature/critique/transport/http/dto"
	"brandai_backend/internal/feature/workflow/domain"
	"brandai_backend/internal/feature/workflow/domain/entity"
	"brandai_backend/internal/feature/workflow/transport/http/dto"
	jwtmw "brandai_backend/internal/platform/jwt"
	"brandai_backend/internal/platform/media"
)

// WorkflowService はワークフローのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type WorkflowService interface {
	Get(ctx context.Context, id string) (*entity.Session, error)
	SubmitURL(ctx context.Context, id, rawURL string) (*entity.Session, error)
	SubmitCritique(ctx context.Context, id string, payload *media.Payload, b brand.BrandInfo, description string) (*entity.Session, error)
	Reset(ctx context.Context, id string) (*entity.Session, error)
}

// WorkflowHandler はセッション単位の2ステップフローのHTTPリクエストを処理します。
// セッションIDはjwtmw.SessionRequiredミドルウェアが設定します。
type WorkflowHandler struct {
	svc      WorkflowService
	maxBytes int64
}

// NewWorkflowHandler はWorkflowHandlerの新しいインスタンスを生成します。
func NewWorkflowHandler(svc WorkflowService, maxBytes int64) *WorkflowHandler {
	return &WorkflowHandler{svc: svc, maxBytes: maxBytes}
}

// Get は現在のセッション状態を返します。
//
// エンドポイント: GET /v1/session
func (h *WorkflowHandler) Get(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context(), jwtmw.SessionID(c))
	h.respond(c, s, err)
}

// SubmitURL はURLを受け取りブランドDNAを抽出します。
//
// エンドポイント: POST /v1/session/url
// スクレイピングの失敗は200でセッションのscrape.errorに格納されます。
func (h *WorkflowHandler) SubmitURL(c *gin.Context) {
	var req api.SubmitURLRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: branddomain.ErrInvalidURL.Error()})
		return
	}
	s, err := h.svc.SubmitURL(c.Request.Context(), jwtmw.SessionID(c), req.URL)
	h.respond(c, s, err)
}

// SubmitCritique はクリエイティブとブランド情報を受け取り批評を生成します。
//
// エンドポイント: POST /v1/session/critique
// Content-Type: multipart/form-data
func (h *WorkflowHandler) SubmitCritique(c *gin.Context) {
	var form critiquedto.CritiqueForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: critiquedomain.ErrFileRequired.Error()})
		return
	}

	payload, err := critiquehandler.ReadPayload(form, h.maxBytes)
	if err != nil {
		slog.Warn("upload rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(critiquehandler.UploadErrorStatus(err), api.ErrorResponse{Error: critiquehandler.UploadErrorMessage(err)})
		return
	}

	s, err := h.svc.SubmitCritique(c.Request.Context(), jwtmw.SessionID(c), payload, form.BrandInfo(), form.Description())
	h.respond(c, s, err)
}

// Reset はセッションをURL入力ステップに戻します。
//
// エンドポイント: POST /v1/session/reset
func (h *WorkflowHandler) Reset(c *gin.Context) {
	s, err := h.svc.Reset(c.Request.Context(), jwtmw.SessionID(c))
	h.respond(c, s, err)
}

func (h *WorkflowHandler) respond(c *gin.Context, s *entity.Session, err error) {
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("workflow request failed", "error", err, "path", c.FullPath())
		} else {
			slog.Warn("workflow request rejected", "error", err, "path", c.FullPath())
		}
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(s))
}

// StatusFor はワークフローのエラーをHTTPステータスに変換します。
func StatusFor(err error) int {
	switch {
	case errors.Is(err, branddomain.ErrInvalidURL),
		errors.Is(err, critiquedomain.ErrFileRequired),
		errors.Is(err, critiquedomain.ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRequestInFlight), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
