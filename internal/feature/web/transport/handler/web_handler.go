// Package handler はサーバーサイドレンダリングのWeb UIハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	critiquehandler "brandai_backend/internal/feature/critique/transport/handler"
	critiquedto "brandai_backend/internal/feature/critique/transport/http/dto"
	"brandai_backend/internal/feature/web/presenter"
	"brandai_backend/internal/feature/workflow/domain/entity"
	workflowhandler "brandai_backend/internal/feature/workflow/transport/handler"
	jwtmw "brandai_backend/internal/platform/jwt"
	"brandai_backend/internal/platform/media"
)

// WorkflowService はWeb UIが利用するワークフローのユースケースです。
type WorkflowService interface {
	Get(ctx context.Context, id string) (*entity.Session, error)
	SubmitURL(ctx context.Context, id, rawURL string) (*entity.Session, error)
	SubmitCritique(ctx context.Context, id string, payload *media.Payload, b brand.BrandInfo, description string) (*entity.Session, error)
	Reset(ctx context.Context, id string) (*entity.Session, error)
}

const (
	pageIndex = "index.tmpl"
	pageGuide = "guide.tmpl"
	pageAbout = "about.tmpl"
)

// WebHandler はHTMLページを描画します。テンプレートはrouterでSetHTMLTemplateされている前提です。
type WebHandler struct {
	svc      WorkflowService
	maxBytes int64
}

// NewWebHandler はWebHandlerの新しいインスタンスを生成します。
func NewWebHandler(svc WorkflowService, maxBytes int64) *WebHandler {
	return &WebHandler{svc: svc, maxBytes: maxBytes}
}

// Index は現在のステップのページを描画します。
//
// エンドポイント: GET /
func (h *WebHandler) Index(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context(), jwtmw.SessionID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, pageIndex, presenter.NewPageView(s, ""))
}

// Scrape はURLフォームを受け取りブランドDNAを抽出します。
//
// エンドポイント: POST /scrape
func (h *WebHandler) Scrape(c *gin.Context) {
	rawURL := c.PostForm("url")
	s, err := h.svc.SubmitURL(c.Request.Context(), jwtmw.SessionID(c), rawURL)
	if err != nil {
		h.reject(c, err, func(v presenter.PageView) presenter.PageView {
			v.URL = rawURL
			return v
		})
		return
	}
	c.HTML(http.StatusOK, pageIndex, presenter.NewPageView(s, ""))
}

// Critique は批評フォームを受け取り結果を描画します。
//
// エンドポイント: POST /critique
func (h *WebHandler) Critique(c *gin.Context) {
	// 壊れたフォームでも入力済みの値でページを描画し直すため、ここでは中断しません。
	var form critiquedto.CritiqueForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("critique form binding failed", "error", err, "remote_addr", c.ClientIP())
	}

	submitted := func(v presenter.PageView) presenter.PageView {
		if v.URLStep {
			return v
		}
		b := form.BrandInfo()
		return v.WithForm(presenter.NewFormView(&b, form.Description()))
	}

	payload, err := critiquehandler.ReadPayload(form, h.maxBytes)
	if err != nil {
		slog.Warn("upload rejected", "error", err, "remote_addr", c.ClientIP())
		h.render(c, critiquehandler.UploadErrorStatus(err), critiquehandler.UploadErrorMessage(err), submitted)
		return
	}

	s, err := h.svc.SubmitCritique(c.Request.Context(), jwtmw.SessionID(c), payload, form.BrandInfo(), form.Description())
	if err != nil {
		h.reject(c, err, submitted)
		return
	}

	v := submitted(presenter.NewPageView(s, ""))
	if v.Result != nil {
		v.Preview = presenter.NewPreviewView(payload)
	}
	c.HTML(http.StatusOK, pageIndex, v)
}

// Reset はURL入力ステップに戻してトップページへリダイレクトします。
//
// エンドポイント: POST /reset
func (h *WebHandler) Reset(c *gin.Context) {
	if _, err := h.svc.Reset(c.Request.Context(), jwtmw.SessionID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Guide はスコアリング基準のページを描画します。
//
// エンドポイント: GET /guide
func (h *WebHandler) Guide(c *gin.Context) {
	c.HTML(http.StatusOK, pageGuide, nil)
}

// About はアプリの説明ページを描画します。
//
// エンドポイント: GET /about
func (h *WebHandler) About(c *gin.Context) {
	c.HTML(http.StatusOK, pageAbout, nil)
}

// reject は検証エラーや競合をフラッシュメッセージとして現在のページに表示します。
func (h *WebHandler) reject(c *gin.Context, err error, adjust func(presenter.PageView) presenter.PageView) {
	status := workflowhandler.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.fail(c, err)
		return
	}
	slog.Warn("web request rejected", "error", err, "path", c.FullPath())
	h.render(c, status, err.Error(), adjust)
}

func (h *WebHandler) render(c *gin.Context, status int, flash string, adjust func(presenter.PageView) presenter.PageView) {
	s, err := h.svc.Get(c.Request.Context(), jwtmw.SessionID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	v := presenter.NewPageView(s, flash)
	if adjust != nil {
		v = adjust(v)
	}
	c.HTML(status, pageIndex, v)
}

func (h *WebHandler) fail(c *gin.Context, err error) {
	slog.Error("web request failed", "error", err, "path", c.FullPath())
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}
