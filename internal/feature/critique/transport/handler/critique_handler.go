// Package handler はcritiqueフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"brandai_backend/internal/api"
	brand "brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/feature/critique/domain"
	"brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/critique/transport/http/dto"
	"brandai_backend/internal/platform/media"
	"brandai_backend/internal/shared/llmerr"
)

// CritiqueService は批評生成のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CritiqueService interface {
	GetCritique(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*entity.CritiqueResult, error)
}

// CritiqueHandler は批評生成のHTTPリクエストを処理します。
type CritiqueHandler struct {
	svc      CritiqueService
	maxBytes int64
}

// NewCritiqueHandler はCritiqueHandlerの新しいインスタンスを生成します。
func NewCritiqueHandler(svc CritiqueService, maxBytes int64) *CritiqueHandler {
	return &CritiqueHandler{svc: svc, maxBytes: maxBytes}
}

// Critique はアップロードされたクリエイティブを批評します。
//
// エンドポイント: POST /v1/critique
// Content-Type: multipart/form-data
// フィールド: file, name, personality, colors, platform, competitors, content_description
func (h *CritiqueHandler) Critique(c *gin.Context) {
	var form dto.CritiqueForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("critique form binding failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: domain.ErrFileRequired.Error()})
		return
	}

	payload, err := ReadPayload(form, h.maxBytes)
	if err != nil {
		slog.Warn("upload rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(UploadErrorStatus(err), api.ErrorResponse{Error: UploadErrorMessage(err)})
		return
	}

	result, err := h.svc.GetCritique(c.Request.Context(), payload, form.BrandInfo(), form.Description())
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("critique failed", "error", err, "status", status)
		} else {
			slog.Warn("critique rejected", "error", err)
		}
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReadPayload はフォームのファイルをPayloadに変換します。ファイルがない場合は (nil, nil) を返し、
// 判定はユースケースの検証に任せます。
func ReadPayload(form dto.CritiqueForm, maxBytes int64) (*media.Payload, error) {
	if form.File == nil {
		return nil, nil
	}
	return media.FromFileHeader(form.File, maxBytes)
}

// StatusFor は批評エラーをHTTPステータスに変換します。
func StatusFor(err error) int {
	if errors.Is(err, domain.ErrFileRequired) || errors.Is(err, domain.ErrMissingFields) {
		return http.StatusBadRequest
	}
	return llmerr.KindOf(err).HTTPStatus()
}

// UploadErrorStatus はアップロードエラーをHTTPステータスに変換します。
func UploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, media.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrEmpty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// UploadErrorMessage は利用者に表示するアップロードエラーの文言を返します。
func UploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return "The file is too large."
	case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrEmpty):
		return domain.ErrFileRequired.Error()
	default:
		return "Failed to read the uploaded file."
	}
}
