// Package usecase はcritiqueフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/feature/critique/domain"
	"brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/platform/llmjson"
	"brandai_backend/internal/platform/media"
	"brandai_backend/internal/platform/metrics"
	"brandai_backend/internal/shared/llmerr"
)

const (
	// DefaultImageModel は画像の批評に使うモデルです。
	DefaultImageModel = "gemini-2.5-flash"
	// DefaultVideoModel は動画の批評に使うモデルです。動画の理解にはより大きいモデルを使います。
	DefaultVideoModel = "gemini-2.5-pro"

	logoDetectTimeout = 10 * time.Second
)

//go:embed schema/critique_result.json
var critiqueSchemaJSON []byte

var critiqueSchema = llmjson.MustSchema("CritiqueResult", critiqueSchemaJSON)

// Critic は添付ファイルとプロンプトをモデルに送信し、生のテキストを返します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Critic interface {
	Critique(ctx context.Context, req CritiqueRequest) (string, error)
}

// LogoDetector は画像からロゴを検出するリポジトリインターフェースです。
type LogoDetector interface {
	// DetectLogos は画像バイト列からロゴを検出し、ヒントとして使う検出結果を返します。
	// 信頼度による足切りと件数の上限は実装側で適用します。
	DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error)
}

// CritiqueRequest はCriticへの1回の依頼です。
type CritiqueRequest struct {
	Model   string
	System  string
	Prompt  string
	Payload *media.Payload
}

// Models は添付ファイルの種類ごとのモデル名です。
type Models struct {
	Image string
	Video string
}

// critiqueUsecase は批評生成のビジネスロジックを提供します。
type critiqueUsecase struct {
	critic Critic
	logos  LogoDetector
	models Models
}

// NewCritiqueUsecase はcritiqueUsecaseの新しいインスタンスを生成します。
// logosがnilの場合、ロゴ検出は行いません。
func NewCritiqueUsecase(critic Critic, logos LogoDetector, models Models) *critiqueUsecase {
	if models.Image == "" {
		models.Image = DefaultImageModel
	}
	if models.Video == "" {
		models.Video = DefaultVideoModel
	}
	return &critiqueUsecase{critic: critic, logos: logos, models: models}
}

// ValidateSubmission は批評フォームの入力を検証します。
// ファイルの有無は他の項目より先に検査されます。
func ValidateSubmission(payload *media.Payload, b brand.BrandInfo, description string) error {
	if payload == nil || len(payload.Data) == 0 {
		return domain.ErrFileRequired
	}
	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Platform) == "" || strings.TrimSpace(description) == "" {
		return domain.ErrMissingFields
	}
	return nil
}

// ModelFor は添付ファイルの種類に応じたモデル名を返します。
func (u *critiqueUsecase) ModelFor(payload *media.Payload) string {
	if payload.IsVideo() {
		return u.models.Video
	}
	return u.models.Image
}

// GetCritique はクリエイティブを批評し、構造化された結果を返します。
func (u *critiqueUsecase) GetCritique(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*entity.CritiqueResult, error) {
	if err := ValidateSubmission(payload, b, description); err != nil {
		return nil, err
	}

	model := u.ModelFor(payload)
	hints := u.detectLogos(ctx, payload)

	text, err := u.critic.Critique(ctx, CritiqueRequest{
		Model:   model,
		System:  SystemPrompt,
		Prompt:  BuildPrompt(b, description, hints),
		Payload: payload,
	})
	if err != nil {
		if errors.Is(err, llmerr.ErrMissingCredential) {
			return nil, domain.NewAnalysisError(llmerr.KindMissingCredential, err)
		}
		return nil, domain.NewAnalysisError(llmerr.KindTransport, err)
	}

	var result entity.CritiqueResult
	if err := llmjson.Decode(text, critiqueSchema, &result); err != nil {
		slog.Error("Failed to parse JSON from Gemini response", "model", model, "error", err, "raw", text)
		return nil, domain.NewAnalysisError(llmerr.KindMalformedResponse, fmt.Errorf("decode critique: %w", err))
	}

	metrics.Verdicts.WithLabelValues(result.Verdict.MetricLabel()).Inc()
	return &result, nil
}

// detectLogos は画像のロゴを検出してヒントにします。失敗しても批評は継続します。
func (u *critiqueUsecase) detectLogos(ctx context.Context, payload *media.Payload) []entity.DetectedLogo {
	if u.logos == nil || !payload.IsImage() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, logoDetectTimeout)
	defer cancel()

	found, err := u.logos.DetectLogos(ctx, payload.Data)
	if err != nil {
		slog.Warn("logo detection failed, continuing without hints", "error", err)
		return nil
	}
	return found
}
