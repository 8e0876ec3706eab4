package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"brandai_backend/internal/config"
	brandgemini "brandai_backend/internal/feature/branddna/adapters/gemini"
	"brandai_backend/internal/feature/branddna/adapters/site"
	brandentity "brandai_backend/internal/feature/branddna/domain/entity"
	brandusecase "brandai_backend/internal/feature/branddna/usecase"
	critiquegemini "brandai_backend/internal/feature/critique/adapters/gemini"
	"brandai_backend/internal/feature/critique/adapters/vision"
	"brandai_backend/internal/feature/critique/domain/entity"
	critiqueusecase "brandai_backend/internal/feature/critique/usecase"
	workflowhandler "brandai_backend/internal/feature/workflow/transport/handler"
	workflowusecase "brandai_backend/internal/feature/workflow/usecase"
	"brandai_backend/internal/platform/cache"
	"brandai_backend/internal/platform/gemini"
	infrahttp "brandai_backend/internal/platform/http"
	"brandai_backend/internal/platform/media"
)

// siteFetchTimeout はトップページ取得の最大時間です。
const siteFetchTimeout = 10 * time.Second

// workflowSlack はGeminiのタイムアウトに加えて、サイト取得とレート制限の待ち時間に充てる余裕です。
const workflowSlack = 30 * time.Second

// CritiqueService は批評ユースケースのうちサーバーとCLIが使うメソッドです。
type CritiqueService interface {
	GetCritique(ctx context.Context, payload *media.Payload, b brandentity.BrandInfo, description string) (*entity.CritiqueResult, error)
	ModelFor(payload *media.Payload) string
}

// Usecases はサーバーとCLIが共有するユースケース群です。
type Usecases struct {
	Gemini   *gemini.Client
	Brand    *cache.CachingBrandRepository
	Critique CritiqueService

	closers []func()
}

// NewUsecases はスクレイピングと批評のユースケースを組み立てます。
// rdbがnilの場合、ブランドDNAはキャッシュされません。
func NewUsecases(ctx context.Context, cfg *config.Config, rdb *redis.Client) *Usecases {
	u := &Usecases{Gemini: NewGeminiClient(cfg.Gemini)}

	// SiteFetcherはnilインターフェースのまま渡すと取得を省略する
	var fetcher brandusecase.SiteFetcher
	if cfg.SitePrefetch {
		fetcher = site.NewFetcher(infrahttp.NewPublicClient(siteFetchTimeout, ""))
	}
	scraper := brandgemini.NewScraper(u.Gemini, cfg.Gemini.ScrapeModel)
	brandUC := brandusecase.NewBrandDNAUsecase(scraper, fetcher)
	u.Brand = cache.NewCachingBrandRepository(rdb, cfg.BrandCacheTTL, brandUC, "branddna")

	var logos critiqueusecase.LogoDetector
	if cfg.VisionEnabled {
		detector, err := vision.NewVisionLogoDetector(ctx, float32(cfg.VisionMinConfidence), cfg.VisionMaxLogos)
		if err != nil {
			slog.Warn("Vision API unavailable; logo hints are disabled", "error", err)
		} else {
			logos = detector
			u.closers = append(u.closers, func() {
				if err := detector.Close(); err != nil {
					slog.Error("failed to close vision client", "error", err)
				}
			})
		}
	}
	u.Critique = critiqueusecase.NewCritiqueUsecase(
		critiquegemini.NewCritic(u.Gemini),
		logos,
		critiqueusecase.Models{Image: cfg.Gemini.ImageModel, Video: cfg.Gemini.VideoModel},
	)
	return u
}

// NewWorkflow は2ステップのフローを制御するユースケースを組み立てます。
func NewWorkflow(cfg *config.Config, u *Usecases, repo workflowusecase.SessionRepository) workflowhandler.WorkflowService {
	return workflowusecase.NewWorkflowUsecase(repo, u.Brand, u.Critique, workflowusecase.Config{
		SessionTTL:     cfg.Session.TTL,
		RequestTimeout: cfg.Gemini.Timeout + workflowSlack,
	})
}

// Close は外部クライアントを解放します。
func (u *Usecases) Close() {
	for _, c := range u.closers {
		c()
	}
}
