// Package usecase はworkflowフィーチャーのビジネスロジックを実装します。
//
// 外部API呼び出しの前にloading状態を保存し、呼び出し中はロックを解放します。
// 完了時はリクエストIDが一致する場合のみ結果を反映するため、
// 呼び出し中にリセットされた場合はリセットが優先されます。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	branddna "brandai_backend/internal/feature/branddna/usecase"
	critique "brandai_backend/internal/feature/critique/domain/entity"
	critiqueuc "brandai_backend/internal/feature/critique/usecase"
	"brandai_backend/internal/feature/workflow/domain"
	"brandai_backend/internal/feature/workflow/domain/entity"
	"brandai_backend/internal/platform/media"
	"brandai_backend/internal/platform/metrics"
)

// SessionRepository はセッションの永続化を担当します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SessionRepository interface {
	// Get はセッションを返します。存在しない場合はdomain.ErrSessionNotFoundを返します。
	Get(ctx context.Context, id string) (*entity.Session, error)
	Save(ctx context.Context, s *entity.Session) error
	Delete(ctx context.Context, id string) error
}

// BrandScraper はURLからブランドDNAを抽出します。
type BrandScraper interface {
	ScrapeBrandInfo(ctx context.Context, rawURL string) (*brand.BrandInfo, error)
}

// Critiquer はクリエイティブを批評します。
type Critiquer interface {
	GetCritique(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*critique.CritiqueResult, error)
}

// Config はワークフローの時間設定です。
type Config struct {
	// SessionTTL はセッションの有効期間です。更新のたびに延長されます。
	SessionTTL time.Duration
	// RequestTimeout は1回のスクレイピング・批評の最大時間です。
	RequestTimeout time.Duration
	// StaleAfter を過ぎたloading状態は新しいリクエストで上書きできます。
	StaleAfter time.Duration
}

const (
	defaultSessionTTL     = 24 * time.Hour
	defaultRequestTimeout = 3 * time.Minute
)

// workflowUsecase は2ステップのフローを制御します。
type workflowUsecase struct {
	repo     SessionRepository
	scraper  BrandScraper
	critic   Critiquer
	cfg      Config
	locks    *keyedMutex
	now      func() time.Time
	newReqID func() string
}

// NewWorkflowUsecase はworkflowUsecaseの新しいインスタンスを生成します。
func NewWorkflowUsecase(repo SessionRepository, scraper BrandScraper, critic Critiquer, cfg Config) *workflowUsecase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = cfg.RequestTimeout + 30*time.Second
	}
	return &workflowUsecase{
		repo:     repo,
		scraper:  scraper,
		critic:   critic,
		cfg:      cfg,
		locks:    newKeyedMutex(),
		now:      time.Now,
		newReqID: uuid.NewString,
	}
}

// Get は現在のセッションを返します。存在しないか期限切れの場合は新しいセッションを返します。
func (u *workflowUsecase) Get(ctx context.Context, id string) (*entity.Session, error) {
	return u.load(ctx, id)
}

// SubmitURL はURLを検証し、ブランドDNAを抽出して CRITIQUE_FORM に進みます。
// URLが不正な場合はセッションを変更せずにエラーを返します。
// スクレイピングの失敗はエラーとして返さず、セッションの表示状態に保存します。
func (u *workflowUsecase) SubmitURL(ctx context.Context, id, rawURL string) (*entity.Session, error) {
	pageURL, err := branddna.ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	reqID := u.newReqID()
	if _, err := u.mutate(ctx, id, func(s *entity.Session) error {
		return s.BeginScrape(reqID, u.now(), u.cfg.StaleAfter)
	}); err != nil {
		return nil, err
	}

	callCtx, cancel := u.callContext(ctx)
	info, scrapeErr := u.scraper.ScrapeBrandInfo(callCtx, pageURL)
	cancel()

	return u.mutate(context.WithoutCancel(ctx), id, func(s *entity.Session) error {
		var applied bool
		if scrapeErr != nil {
			slog.Error("scrape failed", "session_id", id, "url", pageURL, "error", scrapeErr)
			applied = s.FailScrape(reqID, fmt.Sprintf("Scraping failed: %s", scrapeErr.Error()))
			u.observe("scrape", entity.StatusError, applied)
		} else {
			applied = s.CompleteScrape(reqID, *info)
			u.observe("scrape", entity.StatusSuccess, applied)
		}
		if !applied {
			slog.Info("scrape result discarded, session changed while in flight", "session_id", id)
		}
		return nil
	})
}

// SubmitCritique は入力を検証し、批評を生成して結果をセッションに保存します。
// 入力が不正な場合はセッションを変更せずにエラーを返します。
func (u *workflowUsecase) SubmitCritique(ctx context.Context, id string, payload *media.Payload, b brand.BrandInfo, description string) (*entity.Session, error) {
	if err := critiqueuc.ValidateSubmission(payload, b, description); err != nil {
		return nil, err
	}

	reqID := u.newReqID()
	if _, err := u.mutate(ctx, id, func(s *entity.Session) error {
		return s.BeginCritique(reqID, b, u.now(), u.cfg.StaleAfter)
	}); err != nil {
		return nil, err
	}

	callCtx, cancel := u.callContext(ctx)
	result, critiqueErr := u.critic.GetCritique(callCtx, payload, b, description)
	cancel()

	return u.mutate(context.WithoutCancel(ctx), id, func(s *entity.Session) error {
		var applied bool
		if critiqueErr != nil {
			slog.Error("critique failed", "session_id", id, "mime_type", payload.MIMEType, "error", critiqueErr)
			applied = s.FailCritique(reqID, fmt.Sprintf("Analysis failed: %s. Check console for details.", critiqueErr.Error()))
			u.observe("critique", entity.StatusError, applied)
		} else {
			applied = s.CompleteCritique(reqID, *result)
			u.observe("critique", entity.StatusSuccess, applied)
		}
		if !applied {
			slog.Info("critique result discarded, session changed while in flight", "session_id", id)
		}
		return nil
	})
}

// Reset は URL_INPUT に戻し、結果・エラー・ブランド情報を破棄します。
func (u *workflowUsecase) Reset(ctx context.Context, id string) (*entity.Session, error) {
	return u.mutate(ctx, id, func(s *entity.Session) error {
		s.Reset()
		metrics.WorkflowTransitions.WithLabelValues("reset", string(entity.StatusIdle)).Inc()
		return nil
	})
}

// mutate はセッションのロックを取得し、fnを適用して保存します。
func (u *workflowUsecase) mutate(ctx context.Context, id string, fn func(s *entity.Session) error) (*entity.Session, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	s, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		if errors.Is(err, domain.ErrRequestInFlight) {
			metrics.WorkflowTransitions.WithLabelValues("begin", "rejected").Inc()
		}
		return nil, err
	}
	s.Touch(u.now(), u.cfg.SessionTTL)
	if err := u.repo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

func (u *workflowUsecase) load(ctx context.Context, id string) (*entity.Session, error) {
	s, err := u.repo.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return entity.NewSession(id, u.now(), u.cfg.SessionTTL), nil
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	case s.Expired(u.now()):
		return entity.NewSession(id, u.now(), u.cfg.SessionTTL), nil
	}
	return s, nil
}

// callContext は利用者の切断でキャンセルされない、タイムアウト付きのコンテキストを返します。
func (u *workflowUsecase) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), u.cfg.RequestTimeout)
}

func (u *workflowUsecase) observe(op string, status entity.RequestStatus, applied bool) {
	label := string(status)
	if !applied {
		label = "discarded"
	}
	metrics.WorkflowTransitions.WithLabelValues(op, label).Inc()
}
