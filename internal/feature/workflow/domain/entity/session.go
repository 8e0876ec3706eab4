// Package entity はworkflowフィーチャーの状態機械を定義します。
//
// フローは URL_INPUT → CRITIQUE_FORM の2ステップで、各ステップのリクエストは
// idle / loading / success / error のいずれかの状態を持ちます。
package entity

import (
	"time"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/workflow/domain"
)

// Step はフローのステップです。
type Step string

const (
	StepURLInput     Step = "URL_INPUT"
	StepCritiqueForm Step = "CRITIQUE_FORM"
)

// RequestStatus は1つのリクエストの状態です。
type RequestStatus string

const (
	StatusIdle    RequestStatus = "idle"
	StatusLoading RequestStatus = "loading"
	StatusSuccess RequestStatus = "success"
	StatusError   RequestStatus = "error"
)

// RequestState はスクレイピングまたは批評リクエストの状態です。
type RequestState struct {
	Status    RequestStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	StartedAt time.Time     `json:"started_at,omitzero"`
}

// inFlight はstaleAfterを過ぎていないloading状態かを返します。
// staleAfterが0以下の場合、loadingは期限切れになりません。
func (r RequestState) inFlight(now time.Time, staleAfter time.Duration) bool {
	if r.Status != StatusLoading {
		return false
	}
	return staleAfter <= 0 || now.Sub(r.StartedAt) < staleAfter
}

// Session は1ブラウザ（または1APIクライアント）のフロー状態です。
type Session struct {
	ID        string                 `json:"id"`
	Step      Step                   `json:"step"`
	Scrape    RequestState           `json:"scrape"`
	Critique  RequestState           `json:"critique"`
	BrandInfo *brand.BrandInfo       `json:"brand_info,omitempty"`
	Result    *entity.CritiqueResult `json:"result,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// NewSession は URL_INPUT ステップの空のセッションを作成します。
func NewSession(id string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		Step:      StepURLInput,
		Scrape:    RequestState{Status: StatusIdle},
		Critique:  RequestState{Status: StatusIdle},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired はセッションの有効期限が切れているかを返します。
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Touch は更新時刻と有効期限を延長します。
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// BeginScrape はスクレイピングを開始します。エラー表示はクリアされます。
func (s *Session) BeginScrape(requestID string, now time.Time, staleAfter time.Duration) error {
	if s.Step != StepURLInput {
		return domain.ErrInvalidTransition
	}
	if s.Scrape.inFlight(now, staleAfter) {
		return domain.ErrRequestInFlight
	}
	s.Scrape = RequestState{Status: StatusLoading, RequestID: requestID, StartedAt: now}
	return nil
}

// CompleteScrape はスクレイピング結果を反映し CRITIQUE_FORM に進みます。
// requestIDが現在のリクエストと一致しない場合（リセット済みなど）は何もせず false を返します。
func (s *Session) CompleteScrape(requestID string, info brand.BrandInfo) bool {
	if !s.Scrape.current(requestID) {
		return false
	}
	s.BrandInfo = &info
	s.Scrape = RequestState{Status: StatusSuccess}
	s.Step = StepCritiqueForm
	return true
}

// FailScrape はスクレイピングのエラーを表示用に保存します。ステップは変わりません。
func (s *Session) FailScrape(requestID, message string) bool {
	if !s.Scrape.current(requestID) {
		return false
	}
	s.Scrape = RequestState{Status: StatusError, Error: message}
	return true
}

// BeginCritique は批評を開始します。前回の結果とエラーはクリアされます。
// 送信されたブランド情報はフォームの内容として保存されます。
func (s *Session) BeginCritique(requestID string, info brand.BrandInfo, now time.Time, staleAfter time.Duration) error {
	if s.Step != StepCritiqueForm {
		return domain.ErrInvalidTransition
	}
	if s.Critique.inFlight(now, staleAfter) {
		return domain.ErrRequestInFlight
	}
	s.BrandInfo = &info
	s.Result = nil
	s.Critique = RequestState{Status: StatusLoading, RequestID: requestID, StartedAt: now}
	return nil
}

// CompleteCritique は批評結果を保存します。
func (s *Session) CompleteCritique(requestID string, result entity.CritiqueResult) bool {
	if !s.Critique.current(requestID) {
		return false
	}
	s.Result = &result
	s.Critique = RequestState{Status: StatusSuccess}
	return true
}

// FailCritique は批評のエラーを表示用に保存します。
func (s *Session) FailCritique(requestID, message string) bool {
	if !s.Critique.current(requestID) {
		return false
	}
	s.Result = nil
	s.Critique = RequestState{Status: StatusError, Error: message}
	return true
}

// Reset はどの状態からでも URL_INPUT に戻し、結果・エラー・ブランド情報を破棄します。
// 処理中のリクエストの結果は、完了しても反映されません。
func (s *Session) Reset() {
	s.Step = StepURLInput
	s.Scrape = RequestState{Status: StatusIdle}
	s.Critique = RequestState{Status: StatusIdle}
	s.BrandInfo = nil
	s.Result = nil
}

func (r RequestState) current(requestID string) bool {
	return r.Status == StatusLoading && r.RequestID == requestID
}
