package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	critique "brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/workflow/domain"
)

var (
	t0   = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	acme = brand.BrandInfo{Name: "Acme", Personality: "Bold", Colors: "Red, Black", Platform: "TikTok", Competitors: "Globex"}
)

func TestSession_ScrapeFlow(t *testing.T) {
	s := NewSession("s1", t0, time.Hour)
	assert.Equal(t, StepURLInput, s.Step)
	assert.Equal(t, StatusIdle, s.Scrape.Status)

	require.NoError(t, s.BeginScrape("r1", t0, time.Minute))
	assert.Equal(t, StatusLoading, s.Scrape.Status)

	// 処理中の二重送信は拒否される
	assert.ErrorIs(t, s.BeginScrape("r2", t0.Add(time.Second), time.Minute), domain.ErrRequestInFlight)

	// 古いリクエストIDの完了は無視される
	assert.False(t, s.CompleteScrape("r2", acme))
	assert.Equal(t, StepURLInput, s.Step)

	assert.True(t, s.CompleteScrape("r1", acme))
	assert.Equal(t, StepCritiqueForm, s.Step)
	assert.Equal(t, StatusSuccess, s.Scrape.Status)
	assert.Equal(t, &acme, s.BrandInfo)

	// CRITIQUE_FORM ではURL送信できない
	assert.ErrorIs(t, s.BeginScrape("r3", t0, time.Minute), domain.ErrInvalidTransition)
}

func TestSession_ScrapeErrorClearedOnRetry(t *testing.T) {
	s := NewSession("s1", t0, time.Hour)
	require.NoError(t, s.BeginScrape("r1", t0, time.Minute))
	assert.True(t, s.FailScrape("r1", "Scraping failed: boom"))
	assert.Equal(t, StatusError, s.Scrape.Status)
	assert.Equal(t, "Scraping failed: boom", s.Scrape.Error)

	require.NoError(t, s.BeginScrape("r2", t0, time.Minute))
	assert.Empty(t, s.Scrape.Error)
}

func TestSession_StaleLoadingCanBeOverridden(t *testing.T) {
	s := NewSession("s1", t0, time.Hour)
	require.NoError(t, s.BeginScrape("r1", t0, time.Minute))

	assert.ErrorIs(t, s.BeginScrape("r2", t0.Add(59*time.Second), time.Minute), domain.ErrRequestInFlight)
	assert.NoError(t, s.BeginScrape("r2", t0.Add(time.Minute), time.Minute))
	assert.False(t, s.CompleteScrape("r1", acme))
}

func TestSession_CritiqueFlow(t *testing.T) {
	s := NewSession("s1", t0, time.Hour)
	assert.ErrorIs(t, s.BeginCritique("c0", acme, t0, time.Minute), domain.ErrInvalidTransition)

	require.NoError(t, s.BeginScrape("r1", t0, time.Minute))
	require.True(t, s.CompleteScrape("r1", acme))

	edited := acme
	edited.Personality = "Bolder"
	require.NoError(t, s.BeginCritique("c1", edited, t0, time.Minute))
	assert.Equal(t, "Bolder", s.BrandInfo.Personality)
	assert.ErrorIs(t, s.BeginCritique("c2", edited, t0, time.Minute), domain.ErrRequestInFlight)

	assert.True(t, s.FailCritique("c1", "Analysis failed: x. Check console for details."))
	assert.Equal(t, StatusError, s.Critique.Status)

	require.NoError(t, s.BeginCritique("c2", edited, t0, time.Minute))
	assert.Empty(t, s.Critique.Error)
	assert.True(t, s.CompleteCritique("c2", critique.CritiqueResult{Verdict: critique.VerdictDeploy, OverallScore: 0.86}))
	assert.Equal(t, StatusSuccess, s.Critique.Status)
	require.NotNil(t, s.Result)

	// 次の批評開始で前回の結果はクリアされる
	require.NoError(t, s.BeginCritique("c3", edited, t0, time.Minute))
	assert.Nil(t, s.Result)
}

func TestSession_ResetFromCritiqueStep(t *testing.T) {
	s := NewSession("s1", t0, time.Hour)
	require.NoError(t, s.BeginScrape("r1", t0, time.Minute))
	require.True(t, s.CompleteScrape("r1", acme))
	require.NoError(t, s.BeginCritique("c1", acme, t0, time.Minute))
	require.True(t, s.FailCritique("c1", "Analysis failed"))

	s.Reset()

	assert.Equal(t, StepURLInput, s.Step)
	assert.Nil(t, s.BrandInfo)
	assert.Nil(t, s.Result)
	assert.Equal(t, RequestState{Status: StatusIdle}, s.Scrape)
	assert.Equal(t, RequestState{Status: StatusIdle}, s.Critique)
}

func TestSession_ResetDiscardsInFlightResult(t *testing.T) {
	s := NewSession("s1", t0, time.Hour)
	require.NoError(t, s.BeginScrape("r1", t0, time.Minute))
	require.True(t, s.CompleteScrape("r1", acme))
	require.NoError(t, s.BeginCritique("c1", acme, t0, time.Minute))

	s.Reset()

	assert.False(t, s.CompleteCritique("c1", critique.CritiqueResult{Verdict: critique.VerdictKill}))
	assert.Nil(t, s.Result)
	assert.Equal(t, StepURLInput, s.Step)
}

func TestSession_Expiry(t *testing.T) {
	s := NewSession("s1", t0, time.Hour)
	assert.False(t, s.Expired(t0.Add(59*time.Minute)))
	assert.True(t, s.Expired(t0.Add(time.Hour)))

	s.Touch(t0.Add(30*time.Minute), time.Hour)
	assert.False(t, s.Expired(t0.Add(time.Hour)))
}
