package presenter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	critique "brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/web/presenter"
	"brandai_backend/internal/feature/workflow/domain/entity"
	"brandai_backend/internal/platform/media"
)

func TestVerdictClass(t *testing.T) {
	tests := []struct {
		verdict  critique.Verdict
		expected string
	}{
		{critique.VerdictDeploy, presenter.ClassAccent},
		{critique.VerdictRevise, presenter.ClassWarn},
		{critique.VerdictKill, presenter.ClassKill},
		{critique.VerdictUndeployable, presenter.ClassKill},
		{critique.Verdict("MAYBE"), presenter.ClassGray},
		{critique.Verdict(""), presenter.ClassGray},
	}

	for _, tt := range tests {
		t.Run(string(tt.verdict), func(t *testing.T) {
			assert.Equal(t, tt.expected, presenter.VerdictClass(tt.verdict))
		})
	}
}

func TestPercentAndBarClass(t *testing.T) {
	tests := []struct {
		score   float64
		percent int
		class   string
	}{
		{0.86, 86, presenter.ClassAccent},
		{0.8, 80, presenter.ClassAccent},
		{0.795, 80, presenter.ClassAccent},
		{0.79, 79, presenter.ClassWarn},
		{0.6, 60, presenter.ClassWarn},
		{0.594, 59, presenter.ClassKill},
		{0, 0, presenter.ClassKill},
		{1, 100, presenter.ClassAccent},
	}

	for _, tt := range tests {
		p := presenter.Percent(tt.score)
		assert.Equal(t, tt.percent, p, "score %v", tt.score)
		assert.Equal(t, tt.class, presenter.BarClass(p), "score %v", tt.score)
	}
}

func TestNewResultView(t *testing.T) {
	r := &critique.CritiqueResult{
		Verdict:        critique.VerdictDeploy,
		OverallScore:   0.86,
		ViralPotential: 0.62,
		Scores:         critique.Scores{BrandFit: 0.9, Clarity: 0.8, VisualQuality: 0.85, Safety: 0.89},
		MarketIntel:    critique.MarketIntel{TrendingNow: []string{"POV hooks", "duets"}, CompetitorGap: "No humor"},
		WhatBroke:      []string{"CTA too late"},
	}

	v := presenter.NewResultView(r)

	require.NotNil(t, v)
	assert.Equal(t, "DEPLOY", v.Verdict)
	assert.Equal(t, presenter.ClassAccent, v.VerdictClass)
	assert.False(t, v.Undeployable)
	assert.Equal(t, presenter.ScoreBar{Label: "Overall Score", Percent: 86, Class: presenter.ClassAccent}, v.Overall)
	assert.Equal(t, presenter.ScoreBar{Label: "Viral Potential", Percent: 62, Class: presenter.ClassWarn}, v.Viral)
	require.Len(t, v.Scorecard, 4)
	assert.Equal(t, 90, v.Scorecard[0].Percent)
	assert.Equal(t, "POV hooks, duets", v.TrendingNow)
	assert.Equal(t, []string{"CTA too late"}, v.WhatBroke)

	assert.Nil(t, presenter.NewResultView(nil))
}

func TestNewResultView_Undeployable(t *testing.T) {
	r := &critique.CritiqueResult{
		Verdict:      critique.VerdictUndeployable,
		KillReasons:  []string{"Misleading price claim"},
		EmergencyFix: "Remove the price.",
	}

	v := presenter.NewResultView(r)

	assert.True(t, v.Undeployable)
	assert.Equal(t, presenter.ClassKill, v.VerdictClass)
	assert.Equal(t, []string{"Misleading price claim"}, v.KillReasons)
	assert.Equal(t, "Remove the price.", v.EmergencyFix)
	assert.Empty(t, v.Scorecard)
}

func TestNewPageView(t *testing.T) {
	now := time.Now()
	acme := brand.BrandInfo{Name: "Acme", Personality: "Bold", Colors: "Red, Black", Platform: "TikTok", Competitors: "Globex"}

	t.Run("url step with scrape error", func(t *testing.T) {
		s := entity.NewSession("s", now, time.Hour)
		s.Scrape = entity.RequestState{Status: entity.StatusError, Error: "Scraping failed: boom"}

		v := presenter.NewPageView(s, "")

		assert.True(t, v.URLStep)
		assert.Equal(t, "Scraping failed: boom", v.ScrapeError)
		assert.False(t, v.Refresh)
	})

	t.Run("url step while loading refreshes", func(t *testing.T) {
		s := entity.NewSession("s", now, time.Hour)
		s.Scrape.Status = entity.StatusLoading

		v := presenter.NewPageView(s, "")

		assert.True(t, v.ScrapeLoading)
		assert.True(t, v.Refresh)
	})

	t.Run("critique form is prefilled from brand info", func(t *testing.T) {
		s := entity.NewSession("s", now, time.Hour)
		s.Step = entity.StepCritiqueForm
		s.BrandInfo = &acme

		v := presenter.NewPageView(s, "Please upload an image or video file.")

		assert.False(t, v.URLStep)
		assert.Equal(t, presenter.FormView{Name: "Acme", Personality: "Bold", Colors: "Red, Black", Platform: "TikTok", Competitors: "Globex"}, v.Form)
		require.Len(t, v.Platforms, 4)
		assert.True(t, v.Platforms[0].Selected)
		assert.Equal(t, "Please upload an image or video file.", v.Flash)
		assert.Nil(t, v.Result)
	})

	t.Run("critique success shows result", func(t *testing.T) {
		s := entity.NewSession("s", now, time.Hour)
		s.Step = entity.StepCritiqueForm
		s.BrandInfo = &acme
		s.Critique.Status = entity.StatusSuccess
		s.Result = &critique.CritiqueResult{Verdict: critique.VerdictDeploy, OverallScore: 0.86}

		v := presenter.NewPageView(s, "")

		require.NotNil(t, v.Result)
		assert.Equal(t, "DEPLOY", v.Result.Verdict)
		assert.Equal(t, 86, v.Result.Overall.Percent)
	})

	t.Run("with form keeps submitted values", func(t *testing.T) {
		s := entity.NewSession("s", now, time.Hour)
		s.Step = entity.StepCritiqueForm
		s.BrandInfo = &acme

		v := presenter.NewPageView(s, "").WithForm(presenter.FormView{Name: "Acme 2", Platform: "YouTube Shorts"})

		assert.Equal(t, "Acme 2", v.Form.Name)
		assert.True(t, v.Platforms[2].Selected)
		assert.False(t, v.Platforms[0].Selected)
	})
}

func TestNewPreviewView(t *testing.T) {
	p := &media.Payload{Filename: "ad.png", MIMEType: "image/png", Data: []byte("png")}

	v := presenter.NewPreviewView(p)

	require.NotNil(t, v)
	assert.Equal(t, "data:image/png;base64,cG5n", string(v.DataURL))
	assert.False(t, v.IsVideo)

	big := &media.Payload{Filename: "ad.mp4", MIMEType: "video/mp4", Data: make([]byte, presenter.PreviewMaxBytes+1)}
	assert.Nil(t, presenter.NewPreviewView(big))
	assert.Nil(t, presenter.NewPreviewView(nil))
}
