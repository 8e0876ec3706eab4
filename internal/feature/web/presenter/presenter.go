// Package presenter はワークフローの状態をHTMLテンプレート用のビューモデルに変換します。
package presenter

import (
	"html/template"
	"math"
	"strings"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	critique "brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/workflow/domain/entity"
	"brandai_backend/internal/platform/media"
)

// CSSクラス名。assets/app.css と対応しています。
const (
	ClassAccent = "accent"
	ClassWarn   = "warn"
	ClassKill   = "kill"
	ClassGray   = "gray"
)

// PreviewMaxBytes を超えるファイルはdata URLのプレビューを表示しません。
const PreviewMaxBytes = 5 << 20

// VerdictClass は判定に対応する色クラスを返します。未知の判定はgrayです。
func VerdictClass(v critique.Verdict) string {
	switch v {
	case critique.VerdictDeploy:
		return ClassAccent
	case critique.VerdictRevise:
		return ClassWarn
	case critique.VerdictKill, critique.VerdictUndeployable:
		return ClassKill
	default:
		return ClassGray
	}
}

// Percent は0〜1のスコアを四捨五入したパーセントに変換します。
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

// BarClass はパーセントに対応するスコアバーの色クラスを返します。
func BarClass(percent int) string {
	switch {
	case percent >= 80:
		return ClassAccent
	case percent >= 60:
		return ClassWarn
	default:
		return ClassKill
	}
}

// ScoreBar は1本のスコアバーです。
type ScoreBar struct {
	Label   string
	Percent int
	Class   string
}

func newScoreBar(label string, score float64) ScoreBar {
	p := Percent(score)
	return ScoreBar{Label: label, Percent: p, Class: BarClass(p)}
}

// Explanation はスコアの内訳と説明文です。
type Explanation struct {
	Label   string
	Percent int
	Text    string
}

// ResultView は批評結果の表示用モデルです。
type ResultView struct {
	Verdict      string
	VerdictClass string
	Undeployable bool

	// UNDEPLOYABLE のみ
	KillReasons  []string
	EmergencyFix string

	Overall      ScoreBar
	Viral        ScoreBar
	Scorecard    []ScoreBar
	Explanations []Explanation
	BrutalTruth  string
	WhatBroke    []string
	FixItFast    string

	TrendingNow       string
	CompetitorGap     string
	HotTopics         string
	ViralFormatOfWeek string
	CompetitorMove    string
	CulturalAlert     string

	TacticsUsed    []string
	TacticsMissing []string
}

// NewResultView は批評結果を表示用モデルに変換します。
func NewResultView(r *critique.CritiqueResult) *ResultView {
	if r == nil {
		return nil
	}
	v := &ResultView{
		Verdict:      string(r.Verdict),
		VerdictClass: VerdictClass(r.Verdict),
		Undeployable: r.Verdict.IsUndeployable(),
		KillReasons:  r.KillReasons,
		EmergencyFix: r.EmergencyFix,
	}
	if v.Undeployable {
		return v
	}

	v.Overall = newScoreBar("Overall Score", r.OverallScore)
	v.Viral = newScoreBar("Viral Potential", r.ViralPotential)
	v.Scorecard = []ScoreBar{
		newScoreBar("1. Brand Fit", r.Scores.BrandFit),
		newScoreBar("2. Clarity (AIDA)", r.Scores.Clarity),
		newScoreBar("3. Visual Quality", r.Scores.VisualQuality),
		newScoreBar("4. Safety", r.Scores.Safety),
	}
	v.Explanations = []Explanation{
		{Label: "1. Brand Fit", Percent: Percent(r.Scores.BrandFit), Text: r.ScoreExplanations.BrandFit},
		{Label: "2. Clarity", Percent: Percent(r.Scores.Clarity), Text: r.ScoreExplanations.Clarity},
		{Label: "3. Visual Quality", Percent: Percent(r.Scores.VisualQuality), Text: r.ScoreExplanations.VisualQuality},
		{Label: "4. Safety", Percent: Percent(r.Scores.Safety), Text: r.ScoreExplanations.Safety},
	}
	v.BrutalTruth = r.BrutalTruth
	v.WhatBroke = r.WhatBroke
	v.FixItFast = r.FixItFast
	v.TrendingNow = strings.Join(r.MarketIntel.TrendingNow, ", ")
	v.CompetitorGap = r.MarketIntel.CompetitorGap
	v.HotTopics = strings.Join(r.MarketIntel.HotTopics, ", ")
	v.ViralFormatOfWeek = r.MarketIntel.ViralFormatOfWeek
	v.CompetitorMove = r.MarketIntel.CompetitorMove
	v.CulturalAlert = r.MarketIntel.CulturalAlert
	v.TacticsUsed = r.ViralTacticsUsed
	v.TacticsMissing = r.ViralTacticsMissing
	return v
}

// FormView は批評フォームの入力値です。
type FormView struct {
	Name        string
	Personality string
	Colors      string
	Platform    string
	Competitors string
	Description string
}

// NewFormView はブランド情報からフォームの初期値を作成します。
func NewFormView(b *brand.BrandInfo, description string) FormView {
	f := FormView{Platform: string(brand.DefaultPlatform), Description: description}
	if b == nil {
		return f
	}
	f.Name = b.Name
	f.Personality = b.Personality
	f.Colors = b.Colors
	f.Competitors = b.Competitors
	if b.Platform != "" {
		f.Platform = b.Platform
	}
	return f
}

// PlatformOption はプラットフォーム選択肢です。
type PlatformOption struct {
	Value    string
	Selected bool
}

// PreviewView はアップロードしたクリエイティブのプレビューです。
type PreviewView struct {
	Filename string
	DataURL  template.URL
	IsVideo  bool
}

// NewPreviewView はペイロードからプレビューを作成します。大きすぎるファイルはnilを返します。
func NewPreviewView(p *media.Payload) *PreviewView {
	if p == nil || len(p.Data) > PreviewMaxBytes {
		return nil
	}
	return &PreviewView{
		Filename: p.Filename,
		// MIMEタイプはimage/*かvideo/*に検証済み
		DataURL: template.URL(p.DataURL()),
		IsVideo: p.IsVideo(),
	}
}

// PageView はトップページ全体の表示用モデルです。
type PageView struct {
	URLStep bool

	// URL_INPUT
	URL           string
	ScrapeLoading bool
	ScrapeError   string

	// CRITIQUE_FORM
	Form            FormView
	Platforms       []PlatformOption
	CritiqueLoading bool
	CritiqueError   string
	Result          *ResultView
	Preview         *PreviewView

	// Flash は現在のステップのフォームに表示する検証メッセージです。
	Flash string
	// Refresh が true の場合、処理中の状態を再取得するためページを自動更新します。
	Refresh bool
}

// NewPageView はセッションからページの表示用モデルを作成します。
func NewPageView(s *entity.Session, flash string) PageView {
	v := PageView{
		URLStep: s.Step == entity.StepURLInput,
		Flash:   flash,
	}

	if v.URLStep {
		v.ScrapeLoading = s.Scrape.Status == entity.StatusLoading
		if s.Scrape.Status == entity.StatusError {
			v.ScrapeError = s.Scrape.Error
		}
		v.Refresh = v.ScrapeLoading
		return v
	}

	v.Form = NewFormView(s.BrandInfo, "")
	v.Platforms = platformOptions(v.Form.Platform)
	v.CritiqueLoading = s.Critique.Status == entity.StatusLoading
	if s.Critique.Status == entity.StatusError {
		v.CritiqueError = s.Critique.Error
	}
	if s.Critique.Status == entity.StatusSuccess {
		v.Result = NewResultView(s.Result)
	}
	v.Refresh = v.CritiqueLoading
	return v
}

// WithForm はフォームの入力値を差し替えます。送信内容を再表示するときに使用します。
func (v PageView) WithForm(f FormView) PageView {
	v.Form = f
	v.Platforms = platformOptions(f.Platform)
	return v
}

func platformOptions(selected string) []PlatformOption {
	opts := make([]PlatformOption, 0, len(brand.Platforms()))
	for _, p := range brand.Platforms() {
		opts = append(opts, PlatformOption{Value: string(p), Selected: string(p) == selected})
	}
	return opts
}
