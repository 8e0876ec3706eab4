// Package entity はcritiqueフィーチャーのドメインモデルを定義します。
package entity

// Verdict はクリエイティブの最終判定です。
type Verdict string

const (
	VerdictDeploy       Verdict = "DEPLOY"
	VerdictRevise       Verdict = "REVISE"
	VerdictKill         Verdict = "KILL"
	VerdictUndeployable Verdict = "UNDEPLOYABLE - KILL IT"
)

// IsUndeployable はキルスイッチで即時却下された判定かを返します。
// この場合スコアは返されず、KillReasonsとEmergencyFixのみが有効です。
func (v Verdict) IsUndeployable() bool {
	return v == VerdictUndeployable
}

// IsKnown は4つの定義済み判定のいずれかであるかを返します。
func (v Verdict) IsKnown() bool {
	switch v {
	case VerdictDeploy, VerdictRevise, VerdictKill, VerdictUndeployable:
		return true
	}
	return false
}

// MetricLabel はメトリクスのラベル値を返します。未知の判定は "other" にまとめます。
func (v Verdict) MetricLabel() string {
	if v.IsKnown() {
		return string(v)
	}
	return "other"
}

// Scores は4つの診断スコア（0.0〜1.0）です。
type Scores struct {
	BrandFit      float64 `json:"brand_fit"`
	Clarity       float64 `json:"clarity"`
	VisualQuality float64 `json:"visual_quality"`
	Safety        float64 `json:"safety"`
}

// ScoreExplanations は各スコアの一文の説明です。
type ScoreExplanations struct {
	BrandFit      string `json:"brand_fit"`
	Clarity       string `json:"clarity"`
	VisualQuality string `json:"visual_quality"`
	Safety        string `json:"safety"`
}

// MarketIntel は検索グラウンディングで得た市場情報です。
// HotTopics以降は旧形式の出力でのみ返される任意項目です。
type MarketIntel struct {
	TrendingNow       []string `json:"trending_now"`
	CompetitorGap     string   `json:"competitor_gap"`
	HotTopics         []string `json:"hot_topics,omitempty"`
	ViralFormatOfWeek string   `json:"viral_format_of_week,omitempty"`
	CompetitorMove    string   `json:"competitor_move,omitempty"`
	CulturalAlert     string   `json:"cultural_alert,omitempty"`
}

// CritiqueResult はモデルが返す批評結果です。
type CritiqueResult struct {
	Verdict             Verdict           `json:"verdict"`
	OverallScore        float64           `json:"overall_score"`
	ViralPotential      float64           `json:"viral_potential"`
	Scores              Scores            `json:"scores"`
	ScoreExplanations   ScoreExplanations `json:"score_explanations"`
	BrutalTruth         string            `json:"brutal_truth"`
	WhatBroke           []string          `json:"what_broke,omitempty"`
	KillReasons         []string          `json:"kill_reasons,omitempty"`
	EmergencyFix        string            `json:"emergency_fix,omitempty"`
	MarketIntel         MarketIntel       `json:"market_intel"`
	ViralTacticsUsed    []string          `json:"viral_tactics_used"`
	ViralTacticsMissing []string          `json:"viral_tactics_missing"`
	FixItFast           string            `json:"fix_it_fast"`
}

// DetectedLogo は画像から検出されたロゴを表します。
type DetectedLogo struct {
	Name       string  // 検出された企業名
	Confidence float32 // 信頼度スコア（0.0 ~ 1.0）
}
