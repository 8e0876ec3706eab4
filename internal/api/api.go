// Package api はJSON APIのリクエスト・レスポンス型を定義します。
package api

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文を持たない操作の成功レスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// ScrapeRequest はPOST /v1/brand/scrape のリクエストです。
type ScrapeRequest struct {
	URL string `json:"url" binding:"required"`
	// Refresh が true の場合、キャッシュを無視して再分析します。
	Refresh bool `json:"refresh"`
}

// BrandInfo はブランドDNAのJSON表現です。
type BrandInfo struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Colors      string `json:"colors"`
	Platform    string `json:"platform"`
	Competitors string `json:"competitors"`
}

// SubmitURLRequest はPOST /v1/session/url のリクエストです。
type SubmitURLRequest struct {
	URL string `json:"url" form:"url"`
}

// RequestState はワークフローの各リクエストの状態です。
type RequestState struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse は /healthz のレスポンスです。
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
