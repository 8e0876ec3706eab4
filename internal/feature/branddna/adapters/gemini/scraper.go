// Package gemini はGemini APIを使用したブランドDNA抽出アダプターを提供します。
package gemini

import (
	"context"

	"brandai_backend/internal/feature/branddna/usecase"
	"brandai_backend/internal/platform/gemini"
)

// Generator はplatform/gemini.Clientのうち本アダプターが使うメソッドです。
type Generator interface {
	Generate(ctx context.Context, req gemini.Request) (string, error)
}

// Scraper はGoogle Search グラウンディングを有効にしてブランドDNAを生成します。
type Scraper struct {
	client Generator
	model  string
}

// ScraperがBrandGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.BrandGenerator = (*Scraper)(nil)

// NewScraper はScraperを作成します。modelが空の場合はgemini.DefaultModelを使用します。
func NewScraper(client Generator, model string) *Scraper {
	if model == "" {
		model = gemini.DefaultModel
	}
	return &Scraper{client: client, model: model}
}

// GenerateBrandDNA はプロンプトを送信し、モデルの生テキストを返します。
func (s *Scraper) GenerateBrandDNA(ctx context.Context, prompt string) (string, error) {
	return s.client.Generate(ctx, gemini.Request{
		Operation: "scrape",
		Model:     s.model,
		Parts:     []gemini.Part{gemini.TextPart(prompt)},
		WebSearch: true,
	})
}
