// Package gemini はGemini APIを使用した批評生成アダプターを提供します。
package gemini

import (
	"context"
	"errors"

	"brandai_backend/internal/feature/critique/usecase"
	"brandai_backend/internal/platform/gemini"
)

// Generator はplatform/gemini.Clientのうち本アダプターが使うメソッドです。
type Generator interface {
	Generate(ctx context.Context, req gemini.Request) (string, error)
}

// Critic は添付ファイルをインラインデータとして送り、採点基準をシステム指示に設定します。
type Critic struct {
	client Generator
}

// CriticがCriticインターフェースを実装していることをコンパイル時に検証します。
var _ usecase.Critic = (*Critic)(nil)

// NewCritic はCriticの新しいインスタンスを生成します。
func NewCritic(client Generator) *Critic {
	return &Critic{client: client}
}

// Critique は1つのユーザーコンテンツに「ファイル」「プロンプト」の順で2つのパートを入れて送信します。
func (c *Critic) Critique(ctx context.Context, req usecase.CritiqueRequest) (string, error) {
	if req.Payload == nil {
		return "", errors.New("critique request has no payload")
	}
	return c.client.Generate(ctx, gemini.Request{
		Operation: "critique",
		Model:     req.Model,
		System:    req.System,
		Parts: []gemini.Part{
			gemini.BlobPart(req.Payload.MIMEType, req.Payload.Data),
			gemini.TextPart(req.Prompt),
		},
		WebSearch: true,
	})
}
