// Package gemini はGoogle Gemini APIの共通クライアントを提供します。
//
// APIキーの確認、レートリミット、メトリクス記録をここに集約し、
// 各フィーチャーのアダプターはプロンプトの組み立てだけを担当します。
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"brandai_backend/internal/platform/metrics"
	"brandai_backend/internal/shared/llmerr"
	"brandai_backend/internal/shared/ratelimiter"
)

// DefaultModel はGemini APIのデフォルトモデルです。
const DefaultModel = "gemini-2.5-flash"

// Config はクライアントの設定です。
type Config struct {
	APIKey  string
	Timeout time.Duration
}

// Part はリクエストに含めるテキストまたはバイナリの断片です。
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart はテキストのPartを作成します。
func TextPart(text string) Part {
	return Part{Text: text}
}

// BlobPart はインラインデータのPartを作成します。
func BlobPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// Request は1回のGenerateContent呼び出しです。
type Request struct {
	// Operation はメトリクスのラベルです（scrape, critique など）。
	Operation string
	Model     string
	System    string
	Parts     []Part
	// WebSearch が true の場合、Google Search グラウンディングを有効にします。
	WebSearch bool
}

// contentGenerator はgenai.Modelsのうち本パッケージが使うメソッドです。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client はGemini APIクライアントのラッパーです。
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    ratelimiter.Limiter

	mu  sync.Mutex
	gen contentGenerator
}

// NewClient はClientを作成します。genaiクライアントは初回呼び出し時に生成されるため、
// APIキーが未設定でも起動は失敗しません。
func NewClient(cfg Config, httpClient *http.Client, limiter ratelimiter.Limiter) *Client {
	return &Client{cfg: cfg, httpClient: httpClient, limiter: limiter}
}

// Configured はAPIキーが設定されているかを返します。
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Generate はリクエストを送信し、レスポンスのテキストを返します。
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		metrics.GeminiRequests.WithLabelValues(req.Operation, "missing_key").Inc()
		return "", llmerr.ErrMissingCredential
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	gen, err := c.generator(ctx)
	if err != nil {
		metrics.GeminiRequests.WithLabelValues(req.Operation, "error").Inc()
		return "", err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := gen.GenerateContent(ctx, model, []*genai.Content{buildContent(req.Parts)}, buildConfig(req))
	metrics.GeminiDuration.WithLabelValues(req.Operation, model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GeminiRequests.WithLabelValues(req.Operation, "error").Inc()
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	metrics.GeminiRequests.WithLabelValues(req.Operation, "ok").Inc()

	return resp.Text(), nil
}

// generator はgenaiクライアントを遅延生成します。
func (c *Client) generator(ctx context.Context) (contentGenerator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != nil {
		return c.gen, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.gen = client.Models
	return c.gen, nil
}

func buildContent(parts []Part) *genai.Content {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Data != nil {
			out = append(out, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return genai.NewContentFromParts(out, genai.RoleUser)
}

func buildConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}
