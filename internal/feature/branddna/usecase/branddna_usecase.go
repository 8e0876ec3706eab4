// Package usecase はbranddnaフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"brandai_backend/internal/feature/branddna/domain"
	"brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/platform/llmjson"
	"brandai_backend/internal/shared/llmerr"
)

//go:embed schema/brand_info.json
var brandInfoSchemaJSON []byte

var brandInfoSchema = llmjson.MustSchema("BrandInfo", brandInfoSchemaJSON)

// BrandGenerator はスクレイピング用プロンプトをモデルに送信し、生のテキストを返します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type BrandGenerator interface {
	GenerateBrandDNA(ctx context.Context, prompt string) (string, error)
}

// SiteFetcher はトップページのメタ情報を取得します。失敗してもスクレイピングは継続します。
type SiteFetcher interface {
	Snapshot(ctx context.Context, pageURL string) (entity.SiteSnapshot, error)
}

// BrandScraper はブランドDNA抽出の入口です。キャッシュのデコレーターやハンドラーが利用します。
type BrandScraper interface {
	ScrapeBrandInfo(ctx context.Context, rawURL string) (*entity.BrandInfo, error)
}

var _ BrandScraper = (*brandDNAUsecase)(nil)

// sharedScrapeTimeout はまとめられた1回のスクレイピングの最大時間です。
// 呼び出し元のキャンセルとは切り離されるため、ここで上限を設けます。
const sharedScrapeTimeout = 3 * time.Minute

// brandDNAUsecase はブランドDNA抽出のビジネスロジックを提供します。
type brandDNAUsecase struct {
	generator BrandGenerator
	site      SiteFetcher
	group     singleflight.Group
}

// NewBrandDNAUsecase はbrandDNAUsecaseの新しいインスタンスを生成します。
// siteがnilの場合、メタ情報の取得は行いません。
func NewBrandDNAUsecase(generator BrandGenerator, site SiteFetcher) *brandDNAUsecase {
	return &brandDNAUsecase{generator: generator, site: site}
}

// ValidateURL は入力が絶対http(s) URLであることを確認し、正規化した文字列を返します。
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", domain.ErrInvalidURL
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", domain.ErrInvalidURL
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// ScrapeBrandInfo はURLのWebサイトを分析してブランドDNAを返します。
// 同じURLへの同時リクエストは1回のモデル呼び出しにまとめられます。
func (u *brandDNAUsecase) ScrapeBrandInfo(ctx context.Context, rawURL string) (*entity.BrandInfo, error) {
	pageURL, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	// 共有される呼び出しは最初の呼び出し元のキャンセルに影響されない
	ch := u.group.DoChan(pageURL, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedScrapeTimeout)
		defer cancel()
		return u.scrape(callCtx, pageURL)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("scrape result shared with concurrent request", "url", pageURL)
		}
		info := *res.Val.(*entity.BrandInfo)
		return &info, nil
	}
}

func (u *brandDNAUsecase) scrape(ctx context.Context, pageURL string) (*entity.BrandInfo, error) {
	var snap entity.SiteSnapshot
	if u.site != nil {
		s, err := u.site.Snapshot(ctx, pageURL)
		if err != nil {
			slog.Warn("site snapshot failed, continuing without hints", "url", pageURL, "error", err)
		} else {
			snap = s
		}
	}

	text, err := u.generator.GenerateBrandDNA(ctx, BuildScrapePrompt(pageURL, snap))
	if err != nil {
		if errors.Is(err, llmerr.ErrMissingCredential) {
			return nil, domain.NewScrapeError(llmerr.KindMissingCredential, err)
		}
		return nil, domain.NewScrapeError(llmerr.KindTransport, err)
	}

	var info entity.BrandInfo
	if err := llmjson.Decode(text, brandInfoSchema, &info); err != nil {
		slog.Error("Failed to parse JSON from website scraping response", "url", pageURL, "error", err, "raw", text)
		return nil, domain.NewScrapeError(llmerr.KindMalformedResponse, fmt.Errorf("decode brand info: %w", err))
	}
	info.Normalize()
	return &info, nil
}
