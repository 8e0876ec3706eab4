// Package site はWebサイトのトップページからブランドのヒントを取得します。
package site

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/feature/branddna/usecase"
)

// maxBodyBytes はHTMLとして読み込む最大サイズです。<head>が含まれていれば十分です。
const maxBodyBytes = 1 << 20

// Fetcher はHTTPでページを取得し、<head>内のメタ情報を抽出します。
type Fetcher struct {
	client *http.Client
}

// FetcherがSiteFetcherを実装していることをコンパイル時に検証します。
var _ usecase.SiteFetcher = (*Fetcher)(nil)

// NewFetcher はFetcherの新しいインスタンスを生成します。
func NewFetcher(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Snapshot はページのtitle、description、theme-color、og:site_nameを返します。
func (f *Fetcher) Snapshot(ctx context.Context, pageURL string) (entity.SiteSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return entity.SiteSnapshot{}, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := f.client.Do(req)
	if err != nil {
		return entity.SiteSnapshot{}, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return entity.SiteSnapshot{}, fmt.Errorf("site http %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return entity.SiteSnapshot{}, fmt.Errorf("site returned %s, not html", ct)
	}

	return Parse(io.LimitReader(res.Body, maxBodyBytes))
}

// Parse はHTML文書からSiteSnapshotを抽出します。
func Parse(r io.Reader) (entity.SiteSnapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return entity.SiteSnapshot{}, fmt.Errorf("parse html: %w", err)
	}

	var snap entity.SiteSnapshot
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if snap.Title == "" && n.FirstChild != nil {
					snap.Title = clean(n.FirstChild.Data)
				}
			case atom.Meta:
				applyMeta(&snap, n)
			case atom.Body:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return snap, nil
}

func applyMeta(snap *entity.SiteSnapshot, n *html.Node) {
	var key, content string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "name", "property":
			key = strings.ToLower(a.Val)
		case "content":
			content = clean(a.Val)
		}
	}
	if content == "" {
		return
	}
	switch key {
	case "description":
		snap.Description = content
	case "og:description":
		if snap.Description == "" {
			snap.Description = content
		}
	case "theme-color":
		snap.ThemeColor = content
	case "og:site_name", "application-name":
		if snap.SiteName == "" {
			snap.SiteName = content
		}
	}
}

// clean は空白を正規化し、プロンプトに入れても長すぎない長さに切り詰めます。
func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 300 {
		s = string(r[:300])
	}
	return s
}
