// Package entity はbranddnaフィーチャーのドメインエンティティを定義します。
package entity

import "strings"

// Platform はクリエイティブの配信先プラットフォームです。
type Platform string

const (
	PlatformTikTok         Platform = "TikTok"
	PlatformInstagramReels Platform = "Instagram Reels"
	PlatformYouTubeShorts  Platform = "YouTube Shorts"
	PlatformX              Platform = "X (Twitter)"

	// DefaultPlatform はスクレイピング結果に有効なプラットフォームがない場合の既定値です。
	DefaultPlatform = PlatformTikTok
)

// Platforms はフォームの選択肢の順序でプラットフォームを返します。
func Platforms() []Platform {
	return []Platform{PlatformTikTok, PlatformInstagramReels, PlatformYouTubeShorts, PlatformX}
}

var platformAliases = map[string]Platform{
	"tiktok":          PlatformTikTok,
	"instagram reels": PlatformInstagramReels,
	"instagram":       PlatformInstagramReels,
	"reels":           PlatformInstagramReels,
	"youtube shorts":  PlatformYouTubeShorts,
	"youtube":         PlatformYouTubeShorts,
	"shorts":          PlatformYouTubeShorts,
	"x (twitter)":     PlatformX,
	"x":               PlatformX,
	"twitter":         PlatformX,
}

// ParsePlatform は表記ゆれを吸収してPlatformを返します。
// 該当しない場合は false を返します。
func ParsePlatform(s string) (Platform, bool) {
	p, ok := platformAliases[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// NormalizePlatform は既知のプラットフォームに正規化し、不明な値はDefaultPlatformにします。
func NormalizePlatform(s string) Platform {
	if p, ok := ParsePlatform(s); ok {
		return p
	}
	return DefaultPlatform
}

// BrandInfo はWebサイトから抽出したブランドDNAです。すべて自由記述のテキストです。
type BrandInfo struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Colors      string `json:"colors"`
	Platform    string `json:"platform"`
	Competitors string `json:"competitors"`
}

// Normalize は前後の空白を除去し、プラットフォームを既知の値に揃えます。
func (b *BrandInfo) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Personality = strings.TrimSpace(b.Personality)
	b.Colors = strings.TrimSpace(b.Colors)
	b.Competitors = strings.TrimSpace(b.Competitors)
	b.Platform = string(NormalizePlatform(b.Platform))
}

// SiteSnapshot はトップページから取得したメタ情報で、スクレイピングのヒントとして使います。
type SiteSnapshot struct {
	Title       string
	Description string
	ThemeColor  string
	SiteName    string
}

// IsEmpty はヒントとして使える情報がないかを返します。
func (s SiteSnapshot) IsEmpty() bool {
	return s.Title == "" && s.Description == "" && s.ThemeColor == "" && s.SiteName == ""
}
