// Package dto はcritiqueフィーチャーのリクエスト型を定義します。
package dto

import (
	"mime/multipart"
	"strings"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
)

// CritiqueForm は批評フォームのmultipart入力です。JSON APIとWeb UIで共有します。
type CritiqueForm struct {
	File               *multipart.FileHeader `form:"file"`
	Name               string                `form:"name"`
	Personality        string                `form:"personality"`
	Colors             string                `form:"colors"`
	Platform           string                `form:"platform"`
	Competitors        string                `form:"competitors"`
	ContentDescription string                `form:"content_description"`
}

// BrandInfo はフォームのブランド項目をエンティティに変換します。
func (f CritiqueForm) BrandInfo() brand.BrandInfo {
	return brand.BrandInfo{
		Name:        strings.TrimSpace(f.Name),
		Personality: strings.TrimSpace(f.Personality),
		Colors:      strings.TrimSpace(f.Colors),
		Platform:    strings.TrimSpace(f.Platform),
		Competitors: strings.TrimSpace(f.Competitors),
	}
}

// Description は前後の空白を除いた内容説明を返します。
func (f CritiqueForm) Description() string {
	return strings.TrimSpace(f.ContentDescription)
}
