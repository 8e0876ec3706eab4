// Package dto はbranddnaのエンティティとAPI型の変換を提供します。
package dto

import (
	"brandai_backend/internal/api"
	"brandai_backend/internal/feature/branddna/domain/entity"
)

// FromEntity はBrandInfoエンティティをAPI型に変換します。
func FromEntity(b *entity.BrandInfo) *api.BrandInfo {
	if b == nil {
		return nil
	}
	return &api.BrandInfo{
		Name:        b.Name,
		Personality: b.Personality,
		Colors:      b.Colors,
		Platform:    b.Platform,
		Competitors: b.Competitors,
	}
}

// ToEntity はAPI型をBrandInfoエンティティに変換します。
func ToEntity(b api.BrandInfo) entity.BrandInfo {
	return entity.BrandInfo{
		Name:        b.Name,
		Personality: b.Personality,
		Colors:      b.Colors,
		Platform:    b.Platform,
		Competitors: b.Competitors,
	}
}
