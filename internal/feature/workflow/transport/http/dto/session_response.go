// Package dto はworkflowフィーチャーのレスポンス型を定義します。
package dto

import (
	"time"

	"brandai_backend/internal/api"
	branddto "brandai_backend/internal/feature/branddna/transport/http/dto"
	critique "brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/workflow/domain/entity"
)

// SessionResponse はGET /v1/session などが返すセッションの表示状態です。
type SessionResponse struct {
	Step      string                   `json:"step"`
	Scrape    api.RequestState         `json:"scrape"`
	Critique  api.RequestState         `json:"critique"`
	BrandInfo *api.BrandInfo           `json:"brand_info"`
	Result    *critique.CritiqueResult `json:"result"`
	ExpiresAt time.Time                `json:"expires_at"`
}

// FromEntity はセッションエンティティをレスポンスに変換します。
func FromEntity(s *entity.Session) SessionResponse {
	return SessionResponse{
		Step:      string(s.Step),
		Scrape:    requestState(s.Scrape),
		Critique:  requestState(s.Critique),
		BrandInfo: branddto.FromEntity(s.BrandInfo),
		Result:    s.Result,
		ExpiresAt: s.ExpiresAt,
	}
}

func requestState(r entity.RequestState) api.RequestState {
	return api.RequestState{Status: string(r.Status), Error: r.Error}
}
