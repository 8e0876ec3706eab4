// Package vision はGoogle Cloud Vision APIを使用したロゴ検出クライアントを提供します。
package vision

import (
	"context"
	"fmt"
	"sort"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"

	"brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/critique/usecase"
)

// annotator はImageAnnotatorClientのうち本パッケージが使うメソッドです。
type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

const (
	// DefaultMinConfidence 未満のロゴは結果に含めません。
	DefaultMinConfidence = 0.5
	// DefaultMaxLogos はプロンプトのヒントとして返すロゴの最大数です。
	DefaultMaxLogos = 3

	// Vision APIには閾値で落とす分を見込んで多めに要求します。
	requestedResults = 10
)

// VisionLogoDetector はGoogle Cloud Vision APIを使用してロゴを検出します。
// 結果は信頼度で足切りし、降順に並べてmaxLogos件までに絞ります。
type VisionLogoDetector struct {
	client        annotator
	maxResults    int32
	minConfidence float32
	maxLogos      int
}

// VisionLogoDetectorがLogoDetectorを実装していることをコンパイル時に検証します。
var _ usecase.LogoDetector = (*VisionLogoDetector)(nil)

// NewVisionLogoDetector はADCを使用してVisionLogoDetectorの新しいインスタンスを生成します。
// minConfidenceが0以下、maxLogosが0以下の場合はそれぞれ既定値を使います。
func NewVisionLogoDetector(ctx context.Context, minConfidence float32, maxLogos int) (*VisionLogoDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return newDetector(client, minConfidence, maxLogos), nil
}

func newDetector(client annotator, minConfidence float32, maxLogos int) *VisionLogoDetector {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if maxLogos <= 0 {
		maxLogos = DefaultMaxLogos
	}
	return &VisionLogoDetector{
		client:        client,
		maxResults:    requestedResults,
		minConfidence: minConfidence,
		maxLogos:      maxLogos,
	}
}

// Close はVision APIクライアントを解放します。
func (v *VisionLogoDetector) Close() error {
	return v.client.Close()
}

// DetectLogos は画像バイト列からロゴを検出します。
func (v *VisionLogoDetector) DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LOGO_DETECTION, MaxResults: v.maxResults},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}

	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	logos := make([]entity.DetectedLogo, 0, len(resp.Responses[0].LogoAnnotations))
	for _, logo := range resp.Responses[0].LogoAnnotations {
		if logo.Description == "" || logo.Score < v.minConfidence {
			continue
		}
		logos = append(logos, entity.DetectedLogo{
			Name:       logo.Description,
			Confidence: logo.Score,
		})
	}
	sort.SliceStable(logos, func(i, j int) bool { return logos[i].Confidence > logos[j].Confidence })
	if len(logos) > v.maxLogos {
		logos = logos[:v.maxLogos]
	}

	return logos, nil
}
