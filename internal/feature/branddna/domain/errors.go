// Package domain はbranddnaフィーチャーのドメインエラーを定義します。
package domain

import (
	"errors"

	"brandai_backend/internal/shared/llmerr"
)

// ErrInvalidURL はURLが絶対http(s) URLでない場合に返されます。外部APIは呼ばれません。
var ErrInvalidURL = errors.New("Please enter a valid URL (e.g., https://example.com)")

// ScrapeError はブランドDNA抽出の失敗です。
// Error() は利用者に表示できる文言を返し、原因はUnwrapで取り出せます。
type ScrapeError struct {
	Kind llmerr.Kind
	Err  error
}

func (e *ScrapeError) Error() string {
	switch e.Kind {
	case llmerr.KindMissingCredential:
		return "API_KEY environment variable is not set."
	case llmerr.KindMalformedResponse:
		return "The AI failed to analyze the website URL correctly."
	}
	if e.Err == nil {
		return "scrape failed"
	}
	return e.Err.Error()
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// ErrKind はllmerr.KindOfから参照されます。
func (e *ScrapeError) ErrKind() llmerr.Kind { return e.Kind }

// NewScrapeError は原因から種別を判定してScrapeErrorを作成します。
func NewScrapeError(kind llmerr.Kind, err error) *ScrapeError {
	return &ScrapeError{Kind: kind, Err: err}
}
