// Package domain はcritiqueフィーチャーのドメインエラーを定義します。
package domain

import (
	"errors"

	"brandai_backend/internal/shared/llmerr"
)

var (
	// ErrFileRequired はファイルが添付されていない場合に返されます。他の項目より先に検査されます。
	ErrFileRequired = errors.New("Please upload an image or video file.")
	// ErrMissingFields はブランド名・プラットフォーム・内容説明のいずれかが空の場合に返されます。
	ErrMissingFields = errors.New("Please fill in Brand Name, Platform, and Content Description.")
)

// AnalysisError は批評生成の失敗です。
// Error() は利用者に表示できる文言を返し、原因はUnwrapで取り出せます。
type AnalysisError struct {
	Kind llmerr.Kind
	Err  error
}

func (e *AnalysisError) Error() string {
	switch e.Kind {
	case llmerr.KindMissingCredential:
		return "API_KEY environment variable is not set."
	case llmerr.KindMalformedResponse:
		return "The AI returned an invalid response format."
	}
	if e.Err == nil {
		return "analysis failed"
	}
	return e.Err.Error()
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// ErrKind はllmerr.KindOfから参照されます。
func (e *AnalysisError) ErrKind() llmerr.Kind { return e.Kind }

// NewAnalysisError はAnalysisErrorを作成します。
func NewAnalysisError(kind llmerr.Kind, err error) *AnalysisError {
	return &AnalysisError{Kind: kind, Err: err}
}
