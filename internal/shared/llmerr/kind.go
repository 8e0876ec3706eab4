// Package llmerr は生成AI呼び出しで発生するエラーの分類を提供します。
package llmerr

import (
	"errors"
	"net/http"
)

// ErrMissingCredential はAPIキーが設定されていない場合に返されます。
var ErrMissingCredential = errors.New("gemini api key is not set")

// Kind はエラーの種別です。
type Kind int

const (
	// KindUnknown は分類できないエラーです。
	KindUnknown Kind = iota
	// KindValidation は入力検証エラーです（外部APIは呼ばれていません）。
	KindValidation
	// KindMissingCredential はAPIキー未設定です。
	KindMissingCredential
	// KindTransport はネットワークまたはプロバイダー側のエラーです。
	KindTransport
	// KindMalformedResponse はモデル出力がJSONとして解釈できない、またはスキーマに違反しています。
	KindMalformedResponse
)

// String はメトリクスやログ用のラベルを返します。
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindMissingCredential:
		return "missing_credential"
	case KindTransport:
		return "transport"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// HTTPStatus はKindに対応するHTTPステータスコードを返します。
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindMissingCredential:
		return http.StatusServiceUnavailable
	case KindTransport, KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// kinded はKindを公開するエラーが実装するインターフェースです。
type kinded interface {
	ErrKind() Kind
}

// KindOf はエラーチェーンからKindを取り出します。
// 分類済みのエラーが見つからない場合、ErrMissingCredentialであればKindMissingCredential、
// それ以外はKindUnknownを返します。
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var k kinded
	if errors.As(err, &k) {
		return k.ErrKind()
	}
	if errors.Is(err, ErrMissingCredential) {
		return KindMissingCredential
	}
	return KindUnknown
}
