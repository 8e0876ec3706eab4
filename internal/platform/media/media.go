// Package media はアップロードされたファイルをGeminiへ送信できる形式に変換します。
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes はアップロードの既定上限（50MiB）です。
const DefaultMaxBytes int64 = 50 << 20

const genericType = "application/octet-stream"

var (
	ErrEmpty           = errors.New("uploaded file is empty")
	ErrTooLarge        = errors.New("uploaded file exceeds the size limit")
	ErrUnsupportedType = errors.New("only image and video files are supported")
)

// Payload はエンコード済みのアップロードファイルです。
type Payload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// IsVideo は動画ファイルかどうかを返します。
func (p *Payload) IsVideo() bool {
	return strings.HasPrefix(p.MIMEType, "video/")
}

// IsImage は画像ファイルかどうかを返します。
func (p *Payload) IsImage() bool {
	return strings.HasPrefix(p.MIMEType, "image/")
}

// Base64 はデータのbase64表現を返します。
func (p *Payload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// DataURL はプレビュー表示用の data: URL を返します。
func (p *Payload) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + p.Base64()
}

// Encode はrから最大limitバイトを読み込み、Payloadを生成します。
// limitが0以下の場合はDefaultMaxBytesを使用します。
func Encode(r io.Reader, filename, declaredType string, limit int64) (*Payload, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", filename, err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}

	mt := resolveType(declaredType, data)
	if !strings.HasPrefix(mt, "image/") && !strings.HasPrefix(mt, "video/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt)
	}

	return &Payload{Filename: filename, MIMEType: mt, Data: data}, nil
}

// FromFileHeader はmultipartのファイルヘッダからPayloadを生成します。
func FromFileHeader(fh *multipart.FileHeader, limit int64) (*Payload, error) {
	if fh == nil {
		return nil, ErrEmpty
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	return Encode(f, fh.Filename, fh.Header.Get("Content-Type"), limit)
}

// resolveType は申告されたMIMEタイプを優先し、空または汎用型の場合は内容から判定します。
func resolveType(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != genericType {
		return strings.ToLower(mt)
	}
	sniffed := mimetype.Detect(data).String()
	mt, _, err := mime.ParseMediaType(sniffed)
	if err != nil {
		return sniffed
	}
	return mt
}
