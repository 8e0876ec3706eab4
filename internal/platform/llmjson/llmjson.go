// Package llmjson はモデル出力のJSONを防御的に解析します。
//
// モデルは指示に反してMarkdownのコードフェンスで出力を包むことがあるため、
// フェンスを除去してからスキーマ検証とデコードを行います。
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrInvalidJSON はフェンス除去後のテキストがJSONとして解釈できない場合に返されます。
	ErrInvalidJSON = errors.New("response is not valid JSON")
	// ErrSchemaViolation はJSONがスキーマに適合しない場合に返されます。
	ErrSchemaViolation = errors.New("response does not match schema")
)

const fence = "```"

// Schema はコンパイル済みのJSONスキーマです。
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// NewSchema はJSONスキーマ文書をコンパイルします。
func NewSchema(name string, raw []byte) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustSchema はNewSchemaのpanic版です。埋め込みスキーマの初期化に使います。
func MustSchema(name string, raw []byte) *Schema {
	s, err := NewSchema(name, raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Name はスキーマ名を返します。
func (s *Schema) Name() string {
	return s.name
}

// StripFence は前後の空白と、先頭の ```json（または ```）・末尾の ``` を取り除きます。
// フェンスのないテキストに対しては空白除去のみを行うため、冪等です。
func StripFence(text string) string {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, fence) {
		t = strings.TrimPrefix(t, fence)
		if len(t) >= 4 && strings.EqualFold(t[:4], "json") {
			t = t[4:]
		}
		t = strings.TrimSpace(t)
	}
	if strings.HasSuffix(t, fence) {
		t = strings.TrimSpace(strings.TrimSuffix(t, fence))
	}
	return t
}

// Decode はフェンスを除去したテキストをスキーマで検証し、vにデコードします。
// schemaがnilの場合は検証を省略します。
func Decode(text string, schema *Schema, v any) error {
	cleaned := StripFence(text)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if schema != nil {
		result, err := schema.schema.Validate(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
		}
		if !result.Valid() {
			errs := make([]string, len(result.Errors()))
			for i, desc := range result.Errors() {
				errs[i] = desc.String()
			}
			return fmt.Errorf("%w (%s): %s", ErrSchemaViolation, schema.name, strings.Join(errs, "; "))
		}
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}
