// Package ui は埋め込みHTMLテンプレートと静的アセットを提供します。
package ui

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Templates は全テンプレートをパースして返します。
// ページテンプレートは "index.tmpl"、"guide.tmpl"、"about.tmpl" です。
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.tmpl")
}

// MustTemplates はTemplatesのパースに失敗した場合panicします。
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// Assets returns the embedded assets/ filesystem with the "assets" prefix stripped.
func Assets() (fs.FS, error) {
	return fs.Sub(assetFS, "assets")
}
