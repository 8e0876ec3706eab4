package usecase

import (
	_ "embed"
	"fmt"
	"strings"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/feature/critique/domain/entity"
)

// SystemPrompt は批評の採点基準で、システム指示としてモデルに渡されます。
//
//go:embed prompts/rubric.txt
var SystemPrompt string

// BuildPrompt はブランド属性と内容説明から批評依頼のプロンプトを組み立てます。
// hintsがある場合は検出されたロゴを1行追加します。
func BuildPrompt(b brand.BrandInfo, description string, hints []entity.DetectedLogo) string {
	var sb strings.Builder
	sb.WriteString("Critique the following content based on these details:\n")
	fmt.Fprintf(&sb, "BRAND: [Name: %s, Personality: %s, Colors: %s]\n", b.Name, b.Personality, b.Colors)
	fmt.Fprintf(&sb, "PLATFORM: [%s]\n", b.Platform)
	fmt.Fprintf(&sb, "CONTENT DESCRIPTION: [%s]\n", description)
	fmt.Fprintf(&sb, "COMPETITORS: [%s]\n", b.Competitors)
	if len(hints) > 0 {
		names := make([]string, 0, len(hints))
		for _, h := range hints {
			names = append(names, fmt.Sprintf("%s (%.0f%%)", h.Name, h.Confidence*100))
		}
		fmt.Fprintf(&sb, "DETECTED LOGOS: [%s]\n", strings.Join(names, ", "))
	}
	return sb.String()
}
