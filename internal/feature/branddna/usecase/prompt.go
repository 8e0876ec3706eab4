package usecase

import (
	"fmt"
	"strings"

	"brandai_backend/internal/feature/branddna/domain/entity"
)

const scrapePromptTemplate = `You are an expert brand strategist AI. Your task is to perform a deep analysis of the website at the following URL: %s and synthesize its core brand DNA into a structured JSON object. Go beyond simple text extraction. Analyze the language, tone, visuals, and messaging to derive the brand's identity.

1.  **Brand Name:** Find the official brand name.
2.  **Personality/Motto:** Scour the homepage, "About Us" section, and headlines. Identify taglines, mission statements, and the overall tone of voice (e.g., "Playful," "Authoritative," "Minimalist," "Disruptive"). Synthesize this into a concise personality description.
3.  **Brand Colors:** Identify the 2-3 most dominant colors used in the design. Prioritize colors used for logos, buttons, and headlines.
4.  **Competitors:** Based on the products, services, and industry, infer 2-3 of the brand's most likely direct competitors.
5.  **Platform:** Default this to 'TikTok' as it's the primary target for this app's critique.
%s
You MUST return ONLY the raw, valid JSON object. Do not include any other text or markdown formatting. The JSON schema should be:
{
  "name": "string",
  "personality": "string",
  "colors": "string",
  "platform": "string",
  "competitors": "string"
}`

// BuildScrapePrompt はURLとサイトのメタ情報からスクレイピング用プロンプトを組み立てます。
func BuildScrapePrompt(url string, snap entity.SiteSnapshot) string {
	return fmt.Sprintf(scrapePromptTemplate, url, snapshotHints(snap))
}

func snapshotHints(snap entity.SiteSnapshot) string {
	if snap.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nHints fetched from the homepage (verify, do not copy blindly):\n")
	if snap.SiteName != "" {
		fmt.Fprintf(&b, "- Site name: %s\n", snap.SiteName)
	}
	if snap.Title != "" {
		fmt.Fprintf(&b, "- Page title: %s\n", snap.Title)
	}
	if snap.Description != "" {
		fmt.Fprintf(&b, "- Meta description: %s\n", snap.Description)
	}
	if snap.ThemeColor != "" {
		fmt.Fprintf(&b, "- Theme color: %s\n", snap.ThemeColor)
	}
	return b.String()
}
