package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/platform/media"
)

// analyzeFlags は analyze コマンドの入力です。
type analyzeFlags struct {
	file        string
	url         string
	name        string
	personality string
	colors      string
	platform    string
	competitors string
	description string
}

var analyzeOpts analyzeFlags

var errBrandSource = errors.New("either --url or --name is required")

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Critique an image or video against a brand",
	Example: `  critic analyze --file ad.mp4 --url https://acme.example --description "10s product reveal"
  critic analyze --file ad.png --name Acme --platform tiktok --description "Launch teaser"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, analyzeOpts)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOpts.file, "file", "f", "", "Image or video to critique (required)")
	f.StringVar(&analyzeOpts.url, "url", "", "Brand website; scraped to prefill the brand fields")
	f.StringVar(&analyzeOpts.name, "name", "", "Brand name")
	f.StringVar(&analyzeOpts.personality, "personality", "", "Brand personality")
	f.StringVar(&analyzeOpts.colors, "colors", "", "Brand colors")
	f.StringVar(&analyzeOpts.platform, "platform", "", "Target platform (TikTok, Instagram Reels, YouTube Shorts, X)")
	f.StringVar(&analyzeOpts.competitors, "competitors", "", "Main competitors")
	f.StringVarP(&analyzeOpts.description, "description", "d", "", "What the content is and its goal (required)")
	_ = analyzeCmd.MarkFlagRequired("file")
	_ = analyzeCmd.MarkFlagRequired("description")
}

func runAnalyze(cmd *cobra.Command, opts analyzeFlags) error {
	if opts.url == "" && opts.name == "" {
		return errBrandSource
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, uc, err := newUsecases(ctx)
	if err != nil {
		return err
	}
	defer uc.Close()

	payload, err := readFile(opts.file, cfg.Upload.MaxBytes)
	if err != nil {
		return err
	}

	var scraped *brand.BrandInfo
	if opts.url != "" {
		scraped, err = uc.Brand.ScrapeBrandInfo(ctx, opts.url)
		if err != nil {
			return err
		}
	}
	b := mergeBrand(scraped, opts)

	fmt.Fprintf(cmd.ErrOrStderr(), "Analyzing %s for %s on %s with %s...\n",
		payload.Filename, b.Name, b.Platform, uc.Critique.ModelFor(payload))

	result, err := uc.Critique.GetCritique(ctx, payload, b, opts.description)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	renderResult(cmd.OutOrStdout(), result)
	return nil
}

// mergeBrand はスクレイピング結果にフラグで指定された値を上書きします。
func mergeBrand(scraped *brand.BrandInfo, opts analyzeFlags) brand.BrandInfo {
	var b brand.BrandInfo
	if scraped != nil {
		b = *scraped
	}
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&b.Name, opts.name)
	override(&b.Personality, opts.personality)
	override(&b.Colors, opts.colors)
	override(&b.Platform, opts.platform)
	override(&b.Competitors, opts.competitors)
	b.Normalize()
	return b
}

func readFile(path string, limit int64) (*media.Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return media.Encode(f, filepath.Base(path), "", limit)
}
