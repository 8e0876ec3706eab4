package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"brandai_backend/internal/app/di"
	"brandai_backend/internal/config"
	"brandai_backend/internal/platform/logging"
)

var (
	verbose    bool
	jsonOutput bool
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "critic",
	Short: "BrandAI Creative Director from the command line",
	Long: `critic extracts a brand's DNA from its website and grades a creative
(image or video) against it, using the same Gemini prompts as the web app.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON instead of tables")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall timeout for the command")

	rootCmd.AddCommand(scrapeCmd, analyzeCmd)
}

// newUsecases は環境変数から設定を読み込み、キャッシュなしでユースケースを組み立てます。
func newUsecases(ctx context.Context) (*config.Config, *di.Usecases, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	logging.Setup(os.Stderr, level, "text")
	return cfg, di.NewUsecases(ctx, cfg, nil), nil
}

// commandContext はタイムアウト付きのコンテキストを返します。
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
