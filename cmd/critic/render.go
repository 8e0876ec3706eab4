package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	brand "brandai_backend/internal/feature/branddna/domain/entity"
	critique "brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/web/presenter"
)

var (
	bold    = color.New(color.Bold).SprintFunc()
	heading = color.New(color.FgHiCyan, color.Bold).SprintFunc()
)

// classColors は画面と同じ色分けを端末の色に対応付けます。
var classColors = map[string]*color.Color{
	presenter.ClassAccent: color.New(color.FgHiGreen, color.Bold),
	presenter.ClassWarn:   color.New(color.FgHiYellow, color.Bold),
	presenter.ClassKill:   color.New(color.FgHiRed, color.Bold),
	presenter.ClassGray:   color.New(color.FgHiBlack, color.Bold),
}

func colorize(class, s string) string {
	if c, ok := classColors[class]; ok {
		return c.Sprint(s)
	}
	return s
}

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderBrand(w io.Writer, b *brand.BrandInfo) {
	fmt.Fprintln(w, heading("Brand DNA"))
	table := newTable(w, "Field", "Value")
	_ = table.Append([]string{"Name", b.Name})
	_ = table.Append([]string{"Personality", b.Personality})
	_ = table.Append([]string{"Colors", b.Colors})
	_ = table.Append([]string{"Platform", b.Platform})
	_ = table.Append([]string{"Competitors", b.Competitors})
	_ = table.Render()
}

func renderResult(w io.Writer, r *critique.CritiqueResult) {
	v := presenter.NewResultView(r)
	fmt.Fprintf(w, "%s %s\n", bold("Verdict:"), colorize(v.VerdictClass, v.Verdict))

	if v.Undeployable {
		fmt.Fprintln(w, heading("Kill Reasons"))
		renderList(w, v.KillReasons)
		if v.EmergencyFix != "" {
			fmt.Fprintf(w, "%s %s\n", heading("Emergency Fix:"), v.EmergencyFix)
		}
		return
	}

	fmt.Fprintln(w)
	table := newTable(w, "Score", "%")
	for _, bar := range append([]presenter.ScoreBar{v.Overall, v.Viral}, v.Scorecard...) {
		_ = table.Append([]string{bar.Label, colorize(bar.Class, fmt.Sprintf("%d%%", bar.Percent))})
	}
	_ = table.Render()

	fmt.Fprintln(w)
	fmt.Fprintln(w, heading("Breakdown"))
	for _, e := range v.Explanations {
		fmt.Fprintf(w, "  %s (%d%%): %s\n", e.Label, e.Percent, e.Text)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", heading("Brutal Truth:"), v.BrutalTruth)
	if len(v.WhatBroke) > 0 {
		fmt.Fprintln(w, heading("What Broke"))
		renderList(w, v.WhatBroke)
	}
	fmt.Fprintf(w, "%s %s\n", heading("Fix It Fast:"), v.FixItFast)

	if v.TrendingNow != "" || v.CompetitorGap != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading("Market Intel"))
		renderField(w, "Trending Now", v.TrendingNow)
		renderField(w, "Competitor Gap", v.CompetitorGap)
		renderField(w, "Hot Topics", v.HotTopics)
		renderField(w, "Viral Format of the Week", v.ViralFormatOfWeek)
		renderField(w, "Competitor Move", v.CompetitorMove)
		renderField(w, "Cultural Alert", v.CulturalAlert)
	}
	if len(v.TacticsUsed) > 0 || len(v.TacticsMissing) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", heading("Tactics Used:"), strings.Join(v.TacticsUsed, ", "))
		fmt.Fprintf(w, "%s %s\n", heading("Tactics Missing:"), strings.Join(v.TacticsMissing, ", "))
	}
}

func renderList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func renderField(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "  %s: %s\n", label, value)
	}
}
