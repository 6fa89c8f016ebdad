package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"chaptersplit/internal/logging"
	"chaptersplit/internal/pipeline"
	"chaptersplit/internal/report"
	"chaptersplit/internal/services"
)

type splitOptions struct {
	output     string
	keep       bool
	quality    int
	qualitySet bool
	sanitize   bool
}

func runSplit(cmd *cobra.Command, ctx *commandContext, input string, opts splitOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger, err := logging.NewFromConfig(cfg, runID)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	req := pipeline.Request{
		Input:     strings.TrimSpace(input),
		OutputDir: strings.TrimSpace(opts.output),
		Keep:      opts.keep || !cfg.Transcode.Enabled,
		Quality:   cfg.Transcode.Quality,
		Sanitize:  opts.sanitize || cfg.Split.Sanitize,
	}
	if opts.qualitySet {
		req.Quality = opts.quality
	}
	if req.OutputDir == "" {
		req.OutputDir = pipeline.DefaultOutputDir(req.Input)
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	printSettings(out, req, colorize)

	runCtx := services.WithRunID(cmd.Context(), runID)
	started := time.Now()
	result, err := pipeline.New(cfg, logger).Run(runCtx, req)
	if err != nil {
		return err
	}

	entries, err := report.Collect(result.OutputDir, cfg.Transcode.Extension)
	if err != nil {
		return services.Wrap(services.ErrIO, "report", "list output", result.OutputDir, err)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSummary(entries))
	for _, failure := range result.Transcode.Failed {
		fmt.Fprintln(out, renderStatusLine(filepath.Base(failure.Source), statusWarn, "kept original; transcode failed", colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Done", statusOK, fmt.Sprintf("%d chapters saved to %s in %s", len(result.Chapters), result.OutputDir, time.Since(started).Round(time.Second)), colorize))
	return nil
}

func printSettings(out io.Writer, req pipeline.Request, colorize bool) {
	for _, line := range renderSectionHeader("chaptersplit", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Input", statusInfo, req.Input, colorize))
	fmt.Fprintln(out, renderStatusLine("Output directory", statusInfo, req.OutputDir, colorize))
	fmt.Fprintln(out, renderStatusLine("Keep segments", statusInfo, yesNo(req.Keep), colorize))
	fmt.Fprintln(out, renderStatusLine("Quality", statusInfo, strconv.Itoa(req.Quality), colorize))
	fmt.Fprintln(out, renderStatusLine("Sanitize titles", statusInfo, yesNo(req.Sanitize), colorize))
	fmt.Fprintln(out)
}

func renderSummary(entries []report.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		duration := "-"
		if e.Duration > 0 {
			duration = formatClock(e.Duration)
		}
		title := e.Title
		if title == "" {
			title = "-"
		}
		rows = append(rows, []string{e.Name, title, duration, humanBytes(e.Size)})
	}
	return renderTable(
		[]string{"File", "Title", "Duration", "Size"},
		rows,
		[]string{fmt.Sprintf("%d files", len(entries)), "", "", humanBytes(report.TotalSize(entries))},
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	)
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
