package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/chart"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/report"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/spec"
)

func newDocCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doc <spec>",
		Short: "Generate a .docx report from a document spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.buildDocument(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newChartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chart <job>",
		Short: "Build an .xlsx chart from a chart job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.buildChart(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// outputDir is the configured output directory.
func (a *app) outputDir() string {
	cfg := a.cm.Get()
	return cfg.Path(cfg.OutputDir)
}

// relativeTo resolves an output path written in a spec file against the
// spec's directory.
func relativeTo(specPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(specPath), p)
}

func (a *app) buildDocument(path string) (string, error) {
	doc, err := spec.LoadDocument(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	cfg := a.cm.Get()
	cfg.ApplyDocument(&doc)
	doc.OutputPath = relativeTo(path, doc.OutputPath)

	profile, err := cfg.Profile()
	if err != nil {
		return "", err
	}
	out, err := report.Generate(doc,
		report.WithLogger(a.logger),
		report.WithOutputDir(a.outputDir()),
		report.WithProfile(profile),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func (a *app) buildChart(path string) (string, error) {
	job, err := spec.LoadChartJob(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	cfg := a.cm.Get()
	defaultOut := filepath.Join(a.outputDir(), strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".xlsx")

	var art *chart.Artifact
	switch {
	case job.Chart != nil:
		s := *job.Chart
		cfg.ApplyChart(&s)
		s.OutputPath = relativeTo(path, s.OutputPath)
		if s.OutputPath == "" {
			s.OutputPath = defaultOut
		}
		art, err = chart.Build(job.Data, s, chart.WithLogger(a.logger))
	case job.PriceVolume != nil:
		s := *job.PriceVolume
		cfg.ApplyPriceVolume(&s)
		s.OutputPath = relativeTo(path, s.OutputPath)
		if s.OutputPath == "" {
			s.OutputPath = defaultOut
		}
		art, err = chart.BuildPriceVolume(job.Data, s, chart.WithLogger(a.logger))
	default:
		return "", fmt.Errorf("%s: job has no chart", path)
	}
	if art != nil {
		defer art.Close()
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	a.logger.Debug("chart job done", zap.String("job", path), zap.String("output", art.Path))
	return art.Path, nil
}

// buildAny dispatches on the spec kind.
func (a *app) buildAny(path string) (string, error) {
	kind, err := spec.Detect(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	switch kind {
	case spec.KindDocument:
		return a.buildDocument(path)
	case spec.KindChartJob:
		return a.buildChart(path)
	}
	return "", fmt.Errorf("%s: not a document spec or chart job", path)
}

func writeOutput(cmd *cobra.Command, outputPath string, data []byte) error {
	if outputPath == "" {
		_, err := cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
