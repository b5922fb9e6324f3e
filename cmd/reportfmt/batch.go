package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBatchCmd(a *app) *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "batch <glob>...",
		Short: "Build every document spec and chart job matching the patterns",
		Long: `batch expands each pattern (** matches any number of directories) and
builds every match, telling document specs and chart jobs apart by their
top-level keys.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no files match %v", args)
			}

			var errs []error
			for _, p := range paths {
				out, err := a.buildAny(p)
				if err != nil {
					a.logger.Error("build failed", zap.String("spec", p), zap.Error(err))
					errs = append(errs, err)
					if !keepGoing {
						break
					}
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "Continue after a failed build")
	return cmd
}

// expandPatterns resolves glob patterns to spec files, dropping duplicates and
// anything that is not YAML or JSON.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		for _, m := range matches {
			switch filepath.Ext(m) {
			case ".yaml", ".yml", ".json":
			default:
				continue
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}
