package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/reportfmt-go/internal/config"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/spec"
)

const debounceDelay = 200 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <spec>",
		Short: "Rebuild a document spec or chart job whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			files := []string{path}
			if kind, err := spec.Detect(path); err == nil && kind == spec.KindChartJob {
				if job, err := spec.LoadChartJob(path); err == nil && job.DataFile != "" {
					files = append(files, job.DataFile)
				}
			}

			// Edits to the config file (colors, data source, style
			// profile) also trigger a rebuild.
			reload := make(chan struct{}, 1)
			if a.cm.File() != "" {
				a.cm.OnChange(func(*config.Config) {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
				a.cm.WatchConfig()
			}
			return a.watch(cmd.Context(), files, reload, func() {
				out, err := a.buildAny(path)
				if err != nil {
					a.logger.Error("build failed", zap.String("spec", path), zap.Error(err))
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			})
		},
	}
}

// watch runs build once, then again after each burst of changes to files or
// signals on reload. Parent directories are watched so editors that replace
// files on save are still seen. It returns when ctx is done.
func (a *app) watch(ctx context.Context, files []string, reload <-chan struct{}, build func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	tracked := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		tracked[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := fsw.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	build()

	timer := time.NewTimer(debounceDelay)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(event.Name)
			if !tracked[abs] || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			a.logger.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(debounceDelay)

		case <-reload:
			a.logger.Debug("config reloaded")
			timer.Reset(debounceDelay)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			build()
		}
	}
}
