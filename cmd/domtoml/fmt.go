package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Azhovan/domtoml"
	"github.com/Azhovan/domtoml/internal/log"
)

func newFmtCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt [--check] <files...>",
		Short: "Rewrite TOML files in canonical format",
		Long: `Rewrite TOML files in canonical format, keeping key order. Files are
replaced atomically and keep their permissions.

With --check, files are left untouched and the command fails if any file
would change.`,
		Example: "domtoml fmt --check pyproject.toml",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return formatFiles(cmd.OutOrStdout(), args, check)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "report files that would change instead of rewriting them")
	return cmd
}

// formatFiles formats every file concurrently. A failing file does not stop
// the others; all failures are returned together.
func formatFiles(w io.Writer, paths []string, check bool) error {
	var (
		grp     errgroup.Group
		mu      sync.Mutex
		errs    error
		changed = atomic.NewInt64(0)
	)
	grp.SetLimit(runtime.GOMAXPROCS(0))

	for _, path := range paths {
		grp.Go(func() error {
			didChange, err := formatFile(path, check)
			if err != nil {
				log.Warn("format failed", "path", path, "error", err)
				mu.Lock()
				errs = multierr.Append(errs, err) // collect but keep going
				mu.Unlock()
				return nil
			}
			if !didChange {
				return nil
			}
			changed.Inc()

			// mu serializes status lines on w
			mu.Lock()
			defer mu.Unlock()
			if check {
				color.New(color.FgYellow).Fprintf(w, "would reformat %s\n", path)
			} else {
				color.New(color.FgGreen).Fprintf(w, "reformatted %s\n", path)
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return errs
	}
	if check && changed.Load() > 0 {
		return fmt.Errorf("%d file(s) would be reformatted", changed.Load())
	}
	return nil
}

// formatFile reports whether the canonical form of path differs from its
// content, rewriting it unless check is set.
func formatFile(path string, check bool) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &domtoml.NotFoundError{Path: path, Err: err}
		}
		return false, err
	}

	opts := []domtoml.Option{
		domtoml.WithLogger(log.Zap()),
		domtoml.WithSourceName(path),
		domtoml.WithFileMode(info.Mode().Perm()),
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := domtoml.LoadBytes(original, opts...)
	if err != nil {
		return false, err
	}
	formatted, err := domtoml.Dumps(doc, opts...)
	if err != nil {
		return false, err
	}

	if bytes.Equal(original, []byte(formatted)) {
		log.Debug("already formatted", "path", path)
		return false, nil
	}
	if check {
		return true, nil
	}
	if err := domtoml.DumpFile(path, doc, opts...); err != nil {
		return false, err
	}
	return true, nil
}
