package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kolah/apigen/internal/codegen"
	"github.com/kolah/apigen/internal/config"
	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/loader"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "apigen",
		Short: "Generate a versioned Go API from a directory of OpenAPI documents",
		// Errors are printed once by main.
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       "1.0.0",

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Log debug output")

	root.AddCommand(GenerateCommand(), ModelCommand())

	return root
}

// newLogger writes to stderr: text for a terminal, JSON lines otherwise.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	w := cmd.ErrOrStderr()
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// buildModel loads every document of cfg.Specs and merges them.
func buildModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ir.ApiModel, []*loader.Result, error) {
	results, err := loader.LoadDir(ctx, cfg.Specs, loader.Options{
		Strict:      cfg.Strict,
		Parallelism: cfg.Parallelism,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("loading specs: %w", err)
	}

	m, err := codegen.BuildModel(ctx, results, cfg.Go.StaticDir, logger)
	if err != nil {
		return nil, nil, err
	}
	return m, results, nil
}
