package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kolah/apigen/internal/codegen"
	"github.com/kolah/apigen/internal/config"
	"github.com/kolah/apigen/internal/ir"
)

func GenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go code from versioned OpenAPI documents",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}

	config.BindCommonFlags(cmd)
	config.BindGenerateFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "Print the generated Go files instead of writing them")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateOutput(); err != nil {
		return err
	}
	logger := newLogger(cmd)

	m, results, err := buildModel(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	if cfg.ModelFile != "" {
		data, err := ir.DumpYAML(m)
		if err != nil {
			return fmt.Errorf("encoding model: %w", err)
		}
		if err := os.WriteFile(cfg.ModelFile, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.ModelFile, err)
		}
		logger.Info("model written", "path", cfg.ModelFile)
	}

	gen, err := codegen.New(cfg)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	outputs, err := gen.Generate(m, codegen.Documents(results, cfg.Go.StaticDir))
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		for _, out := range outputs {
			if filepath.Ext(out.Filename) != ".go" {
				continue
			}
			cmd.Printf("// %s\n%s\n", out.Filename, out.Content)
		}
		return nil
	}

	for _, out := range outputs {
		path := filepath.Join(cfg.Go.OutputDir, filepath.FromSlash(out.Filename))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(path, out.Content, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		logger.Debug("written", "path", path)
	}
	logger.Info("generated", "files", len(outputs), "dir", cfg.Go.OutputDir)

	return nil
}
