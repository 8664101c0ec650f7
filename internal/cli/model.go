package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolah/apigen/internal/config"
	"github.com/kolah/apigen/internal/ir"
)

// ModelCommand prints the merged API model, which is what the generators
// consume. Useful for reviewing the effect of a new version.
func ModelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Print the merged API model as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}

			m, _, err := buildModel(cmd.Context(), cfg, newLogger(cmd))
			if err != nil {
				return err
			}

			data, err := ir.DumpYAML(m)
			if err != nil {
				return fmt.Errorf("encoding model: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	config.BindCommonFlags(cmd)

	return cmd
}
