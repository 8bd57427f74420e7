package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blimu-dev/dartgen/pkg/generator"
)

func newValidateCmd() *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := generator.ValidateSpec(spec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", spec)
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "spec", "", "OpenAPI spec file (yaml/json) or URL")
	_ = cmd.MarkFlagRequired("spec")
	return cmd
}
