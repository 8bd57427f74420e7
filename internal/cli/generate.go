package cli

import (
	"github.com/spf13/cobra"

	"github.com/blimu-dev/dartgen/pkg/generator"
)

func newGenerateCmd() *cobra.Command {
	var configPath string
	var spec string
	var output string
	var name string
	var singleFile bool
	var validate bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Dart API client",
		Long: "Generate a Dart API client from an OpenAPI 3.x specification.\n" +
			"Flags override values from the config file; without --config the\n" +
			"--spec and --output flags are required.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generator.GenerateClient(generator.GenerateOptions{
				ConfigPath: configPath,
				Spec:       spec,
				Output:     output,
				Name:       name,
				SingleFile: singleFile,
				Validate:   validate,
				Quiet:      quiet,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to dartgen.yaml config")
	cmd.Flags().StringVar(&spec, "spec", "", "OpenAPI spec file (yaml/json) or URL")
	cmd.Flags().StringVar(&output, "output", "", "Output directory")
	cmd.Flags().StringVar(&name, "name", "", "Dart package name")
	cmd.Flags().BoolVar(&singleFile, "single-file", false, "Render the client into a single library file")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the document before generating")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress progress output and the header report")

	return cmd
}
