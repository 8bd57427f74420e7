// Package cli implements the dartgen command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the build version string. Release builds override it via
// -ldflags "-X github.com/blimu-dev/dartgen/internal/cli.Version=...".
var Version = "dev"

// NewRootCommand assembles the dartgen root command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dartgen",
		Short:         "Generate Dart API clients from OpenAPI specs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dartgen version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dartgen "+Version)
		},
	}
}
