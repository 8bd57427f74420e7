package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/dartgen/pkg/config"
)

const configFileName = "dartgen.yaml"

func newInitCmd() *cobra.Command {
	var force bool
	var nonInteractive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter dartgen.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, force, nonInteractive)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Write defaults without prompting")
	return cmd
}

type initAnswers struct {
	Spec   string
	Output string
	Name   string
	Split  bool
}

func runInit(cmd *cobra.Command, force, nonInteractive bool) error {
	if _, err := os.Stat(configFileName); err == nil && !force {
		return fmt.Errorf("%s already exists; re-run with --force to overwrite", configFileName)
	}

	answers := initAnswers{Spec: "./openapi.yaml", Output: "./dart_client", Split: true}
	if !nonInteractive {
		if err := askInitAnswers(&answers); err != nil {
			return err
		}
	}

	content := scaffold(answers)
	// The scaffold must stay parseable by the config loader it feeds.
	var check config.Config
	if err := yaml.Unmarshal([]byte(content), &check); err != nil {
		return fmt.Errorf("internal error: scaffold does not parse: %w", err)
	}

	if err := writeAtomic(configFileName, []byte(content)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configFileName)
	return nil
}

func askInitAnswers(a *initAnswers) error {
	if err := survey.AskOne(&survey.Input{
		Message: "OpenAPI spec path or URL:",
		Default: a.Spec,
	}, &a.Spec); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Input{
		Message: "Output directory:",
		Default: a.Output,
	}, &a.Output); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Input{
		Message: "Dart package name (blank derives it from the spec title):",
	}, &a.Name); err != nil {
		return err
	}
	return survey.AskOne(&survey.Confirm{
		Message: "Split the client into one file per type?",
		Default: a.Split,
	}, &a.Split)
}

func scaffold(a initAnswers) string {
	nameLine := "# name: my_api_client           # defaults to a name derived from info.title"
	if a.Name != "" {
		nameLine = "name: " + a.Name
	}
	split := "true"
	if !a.Split {
		split = "false"
	}
	return fmt.Sprintf(`# dartgen configuration. Relative paths resolve against this file.
spec: %s
output: %s
%s

splitFiles: %s                  # one file per model/service, or a single library file
# validate: false               # run full document validation before generating
# pubspec: true                 # emit pubspec.yaml alongside the library
# includeTags: []               # regex filters; only operations with matching tags are kept
# excludeTags: []               # regex filters; operations with matching tags are dropped

headers:
  customMatch: true             # match header parameters against named classes
  matchStrategy: exact          # exact | subset | fuzzy
  fuzzyThreshold: 0.5           # minimum overlap ratio for fuzzy matching
  customConsolidate: true       # synthesize shared classes for repeated header shapes
  consolidationThreshold: 3     # occurrences before a shape is consolidated
  # definitions:
  #   TracingHeaders:
  #     description: Request tracing headers
  #     fields:
  #       - X-Request-Id
  #       - X-Correlation-Id
  #     required: [X-Request-Id]
`, a.Spec, a.Output, nameLine, split)
}

// writeAtomic writes via a temp file in the target directory followed
// by a rename, so a crash cannot leave a half-written config behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dartgen-*.yaml")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
