package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psykit/psykit/internal/transform"
)

// TransformInfo describes one registered transformation in JSON output.
type TransformInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewTransformsCommand creates the transforms command.
func NewTransformsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transforms",
		Short: "List the registered schedule transformations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransforms(rootOpts, cmd)
		},
	}
}

func runTransforms(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	specs := transform.DefaultRegistry().List()

	if formatter.Format == "json" {
		infos := make([]TransformInfo, len(specs))
		for i, spec := range specs {
			infos[i] = TransformInfo{Name: spec.Name, Description: spec.Description}
		}
		return formatter.Success(infos)
	}

	for _, spec := range specs {
		fmt.Fprintf(formatter.Writer, "%-24s %s\n", spec.Name, spec.Description)
	}
	return nil
}
