package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psykit/psykit/internal/meta"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <metadata-dir>",
		Short: "Validate kernel metadata without compiling an invocation",
		Long: `Validate CUE kernel metadata without compiling an invocation.

Compiles every kernel entry and checks the argument rules, collecting
all errors instead of stopping at the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, metaDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	lib, loadErrs := meta.LoadDir(metaDir)
	if lib == nil {
		var lerr *meta.LoadError
		if errors.As(loadErrs[0], &lerr) {
			_ = formatter.Error(lerr.Code, lerr.Message, nil)
			return NewExitError(ExitCommandError, lerr.Error())
		}
		_ = formatter.Error(meta.ErrCodeGeneric, loadErrs[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrs[0].Error())
	}

	formatter.VerboseLog("Checked %d kernel(s) in %s", lib.Len(), metaDir)

	if len(loadErrs) > 0 {
		return outputValidationErrors(formatter, loadErrs)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ All kernel metadata valid")
	return nil
}

// outputValidationErrors outputs collected validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []error) error {
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: messages},
			Error: &CLIError{
				Code:    firstErrCode(errs),
				Message: messages[0],
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, msg := range messages {
		fmt.Fprintf(formatter.Writer, "  %s\n", msg)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
