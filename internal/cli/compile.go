package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psykit/psykit/internal/colour"
	"github.com/psykit/psykit/internal/config"
	"github.com/psykit/psykit/internal/deps"
	"github.com/psykit/psykit/internal/ir"
	"github.com/psykit/psykit/internal/meta"
	"github.com/psykit/psykit/internal/store"
	"github.com/psykit/psykit/internal/transform"
)

// CompileOptions holds the compile command's flags.
type CompileOptions struct {
	Invoke string // invocation YAML path (required)
	Config string // configuration YAML path (optional)
	Script string // transformation script path (optional)
	DB     string // provenance database path (optional)
	Output string // output file, "-" or empty for stdout
}

// AppliedStep reports one scripted transformation in the compile result.
type AppliedStep struct {
	Name      string `json:"name"`
	Target    string `json:"target"`
	HashAfter string `json:"hash_after"`
}

// CompileResult is the compile command's JSON payload.
type CompileResult struct {
	Invoke      string        `json:"invoke"`
	Fingerprint string        `json:"fingerprint"`
	View        string        `json:"view"`
	Steps       []AppliedStep `json:"steps,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <metadata-dir>",
		Short: "Compile an invocation into a schedule",
		Long: `Compile an invocation against a kernel metadata directory.

Builds the initial schedule, runs dependence analysis to insert the halo
exchanges and global reductions distributed memory needs, then applies
the transformation script, if any, step by step.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Invoke, "invoke", "", "invocation YAML file (required)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "configuration YAML file")
	cmd.Flags().StringVar(&opts.Script, "script", "", "transformation script YAML file")
	cmd.Flags().StringVar(&opts.DB, "db", "", "provenance database path")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the schedule view to a file instead of stdout")
	_ = cmd.MarkFlagRequired("invoke")

	return cmd
}

func runCompile(rootOpts *RootOptions, opts *CompileOptions, metaDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	lib, loadErrs := meta.LoadDir(metaDir)
	if lib == nil {
		_ = formatter.Error(firstErrCode(loadErrs), loadErrs[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrs[0].Error())
	}
	if len(loadErrs) > 0 {
		_ = formatter.Error(firstErrCode(loadErrs), loadErrs[0].Error(), loadErrs)
		return NewExitError(ExitFailure, fmt.Sprintf("metadata has %d error(s)", len(loadErrs)))
	}
	formatter.VerboseLog("Loaded %d kernel(s) from %s", lib.Len(), metaDir)

	ctx := config.Default()
	if opts.Config != "" {
		var err error
		ctx, err = config.Load(opts.Config)
		if err != nil {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "loading configuration", err)
		}
	}

	inv, err := meta.LoadInvocation(opts.Invoke)
	if err != nil {
		_ = formatter.Error(ErrCodeInvoke, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading invocation", err)
	}

	s, err := meta.BuildSchedule(lib, inv)
	if err != nil {
		_ = formatter.Error(ErrCodeBuild, err.Error(), nil)
		return WrapExitError(ExitFailure, "building schedule", err)
	}
	formatter.VerboseLog("Built schedule for %s with %d call(s)", inv.Name, len(inv.Calls))

	analyzer := deps.New(ctx)
	if err := analyzer.Run(s); err != nil {
		_ = formatter.Error(ErrCodeAnalysis, err.Error(), nil)
		return WrapExitError(ExitFailure, "dependence analysis", err)
	}

	var applied []AppliedStep
	if opts.Script != "" {
		script, err := LoadScript(opts.Script)
		if err != nil {
			_ = formatter.Error(ErrCodeScript, err.Error(), nil)
			return WrapExitError(ExitCommandError, "loading script", err)
		}
		applied, err = applyScript(s, script, ctx, formatter)
		if err != nil {
			_ = formatter.Error(ErrCodeTransform, err.Error(), nil)
			return WrapExitError(ExitFailure, "applying script", err)
		}
		if script.RerunAnalyzer {
			formatter.VerboseLog("Re-running dependence analysis")
			if err := analyzer.Run(s); err != nil {
				_ = formatter.Error(ErrCodeAnalysis, err.Error(), nil)
				return WrapExitError(ExitFailure, "dependence analysis", err)
			}
		}
	}

	if opts.DB != "" {
		if err := writeProvenance(cmd.Context(), opts.DB, inv.Name, s, applied); err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "recording provenance", err)
		}
		formatter.VerboseLog("Recorded run in %s", opts.DB)
	}

	return outputCompileResult(formatter, opts, inv.Name, s, applied)
}

// applyScript runs the script's steps in order. Each step re-resolves its
// target paths against the current tree, since earlier steps restructure it.
func applyScript(s *ir.Schedule, script *Script, ctx config.Context, formatter *OutputFormatter) ([]AppliedStep, error) {
	registry := transform.DefaultRegistry()
	tdeps := transform.Deps{
		Ctx:  ctx,
		Mesh: colour.NewQuadMesh(ctx.Mesh.NX, ctx.Mesh.NY),
	}

	var applied []AppliedStep
	for i, step := range script.Steps {
		spec, err := registry.Get(step.Name)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		tr, err := spec.New(tdeps, transform.Options{Depth: step.Options.Depth})
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Name, err)
		}

		paths := step.targetPaths()
		if len(paths) == 0 {
			return nil, fmt.Errorf("step %d (%s): no target", i, step.Name)
		}
		targets := make([]ir.NodeID, len(paths))
		for j, path := range paths {
			targets[j], err = resolvePath(s, path)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i, step.Name, err)
			}
		}

		if _, err := tr.Apply(s, targets); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Name, err)
		}
		formatter.VerboseLog("Applied %s to %s", step.Name, formatPaths(paths))

		applied = append(applied, AppliedStep{
			Name:      step.Name,
			Target:    formatPaths(paths),
			HashAfter: s.Fingerprint(),
		})
	}
	return applied, nil
}

// writeProvenance records the run and its steps in the provenance store.
func writeProvenance(ctx context.Context, path, invoke string, s *ir.Schedule, applied []AppliedStep) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := store.NewRun(invoke, s.Fingerprint())
	if err != nil {
		return err
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return err
	}

	steps := make([]store.Step, len(applied))
	for i, a := range applied {
		steps[i] = store.Step{
			RunID:     run.ID,
			Position:  i,
			Name:      a.Name,
			Target:    a.Target,
			HashAfter: a.HashAfter,
		}
	}
	return st.WriteSteps(ctx, steps)
}

// outputCompileResult writes the final schedule in the configured format.
func outputCompileResult(formatter *OutputFormatter, opts *CompileOptions, invoke string, s *ir.Schedule, applied []AppliedStep) error {
	view := s.View()

	if opts.Output != "" && opts.Output != "-" {
		if err := os.WriteFile(opts.Output, []byte(view), 0o644); err != nil {
			_ = formatter.Error(ErrCodeWrite, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing output", err)
		}
		formatter.VerboseLog("Wrote schedule to %s", opts.Output)
		if formatter.Format != "json" {
			return nil
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(CompileResult{
			Invoke:      invoke,
			Fingerprint: s.Fingerprint(),
			View:        view,
			Steps:       applied,
		})
	}

	if opts.Output == "" || opts.Output == "-" {
		fmt.Fprint(formatter.Writer, view)
	}
	return nil
}

// firstErrCode extracts a load error code for reporting.
func firstErrCode(errs []error) string {
	if len(errs) == 0 {
		return meta.ErrCodeGeneric
	}
	if lerr, ok := errs[0].(*meta.LoadError); ok {
		return lerr.Code
	}
	if verr, ok := errs[0].(meta.ValidationError); ok {
		return verr.Code
	}
	return meta.ErrCodeGeneric
}
