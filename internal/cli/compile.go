package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/browo097302/splink/internal/blocking"
	"github.com/browo097302/splink/internal/comparison"
	"github.com/browo097302/splink/internal/compiler"
	"github.com/browo097302/splink/internal/sqldialect"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledRule is the CLI output form of one blocking rule.
type CompiledRule struct {
	BlockingRuleSQL string `json:"blocking_rule_sql"`
	Dialect         string `json:"dialect"`
	Fingerprint     string `json:"fingerprint"`
}

// CompileResult holds the compiled job output.
type CompileResult struct {
	RunID         string                         `json:"run_id"`
	Dialect       string                         `json:"dialect"`
	Comparisons   []*compiler.CompiledComparison `json:"comparisons"`
	BlockingRules []CompiledRule                 `json:"blocking_rules,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <job-file>",
		Short: "Compile a linkage job spec to dialect SQL",
		Long: `Compile the comparisons and blocking rules of a linkage job spec
(CUE, YAML or JSON) to SQL for the job's dialect, with the dispatch
metadata the scoring engine consumes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, jobPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, err := compileJob(formatter, jobPath)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// compileJob loads and compiles a job spec, shared with validate.
func compileJob(formatter *OutputFormatter, jobPath string) (*CompileResult, error) {
	spec, err := LoadJob(jobPath)
	if err != nil {
		return nil, outputJobError(formatter, err)
	}

	dialect, err := sqldialect.Parse(spec.Dialect)
	if err != nil {
		_ = formatter.Error(ErrCodeParseFailed, err.Error(), nil)
		return nil, NewExitError(ExitCommandError, err.Error())
	}

	formatter.VerboseLog("Compiling %d comparison(s) and %d blocking rule(s) for dialect %s",
		len(spec.Comparisons), len(spec.BlockingRules), dialect)

	result := &CompileResult{
		RunID:   uuid.NewString(),
		Dialect: string(dialect),
	}

	for _, m := range spec.Comparisons {
		comp, err := comparison.FromMap(m)
		if err != nil {
			_ = formatter.Error(ErrCodeConstruction, err.Error(), nil)
			return nil, NewExitError(ExitFailure, err.Error())
		}
		formatter.VerboseLog("Compiling comparison: %s", comp.OutputColumnName)
		compiled, err := compiler.CompileComparison(comp, dialect)
		if err != nil {
			_ = formatter.Error(ErrCodeCompile, err.Error(), nil)
			return nil, NewExitError(ExitFailure, err.Error())
		}
		result.Comparisons = append(result.Comparisons, compiled)
	}

	for _, input := range spec.BlockingRules {
		rule, err := compiler.CompileBlockingRule(input, dialect)
		if err != nil {
			if blocking.IsInvalidRuleInput(err) {
				_ = formatter.Error(ErrCodeConstruction, err.Error(), nil)
				return nil, NewExitError(ExitFailure, err.Error())
			}
			_ = formatter.Error(ErrCodeCompile, err.Error(), nil)
			return nil, NewExitError(ExitFailure, err.Error())
		}
		fp, err := compiler.RuleFingerprint(rule)
		if err != nil {
			_ = formatter.Error(ErrCodeCompile, err.Error(), nil)
			return nil, NewExitError(ExitFailure, err.Error())
		}
		result.BlockingRules = append(result.BlockingRules, CompiledRule{
			BlockingRuleSQL: rule.BlockingRuleSQL,
			Dialect:         string(rule.Dialect),
			Fingerprint:     fp,
		})
	}

	return result, nil
}

func outputJobError(formatter *OutputFormatter, err error) error {
	if loadErr, ok := err.(*LoadError); ok {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Message)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return NewExitError(ExitCommandError, err.Error())
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompileResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d comparison(s), %d blocking rule(s) for dialect %s\n\n",
		len(result.Comparisons), len(result.BlockingRules), result.Dialect)

	if len(result.Comparisons) > 0 {
		fmt.Fprintln(formatter.Writer, "Comparisons:")
		for _, c := range result.Comparisons {
			fmt.Fprintf(formatter.Writer, "  %s: %d level(s)\n", c.OutputColumnName, len(c.Levels))
			fmt.Fprintf(formatter.Writer, "    %s\n", c.CaseSQL)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if len(result.BlockingRules) > 0 {
		fmt.Fprintln(formatter.Writer, "Blocking rules:")
		for _, r := range result.BlockingRules {
			fmt.Fprintf(formatter.Writer, "  %s\n", r.BlockingRuleSQL)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote compiled job to %s\n", outputFile)
	}

	return nil
}

func writeResultToFile(result *CompileResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
