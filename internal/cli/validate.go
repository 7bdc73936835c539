package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/browo097302/splink/internal/sqlcheck"
	"github.com/browo097302/splink/internal/sqldialect"
)

// ValidationResult summarizes a validate run.
type ValidationResult struct {
	Dialect       string   `json:"dialect"`
	Comparisons   []string `json:"comparisons"`
	BlockingRules int      `json:"blocking_rules"`
	SyntaxChecked bool     `json:"syntax_checked"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <job-file>",
		Short: "Validate a linkage job spec without emitting output",
		Long: `Load a job spec, construct and compile every comparison and
blocking rule for the job's dialect, and report the first problem
found. For the sqlite dialect the compiled SQL is additionally
prepared against an in-memory database to catch syntax errors.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, jobPath string, cmd *cobra.Command) error {
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

	summary := &ValidationResult{
		Dialect:       result.Dialect,
		BlockingRules: len(result.BlockingRules),
	}
	for _, c := range result.Comparisons {
		summary.Comparisons = append(summary.Comparisons, c.OutputColumnName)
	}

	if result.Dialect == string(sqldialect.SQLite) {
		if err := syntaxCheck(result); err != nil {
			_ = formatter.Error(ErrCodeSyntaxCheck, err.Error(), nil)
			return NewExitError(ExitFailure, err.Error())
		}
		summary.SyntaxChecked = true
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "✓ Job is valid: %d comparison(s), %d blocking rule(s) for dialect %s\n",
		len(summary.Comparisons), summary.BlockingRules, summary.Dialect)
	if summary.SyntaxChecked {
		fmt.Fprintln(formatter.Writer, "  compiled SQL passed the sqlite syntax check")
	}
	return nil
}

// syntaxCheck prepares every compiled fragment against an in-memory
// sqlite database.
func syntaxCheck(result *CompileResult) error {
	for _, c := range result.Comparisons {
		checker, err := sqlcheck.Open(sqlcheck.ColumnsFromSQL(c.CaseSQL))
		if err != nil {
			return err
		}
		err = checker.CheckCase(c.CaseSQL)
		checker.Close()
		if err != nil {
			return fmt.Errorf("comparison %q: %w", c.OutputColumnName, err)
		}
	}
	return nil
}
