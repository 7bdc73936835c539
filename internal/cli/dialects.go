package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/browo097302/splink/internal/sqldialect"
)

// DialectCoverage reports which abstract operations a dialect supports.
type DialectCoverage struct {
	Dialect    string   `json:"dialect"`
	Operations []string `json:"operations"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects and their operation coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialects(rootOpts, cmd)
		},
	}
}

func runDialects(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	if formatter.Format == "json" {
		var coverage []DialectCoverage
		for _, d := range sqldialect.All() {
			c := DialectCoverage{Dialect: string(d)}
			for _, op := range sqldialect.Operations() {
				if sqldialect.Supports(d, op) {
					c.Operations = append(c.Operations, string(op))
				}
			}
			coverage = append(coverage, c)
		}
		return formatter.Success(coverage)
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "operation")
	for _, d := range sqldialect.All() {
		fmt.Fprintf(w, "\t%s", d)
	}
	fmt.Fprintln(w)
	for _, op := range sqldialect.Operations() {
		fmt.Fprint(w, op)
		for _, d := range sqldialect.All() {
			mark := "-"
			if sqldialect.Supports(d, op) {
				mark = "yes"
			}
			fmt.Fprintf(w, "\t%s", mark)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
