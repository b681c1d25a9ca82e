package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"takehome/internal/domain/tax"
)

func newBracketsCmd(opts *options) *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "brackets",
		Short: "Print the bracket table of the federal government or a state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			j := tax.Federal
			if state != "" {
				code, err := tax.ParseState(state)
				if err != nil {
					return err
				}
				j = code
			}
			svc, err := opts.service(cmd.Context())
			if err != nil {
				return err
			}
			brackets, err := svc.Brackets(opts.cfg.General.Year, j)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(brackets))
			for _, b := range brackets {
				rows = append(rows, []string{
					fmt.Sprintf("%g%%", b.Rate),
					money(b.IncomeMin),
					bound(b.IncomeMax),
					money(b.TotalTaxPriorBrackets),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(Table{
				Title:   fmt.Sprintf("%s brackets %d", j, opts.cfg.General.Year),
				Headers: []string{"Rate", "From", "To", "Prior brackets tax"},
				Rows:    rows,
			}))
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "Two-letter state code (default federal)")
	return cmd
}
