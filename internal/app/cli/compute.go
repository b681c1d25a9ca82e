package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newComputeCmd(opts *options) *cobra.Command {
	var (
		income float64
		state  string
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute federal tax, or federal and state tax when --state is given",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if state == "" {
				result, err := svc.Federal(income, opts.cfg.General.Year)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderTitle(fmt.Sprintf("Federal tax %d", opts.cfg.General.Year)))
				fmt.Fprint(out, renderTable(Table{
					Headers: []string{"Item", "Amount"},
					Rows: [][]string{
						{"Gross income", money(result.GrossIncome)},
						{"Standard deduction", money(result.Deduction)},
						{"Taxable income", money(result.TaxableIncome)},
						{"Marginal rate", fmt.Sprintf("%g%%", result.Bracket.Rate)},
						{"Tax", money(result.TaxAmount)},
						{"Take-home pay", money(result.TakehomePay)},
					},
				}))
				return nil
			}

			result, err := svc.Combined(income, state, opts.cfg.General.Year)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderTitle(fmt.Sprintf("Federal and %s tax %d", result.State, result.Year)))
			fmt.Fprint(out, renderTable(Table{
				Headers: []string{"Item", "Amount"},
				Rows: [][]string{
					{"Gross income", money(result.GrossIncome)},
					{"Federal taxable income", money(result.FederalTaxableIncome)},
					{"Federal tax", money(result.FederalTax)},
					{"State taxable income", money(result.StateTaxableIncome)},
					{"State tax", money(result.StateTax)},
					{"Take-home pay", money(result.TakehomePay)},
				},
			}))
			return nil
		},
	}
	cmd.Flags().Float64Var(&income, "income", 0, "Gross annual income")
	cmd.Flags().StringVar(&state, "state", "", "Two-letter state code")
	_ = cmd.MarkFlagRequired("income")
	return cmd
}
