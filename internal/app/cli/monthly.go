package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"takehome/internal/domain/tax"
)

func newMonthlyCmd(opts *options) *cobra.Command {
	var (
		req      tax.MonthlyRequest
		bedrooms string
	)
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Monthly take-home after federal tax, state tax and a share of rent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd.Context())
			if err != nil {
				return err
			}
			req.Bedrooms = bedrooms
			req.Year = opts.cfg.General.Year
			result, err := svc.ComputeMonthlyTakehome(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(Table{
				Title:   fmt.Sprintf("Monthly budget, %s %s", req.City, result.Combined.State),
				Headers: []string{"Item", "Amount"},
				Rows: [][]string{
					{"Annual take-home", money(result.Combined.TakehomePay)},
					{"Monthly salary", money(result.MonthlySalary)},
					{fmt.Sprintf("Rent per person (%s, %d sharing)", bedroomLabel(result.Bedrooms), result.Occupants), money(result.MonthlyRentPerPerson)},
					{"Monthly take-home", money(result.MonthlyTakehome)},
				},
			}))
			return nil
		},
	}
	cmd.Flags().Float64Var(&req.GrossIncome, "income", 0, "Gross annual income")
	cmd.Flags().StringVar(&req.State, "state", "", "Two-letter state code")
	cmd.Flags().StringVar(&req.City, "city", "", "City name")
	cmd.Flags().StringVar(&bedrooms, "bedrooms", "", "Bedrooms: S, 1, 2 or 3")
	cmd.Flags().IntVar(&req.Occupants, "occupants", 1, "People sharing the rent")
	for _, name := range []string{"income", "state", "city", "bedrooms"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
