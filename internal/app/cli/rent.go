package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"takehome/internal/domain/tax"
)

func newRentCmd(opts *options) *cobra.Command {
	var state, city string
	cmd := &cobra.Command{
		Use:   "rent",
		Short: "Fetch average rents for a city",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd.Context())
			if err != nil {
				return err
			}
			data, err := svc.FetchRent(cmd.Context(), state, city)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(tax.AllBedrooms))
			for _, b := range tax.AllBedrooms {
				value := "n/a"
				if avg, ok := data.AvgRent[b]; ok {
					value = money(avg)
				}
				rows = append(rows, []string{bedroomLabel(b), value})
			}
			title := data.Location
			if title == "" {
				title = fmt.Sprintf("%s, %s", city, state)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(Table{
				Title:   "Average rent in " + title,
				Headers: []string{"Bedrooms", "Monthly rent"},
				Rows:    rows,
			}))
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "Two-letter state code")
	cmd.Flags().StringVar(&city, "city", "", "City name")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func bedroomLabel(b tax.Bedrooms) string {
	if b == tax.BedroomsStudio {
		return "Studio"
	}
	return string(b)
}
