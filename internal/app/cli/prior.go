package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"takehome/internal/platform/taxdata"
)

func newPriorCmd(_ *options) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "prior <file>",
		Short: "Recompute total_tax_prior_brackets in a tax data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var f taxdata.File
			if err := json.Unmarshal(raw, &f); err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			f.TaxBrackets = taxdata.RecomputePriorTax(f.TaxBrackets)

			out, err := json.MarshalIndent(f, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')
			if write {
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				return os.WriteFile(path, out, info.Mode().Perm())
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place")
	return cmd
}
