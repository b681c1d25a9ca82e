package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"takehome/internal/platform/taxdata"
)

func newImportCmd(opts *options) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bracket and deduction files into the local database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = opts.cfg.General.DataDir
			}
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			imported, err := taxdata.ImportDir(cmd.Context(), store, dir, opts.cfg.General.Year)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d jurisdictions for %d into %s: %v\n",
				len(imported), opts.cfg.General.Year, opts.cfg.General.DBPath, imported)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Data directory holding <year>/Fed_Tax.json (default from config, taxdata)")
	return cmd
}
