package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDBCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}

	var force bool
	drop := &cobra.Command{
		Use:     "drop-table <name>",
		Aliases: []string{"dt"},
		Short:   "Drop one of the known tables",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				ok, err := promptYesNo(fmt.Sprintf("Drop table %q? This cannot be undone.", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Aborted.")
					return nil
				}
			}

			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DropTable(args[0]); err != nil {
				return err
			}
			fmt.Printf("Dropped table %s\n", args[0])
			return nil
		},
	}
	drop.Flags().BoolVarP(&force, "force", "f", false, "Drop without confirmation")
	cmd.AddCommand(drop)

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Summarize the overall ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.OverallStats()
			if err != nil {
				return err
			}
			if stats == nil {
				fmt.Println("Ledger is empty. Load broker statements first.")
				return nil
			}

			fmt.Printf("Rows:      %d\n", stats.Rows)
			fmt.Printf("Range:     %s to %s\n", stats.FirstDate, stats.LastDate)
			fmt.Printf("Total P&L: %.2f\n", stats.TotalPL)
			fmt.Printf("Best day:  %.2f\n", stats.MaxPL)
			fmt.Printf("Worst day: %.2f\n", stats.MinPL)
			return nil
		},
	})

	return cmd
}
