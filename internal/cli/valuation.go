package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linksignis/navledger/ledger"
)

func newValuationCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "valuation",
		Short: "Manage custom valuation dates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "load <valuation.csv>",
		Aliases: []string{"lvc"},
		Short:   "Load valuation dates from a CSV (Date, Fund Value columns)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := rc.Ingestor(st).ValuationFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%d added, %d updated, %d skipped\n",
				res.Added, res.Updated, res.Skipped)
			return nil
		},
	})

	var amount float64
	add := &cobra.Command{
		Use:     "add <date>",
		Aliases: []string{"avd"},
		Short:   "Add a custom valuation date (MM/DD/YYYY)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := ledger.ParseDate(args[0])
			if err != nil {
				return err
			}

			ov := ledger.ValuationOverride{Date: date}
			if cmd.Flags().Changed("amount") {
				ov.FundValue = &amount
			}

			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			created, err := st.UpsertValuationDate(ov)
			if err != nil {
				return err
			}
			if _, err := st.RebuildOverall(rc.Epoch()); err != nil {
				return err
			}

			if created {
				fmt.Printf("Added valuation date %s\n", date)
			} else {
				fmt.Printf("Valuation date %s updated\n", date)
			}
			return nil
		},
	}
	add.Flags().Float64VarP(&amount, "amount", "a", 0, "Fund value to pin on this date")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"lvd"},
		Short:   "List custom valuation dates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			overrides, err := st.ValuationOverrides()
			if err != nil {
				return err
			}
			if len(overrides) == 0 {
				fmt.Println("No custom valuation dates have been added yet.")
			} else {
				fmt.Println("Custom valuation dates:")
				for _, ov := range overrides {
					if ov.FundValue != nil {
						fmt.Printf("  %s (fund value %.2f)\n", ov.Date, *ov.FundValue)
					} else {
						fmt.Printf("  %s\n", ov.Date)
					}
				}
			}
			fmt.Println("Note: the first known date of every month is automatically a valuation date.")
			return nil
		},
	})

	var force bool
	del := &cobra.Command{
		Use:     "delete <date>",
		Aliases: []string{"dvd"},
		Short:   "Delete a custom valuation date",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := ledger.ParseDate(args[0])
			if err != nil {
				return err
			}

			if !force {
				ok, err := promptYesNo(fmt.Sprintf("Delete valuation date %s?", date))
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

			existed, err := st.DeleteValuationDate(date)
			if err != nil {
				return err
			}
			if !existed {
				fmt.Printf("Valuation date %s not found\n", date)
				return nil
			}
			if _, err := st.RebuildOverall(rc.Epoch()); err != nil {
				return err
			}
			fmt.Printf("Deleted valuation date %s\n", date)
			return nil
		},
	}
	del.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	cmd.AddCommand(del)

	return cmd
}
