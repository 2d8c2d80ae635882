package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linksignis/navledger/ledger"
)

func newOtherCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "other",
		Short: "Manage non-brokerage transactions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "load <transactions.csv>",
		Aliases: []string{"olc"},
		Short:   "Load an other-transactions CSV",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := rc.Ingestor(st).OtherFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%d inserted, %d updated, %d skipped\n",
				res.Inserted, res.Updated, res.Skipped)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "load-folder <dir>",
		Aliases: []string{"olf"},
		Short:   "Load every other-transactions CSV in a folder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := rc.Ingestor(st).OtherFolder(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%d inserted, %d updated, %d skipped\n",
				res.Inserted, res.Updated, res.Skipped)
			return nil
		},
	})

	var note string
	add := &cobra.Command{
		Use:     "add <date> <amount> <account> <description> <counted-in-pl> <overnight>",
		Aliases: []string{"aot"},
		Short:   "Add a single transaction directly",
		Args:    cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := ledger.ParseDate(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseFloat(strings.ReplaceAll(args[1], ",", ""), 64)
			if err != nil {
				return fmt.Errorf("bad amount %q", args[1])
			}

			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			inserted, err := st.UpsertOtherTransaction(ledger.OtherTransaction{
				Date:        date,
				Amount:      amount,
				Account:     args[2],
				Description: args[3],
				CountedInPL: parseYesNo(args[4]),
				Overnight:   parseYesNo(args[5]),
				Note:        note,
			})
			if err != nil {
				return err
			}

			if _, err := st.RebuildOverall(rc.Epoch()); err != nil {
				return err
			}
			if inserted {
				fmt.Printf("Added transaction on %s for %.2f\n", date, amount)
			} else {
				fmt.Printf("Transaction already present, flags updated\n")
			}
			return nil
		},
	}
	add.Flags().StringVarP(&note, "additional-info", "i", "", "Free-text note")
	cmd.AddCommand(add)

	return cmd
}

func parseYesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
