package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linksignis/navledger/ledger"
	"github.com/linksignis/navledger/report"
)

func newReportCmd(rc *RootConfig) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "report <start-date> <end-date>",
		Aliases: []string{"gr"},
		Short:   "Generate an Excel report for a date range (MM/DD/YYYY)",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := ledger.ParseDate(args[0])
			if err != nil {
				return err
			}
			end, err := ledger.ParseDate(args[1])
			if err != nil {
				return err
			}
			if end.Before(start) {
				return fmt.Errorf("end date %s is before start date %s", end, start)
			}

			if output == "" {
				output = rc.Config().Report.Output
			}

			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := report.Generate(st, start, end, output, rc.Logger()); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .xlsx path (default from config)")
	return cmd
}

func newRebuildCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute the overall ledger from current data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.RebuildOverall(rc.Epoch())
			if err != nil {
				return err
			}
			fmt.Printf("Ledger rebuilt: %d rows\n", n)
			return nil
		},
	}
}
