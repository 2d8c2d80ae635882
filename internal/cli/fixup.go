package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linksignis/navledger/fixup"
)

func newFixupCmd(rc *RootConfig) *cobra.Command {
	var autoConfirm bool

	cmd := &cobra.Command{
		Use:     "fixup",
		Aliases: []string{"ufv", "update-fund-values"},
		Short:   "Detect and correct fund-value discrepancies on valuation dates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			var confirmer fixup.Confirmer = fixup.Prompt{}
			if autoConfirm {
				confirmer = fixup.AutoConfirm{}
			}

			res, err := fixup.Run(st, confirmer, fixup.Options{
				Epoch:  rc.Epoch(),
				Logger: rc.Logger(),
			})
			if err != nil {
				return err
			}

			fmt.Printf("%d corrections applied (run %s)\n", res.Applied, res.RunID)
			if len(res.Remaining) > 0 {
				fmt.Printf("%d discrepancies left unresolved:\n", len(res.Remaining))
				for _, d := range res.Remaining {
					fmt.Printf("  %s\n", d)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&autoConfirm, "auto-confirm", "a", false, "Apply corrections without prompting")
	return cmd
}
