package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBrokerCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "broker",
		Short: "Ingest brokerage activity statements",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "load <statement.csv>",
		Aliases: []string{"blc"},
		Short:   "Load a single brokerage statement CSV",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := rc.Ingestor(st).BrokerFile(args[0]); err != nil {
				return err
			}
			fmt.Printf("Loaded %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "load-folder <dir>",
		Aliases: []string{"blf"},
		Short:   "Load every brokerage statement CSV in a folder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := rc.Ingestor(st).BrokerFolder(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d statements from %s\n", n, args[0])
			return nil
		},
	})

	return cmd
}
