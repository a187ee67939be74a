package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newMethodsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the registered feature methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tMAX_EDGE\tMAX_SUM_EDGES\tMATCHER\tTHRESHOLD")
			for _, name := range reg.Names() {
				mc, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%v\n", mc.Name, mc.MaxEdge, mc.MaxSumEdges, mc.Kind, mc.Threshold)
			}

			return errors.Wrap(tw.Flush(), "unable to print methods")
		},
	}
}
