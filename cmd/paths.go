package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/featbench/pkg/paths"
)

func newPathsCmd(a *app) *cobra.Command {
	var datasetName, methodName string

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the files a run reads and writes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if datasetName == "" {
				return errors.Wrap(ErrMissingFlag, "--dataset_name")
			}
			if methodName == "" {
				return errors.Wrap(ErrMissingFlag, "--method_name")
			}

			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, field := range paths.Resolve(cfg.PathLayout(), datasetName, methodName).Fields() {
				fmt.Fprintf(tw, "%s\t%s\n", field[0], field[1])
			}

			return errors.Wrap(tw.Flush(), "unable to print paths")
		},
	}

	cmd.Flags().StringVar(&datasetName, "dataset_name", "", "name of the dataset")
	cmd.Flags().StringVar(&methodName, "method_name", "", "name of the feature method")
	_ = cmd.MarkFlagRequired("dataset_name")
	_ = cmd.MarkFlagRequired("method_name")

	return cmd
}
