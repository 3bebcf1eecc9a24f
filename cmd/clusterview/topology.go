package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nimsforest/clusterview"
)

func newTopologyCommand(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Load the topology once and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			state, err := clusterview.NewSourceStateProvider(ctx, a.source).GetViewState()
			if err != nil {
				return err
			}

			if asJSON {
				data, err := clusterview.ViewStateToJSONBytes(state)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			return printTopology(state)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the view model as JSON")
	return cmd
}

func printTopology(state *clusterview.ViewState) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MACHINE\tSTATUS\tROLE\tCPU\tMEMORY\tWORKLOADS")
	for _, m := range state.Machines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", m.Name, m.Status, m.Role, m.CPU, m.Memory, len(m.Workloads))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := state.Summary
	fmt.Printf("\n%s machines (%s ready), %s workloads: %s running, %s pending, %s failed, %s other\n",
		humanize.Comma(int64(s.Machines)), humanize.Comma(int64(s.Ready)),
		humanize.Comma(int64(s.Workloads)), humanize.Comma(int64(s.Running)),
		humanize.Comma(int64(s.Pending)), humanize.Comma(int64(s.Failed)),
		humanize.Comma(int64(s.Other)))
	return nil
}
