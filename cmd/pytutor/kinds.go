package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pytutor/internal/detect"
	"pytutor/internal/kb"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the error kinds the knowledge base explains",
	Args:  cobra.NoArgs,
	RunE:  runKinds,
}

func init() {
	kindsCmd.Flags().Bool("checks", false, "list the detector's checks in the order they run instead")
}

func runKinds(cmd *cobra.Command, _ []string) error {
	checks, err := cmd.Flags().GetBool("checks")
	if err != nil {
		return fmt.Errorf("failed to get checks flag: %w", err)
	}
	out := cmd.OutOrStdout()
	if checks {
		for i, name := range detect.Checks() {
			fmt.Fprintf(out, "%2d. %s\n", i+1, name)
		}
		return nil
	}

	name := color.New(color.FgRed, color.Bold)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, kind := range kb.Kinds() {
		fmt.Fprintf(tw, "%s\t%s\n", name.Sprint(kind), kb.Of(kind).Definition)
	}
	return tw.Flush()
}
