package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pytutor/internal/diagfmt"
	"pytutor/internal/kb"
)

var explainCmd = &cobra.Command{
	Use:   "explain [flags] <ErrorKind>",
	Short: "Explain an error kind with a before/after example",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type explainPayload struct {
	Kind string `json:"kind"`
	*kb.Info
}

func runExplain(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	kind := strings.TrimSpace(args[0])
	info, ok := kb.Lookup(kind)
	if !ok {
		return fmt.Errorf("unknown error kind %q (see 'pytutor kinds')", kind)
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(explainPayload{Kind: kind, Info: info})
	case "pretty":
		_, err := diagfmt.ExplainCard(cmd.OutOrStdout(), kind, diagfmt.ExplainOpts{Width: min(terminalWidth(80), 100)})
		return err
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}
