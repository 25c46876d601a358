package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pytutor/internal/logging"
	"pytutor/internal/lsp"
	"pytutor/internal/mockexec"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the pytutor language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	configFlag, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:       appConfig.LSP.Debounce.Duration,
		MaxDiagnostics: appConfig.Detect.MaxDiagnostics,
		// an explicit --config wins over the workspace's pytutor.toml
		Explicit: configFlag != "",
		Runner:   mockexec.New(appConfig.Run.MinDelay.Duration, appConfig.Run.MaxDelay.Duration),
		Logger:   logging.Named("lsp"),
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
