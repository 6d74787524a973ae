// Package main is the entrypoint for rpcd, the typed-rpc server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information, set at build time.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpcd",
		Short: "Typed RPC server",
		Long: `rpcd serves a typed RPC app over HTTP and COMMS (NATS).

Without a subcommand it runs serve. Configuration comes from the environment:
APP_NAME, APP_VERSION, COMMS_URL, COMMS_ENABLED, DATABASE_URL, DB_ENSURE,
RPC_HTTP_ADDR, RPC_REQUEST_TIMEOUT, RPC_MAX_BODY_BYTES, LOG_LEVEL.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newEnsureDBCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
