package main

import (
	"github.com/spf13/cobra"

	"github.com/morezero/typed-rpc/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the server (default)",
		Long:  "Serve the app over HTTP and, when COMMS_ENABLED, over COMMS until SIGINT or SIGTERM.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	return server.Run()
}
