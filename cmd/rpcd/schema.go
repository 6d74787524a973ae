package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/morezero/typed-rpc/internal/config"
	"github.com/morezero/typed-rpc/internal/server"
)

type schemaOptions struct {
	out    string
	indent bool
}

func newSchemaCmd() *cobra.Command {
	opts := &schemaOptions{}
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema document",
		Long:  "Build the app from APP_* settings and print its schema document. No database or COMMS connection is opened.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchema(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "indent the JSON output")
	return cmd
}

func runSchema(stdout io.Writer, opts *schemaOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateApp(); err != nil {
		return err
	}

	app, err := server.BuildSchemaApp(cfg)
	if err != nil {
		return err
	}
	data, err := app.SchemaJSON()
	if err != nil {
		return fmt.Errorf("rpcd schema: %w", err)
	}
	if opts.indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("rpcd schema: %w", err)
		}
		data = buf.Bytes()
	}
	data = append(data, '\n')

	if opts.out == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return fmt.Errorf("rpcd schema: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s\n", opts.out)
	return nil
}
