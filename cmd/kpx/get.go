package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kpx-tools/kpx/internal/app"
	"github.com/kpx-tools/kpx/internal/output"
)

// NewGetCommand creates the get command
func NewGetCommand(w *output.Writer) *cobra.Command {
	flags := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "get [ENTRY]",
		Short: "Retrieve one entry by title, including its password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args[0], flags, w)
		},
	}
	addConnectFlags(cmd, flags)

	return cmd
}

func runGet(entry string, flags *connectFlags, w *output.Writer) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}

	opts, xe := buildConnectionOptions(flags)
	if xe != nil {
		return xe
	}

	ctx := context.Background()
	conn, xe := app.ResolveConnection(ctx, opts)
	if xe != nil {
		return xe
	}
	defer conn.Close()

	result, xe := conn.GetEntry(ctx, entry)
	if xe != nil {
		return xe
	}
	return w.WriteOK(format, result)
}
