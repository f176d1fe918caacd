package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kpx-tools/kpx/internal/app"
	"github.com/kpx-tools/kpx/internal/output"
)

// NewListCommand creates the list command
func NewListCommand(w *output.Writer) *cobra.Command {
	flags := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all entries (recursive flattened listing)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(flags, w)
		},
	}
	addConnectFlags(cmd, flags)

	return cmd
}

func runList(flags *connectFlags, w *output.Writer) error {
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

	result, xe := conn.ListEntries(ctx)
	if xe != nil {
		return xe
	}

	// An empty database is a normal empty listing; only output that
	// matched no structured shape gets the warning.
	if result.Unstructured {
		return w.WriteWarn(format, "listing output matched no structured shape; raw lines preserved", result)
	}
	return w.WriteOK(format, result)
}
