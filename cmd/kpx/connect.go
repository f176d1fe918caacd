package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kpx-tools/kpx/internal/app"
	"github.com/kpx-tools/kpx/internal/output"
)

func addConnectFlags(cmd *cobra.Command, f *connectFlags) {
	cmd.Flags().StringVar(&f.database, "database", "", "KeePass database (.kdbx) path")
	cmd.Flags().StringVar(&f.keyFile, "keyfile", "", "Key file path")
	cmd.Flags().StringVar(&f.exe, "exe", "", "keepassxc-cli path (default: well-known locations, then PATH)")
	cmd.Flags().StringVar(&f.credentialFile, "credential-file", "", "Credential file path (file backend)")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "Read the master password from stdin instead of the stored credential")
	cmd.Flags().BoolVar(&f.newCredential, "new-credential", false, "Discard the stored credential and prompt for a new one")
}

// NewConnectCommand creates the connect command
func NewConnectCommand(w *output.Writer) *cobra.Command {
	flags := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Unlock a KeePass database and validate the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(flags, w)
		},
	}
	addConnectFlags(cmd, flags)

	return cmd
}

func runConnect(flags *connectFlags, w *output.Writer) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}

	opts, xe := buildConnectionOptions(flags)
	if xe != nil {
		return xe
	}

	conn, xe := app.ResolveConnection(context.Background(), opts)
	if xe != nil {
		return xe
	}
	defer conn.Close()

	result := map[string]any{
		"connected":  true,
		"database":   conn.Database,
		"exe":        conn.Exe,
		"credential": conn.CredentialLocation,
	}
	if conn.KeyFile != "" {
		result["keyfile"] = conn.KeyFile
	}
	return w.WriteOK(format, result)
}
