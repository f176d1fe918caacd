package main

import (
	"github.com/spf13/cobra"

	"github.com/kpx-tools/kpx/internal/credential"
	"github.com/kpx-tools/kpx/internal/errors"
	"github.com/kpx-tools/kpx/internal/output"
)

type credentialFlags struct {
	database       string
	credentialFile string
	passwordStdin  bool
}

func addCredentialFlags(cmd *cobra.Command, f *credentialFlags) {
	cmd.Flags().StringVar(&f.database, "database", "", "KeePass database (.kdbx) path")
	cmd.Flags().StringVar(&f.credentialFile, "credential-file", "", "Credential file path (file backend)")
}

// NewCredentialCommand creates the credential command group
func NewCredentialCommand(w *output.Writer) *cobra.Command {
	credentialCmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the stored credential",
	}

	credentialCmd.AddCommand(newCredentialSetCommand(w))
	credentialCmd.AddCommand(newCredentialClearCommand(w))
	credentialCmd.AddCommand(newCredentialPathCommand(w))

	return credentialCmd
}

// credentialStore builds the store for the merged profile+flag values
// (same backend selection as connection establishment).
func credentialStore(flags *credentialFlags) (credential.Store, *errors.XError) {
	p := GlobalConfig.Resolved.Profile

	switch p.CredentialBackend {
	case "file":
		return credential.NewFileStore(firstNonEmpty(flags.credentialFile, p.CredentialFile)), nil
	case "", "keyring":
		database := firstNonEmpty(flags.database, p.Database)
		if database == "" {
			return nil, errors.New(errors.CodeCfgInvalid, "database is required for the keyring backend (flag --database or profile)", nil)
		}
		return credential.NewKeyringStore(database, nil), nil
	default:
		return nil, errors.New(errors.CodeCfgInvalid, "invalid credential_backend", map[string]any{"value": p.CredentialBackend})
	}
}

// newCredentialSetCommand creates the credential set command
func newCredentialSetCommand(w *output.Writer) *cobra.Command {
	flags := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the master password without probing the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			store, xe := credentialStore(flags)
			if xe != nil {
				return xe
			}

			var secretValue string
			if flags.passwordStdin {
				secretValue, xe = readSecretFromStdin()
				if xe != nil {
					return xe
				}
			} else {
				if !stdinIsTerminal() {
					return errors.New(errors.CodeCfgInvalid, "stdin is not a terminal; use --password-stdin", nil)
				}
				v, err := readPassword("Master password: ")
				if err != nil {
					return errors.Wrap(errors.CodeInternal, "failed to read password", nil, err)
				}
				secretValue = v
			}
			if secretValue == "" {
				return errors.New(errors.CodeCredInvalid, "empty password", nil)
			}

			rec, xe := store.Save(secretValue)
			if xe != nil {
				return xe
			}

			return w.WriteOK(format, map[string]any{
				"stored":     true,
				"id":         rec.ID,
				"created_at": rec.CreatedAt,
				"location":   store.Location(),
			})
		},
	}
	addCredentialFlags(cmd, flags)
	cmd.Flags().BoolVar(&flags.passwordStdin, "password-stdin", false, "Read the master password from stdin")

	return cmd
}

// newCredentialClearCommand creates the credential clear command
func newCredentialClearCommand(w *output.Writer) *cobra.Command {
	flags := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			store, xe := credentialStore(flags)
			if xe != nil {
				return xe
			}
			if xe := store.Delete(); xe != nil {
				return xe
			}

			return w.WriteOK(format, map[string]any{
				"cleared":  true,
				"location": store.Location(),
			})
		},
	}
	addCredentialFlags(cmd, flags)

	return cmd
}

// newCredentialPathCommand creates the credential path command
func newCredentialPathCommand(w *output.Writer) *cobra.Command {
	flags := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print where the stored credential lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			store, xe := credentialStore(flags)
			if xe != nil {
				return xe
			}

			return w.WriteOK(format, map[string]any{
				"location": store.Location(),
			})
		},
	}
	addCredentialFlags(cmd, flags)

	return cmd
}
