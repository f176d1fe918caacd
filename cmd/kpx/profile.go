package main

import (
	"github.com/spf13/cobra"

	"github.com/kpx-tools/kpx/internal/config"
	"github.com/kpx-tools/kpx/internal/errors"
	"github.com/kpx-tools/kpx/internal/output"
)

// NewProfileCommand creates the profile command group
func NewProfileCommand(w *output.Writer) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}

	profileCmd.AddCommand(newProfileListCommand(w))
	profileCmd.AddCommand(newProfileShowCommand(w))

	return profileCmd
}

// newProfileListCommand creates the profile list command
func newProfileListCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			cfg, cfgPath, xe := config.LoadConfig(config.Options{
				ConfigPath: GlobalConfig.ConfigStr,
			})
			if xe != nil {
				return xe
			}

			type profileInfo struct {
				Name        string `json:"name"`
				Description string `json:"description,omitempty"`
				Database    string `json:"database"`
				Backend     string `json:"credential_backend"`
			}

			profiles := make([]profileInfo, 0, len(cfg.Profiles))
			for name, p := range cfg.Profiles {
				backend := p.CredentialBackend
				if backend == "" {
					backend = "keyring"
				}
				profiles = append(profiles, profileInfo{
					Name:        name,
					Description: p.Description,
					Database:    p.Database,
					Backend:     backend,
				})
			}

			result := map[string]any{
				"config_path": cfgPath,
				"profiles":    profiles,
			}

			return w.WriteOK(format, result)
		},
	}
}

// newProfileShowCommand creates the profile show command
func newProfileShowCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show profile details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			cfg, cfgPath, xe := config.LoadConfig(config.Options{
				ConfigPath: GlobalConfig.ConfigStr,
			})
			if xe != nil {
				return xe
			}

			profile, ok := cfg.Profiles[name]
			if !ok {
				return errors.New(errors.CodeCfgInvalid, "profile not found", map[string]any{"name": name})
			}

			// Redact sensitive information: hide password
			result := map[string]any{
				"config_path":     cfgPath,
				"name":            name,
				"description":     profile.Description,
				"database":        profile.Database,
				"keyfile":         profile.KeyFile,
				"exe":             profile.Exe,
				"allow_plaintext": profile.AllowPlaintext,
			}

			if profile.Password != "" {
				result["password"] = "***"
			}
			if profile.CredentialBackend != "" {
				result["credential_backend"] = profile.CredentialBackend
			}
			if profile.CredentialFile != "" {
				result["credential_file"] = profile.CredentialFile
			}
			if profile.OnInvalidCredential != "" {
				result["on_invalid_credential"] = profile.OnInvalidCredential
			}
			if profile.TimeoutSeconds != 0 {
				result["timeout"] = profile.TimeoutSeconds
			}

			return w.WriteOK(format, result)
		},
	}
}
