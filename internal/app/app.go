package app

import (
	"github.com/kpx-tools/kpx/internal/errors"
	"github.com/kpx-tools/kpx/internal/output"
	"github.com/kpx-tools/kpx/internal/spec"
)

type App struct {
	Version string
	Commit  string
	Date    string
}

func New(version, commit, date string) App {
	return App{Version: version, Commit: commit, Date: date}
}

func (a App) BuildSpec() spec.Spec {
	globalFlags := []spec.FlagSpec{
		{Name: "config", Default: "", Description: "Config file path (YAML); default: ./kpx.yaml or $HOME/.config/kpx/kpx.yaml"},
		{Name: "profile", Shorthand: "p", Env: "KPX_PROFILE", Default: "", Description: "Profile name (config: profiles.<name>)"},
		{Name: "format", Shorthand: "f", Env: "KPX_FORMAT", Default: "auto", Description: "Output format: json|yaml|table|csv|auto"},
		{Name: "verbose", Default: "false", Description: "Enable debug logging on stderr"},
	}
	connectFlags := []spec.FlagSpec{
		{Name: "database", Description: "KeePass database (.kdbx) path"},
		{Name: "keyfile", Description: "Key file path"},
		{Name: "exe", Description: "keepassxc-cli path (default: well-known locations, then PATH)"},
		{Name: "credential-file", Description: "Credential file path (file backend)"},
		{Name: "password-stdin", Default: "false", Description: "Read the master password from stdin instead of the stored credential"},
		{Name: "new-credential", Default: "false", Description: "Discard the stored credential and prompt for a new one"},
	}
	return spec.Spec{
		SchemaVersion: output.SchemaVersion,
		Commands: []spec.CommandSpec{
			{
				Name:        "spec",
				Description: "Export tool spec for AI/agents",
				Flags:       globalFlags,
			},
			{
				Name:        "version",
				Description: "Print version information",
				Flags:       globalFlags,
			},
			{
				Name:        "connect",
				Description: "Unlock a KeePass database and validate the stored credential",
				Flags:       append(globalFlags, connectFlags...),
			},
			{
				Name:        "get",
				Description: "Retrieve one entry by title",
				Flags:       append(globalFlags, connectFlags...),
			},
			{
				Name:        "list",
				Description: "List all entries (recursive flattened listing)",
				Flags:       append(globalFlags, connectFlags...),
			},
			{
				Name:        "credential",
				Description: "Manage the stored credential (set|clear|path)",
				Flags:       globalFlags,
			},
			{
				Name:        "profile",
				Description: "Manage profiles (list|show)",
				Flags:       globalFlags,
			},
		},
		ErrorCodes: errors.AllCodes(),
	}
}

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"`
}

func (a App) VersionInfo() VersionInfo {
	return VersionInfo{Version: a.Version, Commit: a.Commit, Date: a.Date}
}
