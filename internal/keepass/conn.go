package keepass

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/kpx-tools/kpx/internal/errors"
)

// Connection is a validated database/secret/tool-path combination. The
// secret stays in memory only; Close wipes it (best effort).
type Connection struct {
	Exe      string `json:"exe" yaml:"exe"`
	Database string `json:"database" yaml:"database"`
	KeyFile  string `json:"keyfile,omitempty" yaml:"keyfile,omitempty"`

	// CredentialLocation says where the persisted secret lives, for
	// diagnostics only.
	CredentialLocation string `json:"credential_location,omitempty" yaml:"credential_location,omitempty"`

	Connected bool `json:"connected" yaml:"connected"`

	secret  []byte
	runner  Runner
	timeout time.Duration
}

// ConnectOptions are the inputs of connection establishment. Secret is
// the already-resolved master password; credential lookup and prompting
// happen in the caller.
type ConnectOptions struct {
	Exe      string // explicit path; empty = discover
	Database string
	KeyFile  string
	Secret   string

	CredentialLocation string

	// Timeout bounds each subprocess call; 0 blocks until it exits.
	Timeout time.Duration

	// Runner is the test seam; nil spawns real subprocesses.
	Runner Runner
}

// Connect validates paths, resolves the executable and probes the
// database with a read-only listing. A rejected secret yields
// KPX_AUTH_FAILED carrying the tool's diagnostic text; on any failure no
// connection is returned.
func Connect(ctx context.Context, opts ConnectOptions) (*Connection, *errors.XError) {
	if opts.Database == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "database path is required", nil)
	}
	if _, err := os.Stat(opts.Database); err != nil {
		return nil, errors.Wrap(errors.CodeCfgInvalid, "database file does not exist", map[string]any{"path": opts.Database}, err)
	}
	if opts.KeyFile != "" {
		if _, err := os.Stat(opts.KeyFile); err != nil {
			return nil, errors.Wrap(errors.CodeCfgInvalid, "key file does not exist", map[string]any{"path": opts.KeyFile}, err)
		}
	}

	exe, xe := LocateExe(opts.Exe)
	if xe != nil {
		return nil, xe
	}

	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	conn := &Connection{
		Exe:                exe,
		Database:           opts.Database,
		KeyFile:            opts.KeyFile,
		CredentialLocation: opts.CredentialLocation,
		secret:             []byte(opts.Secret),
		runner:             runner,
		timeout:            opts.Timeout,
	}

	// Probe with a plain read-only listing to confirm the secret
	// unlocks the database.
	out, exit, err := conn.run(ctx, conn.args([]string{"ls"}))
	if err != nil {
		return nil, errors.Wrap(errors.CodeCLIFailed, "failed to invoke keepassxc-cli", map[string]any{"exe": exe}, err)
	}
	if exit != 0 {
		return nil, errors.New(errors.CodeAuthFailed, "database unlock failed", map[string]any{
			"database": opts.Database,
			"exit":     exit,
			"output":   out,
		})
	}

	conn.Connected = true
	return conn, nil
}

// args builds the argument list for one operation: the operation and its
// flags, the key-file option if any, the database path, then trailing
// positional arguments.
func (c *Connection) args(op []string, trailing ...string) []string {
	args := append([]string{}, op...)
	if c.KeyFile != "" {
		args = append(args, "--key-file", c.KeyFile)
	}
	args = append(args, c.Database)
	return append(args, trailing...)
}

func (c *Connection) run(ctx context.Context, args []string) (string, int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.runner.Run(ctx, c.Exe, args, string(c.secret))
}

// GetEntry retrieves one entry with `show -s`. A missing entry maps to
// KPX_ENTRY_NOT_FOUND; any other non-zero exit or error marker surfaces
// the tool's combined output verbatim.
func (c *Connection) GetEntry(ctx context.Context, name string) (Entry, *errors.XError) {
	if !c.Connected {
		return Entry{}, errors.New(errors.CodeNotConnected, "not connected; run connect first", nil)
	}
	if name == "" {
		return Entry{}, errors.New(errors.CodeCfgInvalid, "entry name is required", nil)
	}

	out, exit, err := c.run(ctx, c.args([]string{"show", "-s"}, name))
	if err != nil {
		return Entry{}, errors.Wrap(errors.CodeCLIFailed, "failed to invoke keepassxc-cli", map[string]any{"exe": c.Exe}, err)
	}
	if exit != 0 || containsErrorMarker(out) {
		code := errors.CodeCLIFailed
		if isEntryNotFound(out) {
			code = errors.CodeEntryNotFound
		}
		return Entry{}, errors.New(code, "entry retrieval failed", map[string]any{
			"entry":  name,
			"exit":   exit,
			"output": out,
		})
	}
	return ParseShowOutput(out), nil
}

// ListEntries retrieves the recursive flattened listing. A listing that
// parses into no structured shape comes back with Unstructured set and
// the raw lines preserved.
func (c *Connection) ListEntries(ctx context.Context) (ListResult, *errors.XError) {
	if !c.Connected {
		return ListResult{}, errors.New(errors.CodeNotConnected, "not connected; run connect first", nil)
	}

	out, exit, err := c.run(ctx, c.args([]string{"ls", "-R", "-f"}))
	if err != nil {
		return ListResult{}, errors.Wrap(errors.CodeCLIFailed, "failed to invoke keepassxc-cli", map[string]any{"exe": c.Exe}, err)
	}
	if exit != 0 {
		return ListResult{}, errors.New(errors.CodeCLIFailed, "listing failed", map[string]any{
			"exit":   exit,
			"output": out,
		})
	}
	return ParseListing(out), nil
}

// Close wipes the in-memory secret and marks the connection unusable.
func (c *Connection) Close() {
	for i := range c.secret {
		c.secret[i] = 0
	}
	c.secret = nil
	c.Connected = false
}

func containsErrorMarker(out string) bool {
	return strings.Contains(out, "Error:")
}

func isEntryNotFound(out string) bool {
	lower := strings.ToLower(out)
	return strings.Contains(lower, "could not find entry") ||
		strings.Contains(lower, "entry not found")
}
