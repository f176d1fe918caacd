package app

import (
	"context"
	"time"

	"github.com/kpx-tools/kpx/internal/credential"
	"github.com/kpx-tools/kpx/internal/errors"
	"github.com/kpx-tools/kpx/internal/keepass"
	"github.com/kpx-tools/kpx/internal/secret"
)

// ConnectionOptions are the fully merged inputs of connection
// establishment (profile values already overridden by flags).
type ConnectionOptions struct {
	Database string
	KeyFile  string
	Exe      string

	// ExplicitSecret short-circuits credential resolution entirely
	// (e.g. --password-stdin).
	ExplicitSecret string

	// PasswordRef is the profile's password value: a keyring: reference
	// or, with AllowPlaintext, a literal.
	PasswordRef    string
	AllowPlaintext bool

	CredentialBackend  string // "" or "keyring" | "file"
	CredentialFile     string
	OnInvalid          credential.OnInvalid
	ForceNewCredential bool

	TimeoutSeconds int

	// PromptSecret asks the user for the master password. nil means
	// non-interactive: a missing credential becomes an error.
	PromptSecret func() (string, error)

	// ConfirmRegenerate asks whether to replace an unloadable stored
	// credential; only consulted under the prompt policy. nil aborts.
	ConfirmRegenerate func(reason string) (bool, error)

	// Test seams.
	Runner  keepass.Runner
	Keyring secret.KeyringAPI
	Store   credential.Store
}

func (o ConnectionOptions) store() (credential.Store, *errors.XError) {
	if o.Store != nil {
		return o.Store, nil
	}
	if o.CredentialBackend == "file" {
		return credential.NewFileStore(o.CredentialFile), nil
	}
	if o.CredentialBackend != "" && o.CredentialBackend != "keyring" {
		return nil, errors.New(errors.CodeCfgInvalid, "invalid credential_backend", map[string]any{"value": o.CredentialBackend})
	}
	return credential.NewKeyringStore(o.Database, o.Keyring), nil
}

// ResolveConnection resolves the master password (explicit > config
// reference > stored credential > prompt), persists a freshly prompted
// secret, then probes the database. On failure nothing is installed
// anywhere; the caller decides what to do with the returned handle.
func ResolveConnection(ctx context.Context, opts ConnectionOptions) (*keepass.Connection, *errors.XError) {
	store, xe := opts.store()
	if xe != nil {
		return nil, xe
	}

	sec, fromPrompt, xe := resolveSecret(opts, store)
	if xe != nil {
		return nil, xe
	}

	conn, xe := keepass.Connect(ctx, keepass.ConnectOptions{
		Exe:                opts.Exe,
		Database:           opts.Database,
		KeyFile:            opts.KeyFile,
		Secret:             sec,
		CredentialLocation: store.Location(),
		Timeout:            time.Duration(opts.TimeoutSeconds) * time.Second,
		Runner:             opts.Runner,
	})
	if xe != nil {
		return nil, xe
	}

	// Persist only after the probe proved the secret unlocks the
	// database, so a typo never poisons the stored credential.
	if fromPrompt {
		if _, saveErr := store.Save(sec); saveErr != nil {
			conn.Close()
			return nil, saveErr
		}
	}
	return conn, nil
}

// resolveSecret walks the credential sources in order and reports
// whether the result came from an interactive prompt (and so should be
// persisted once validated).
func resolveSecret(opts ConnectionOptions, store credential.Store) (string, bool, *errors.XError) {
	if opts.ExplicitSecret != "" {
		return opts.ExplicitSecret, false, nil
	}

	if opts.PasswordRef != "" {
		val, xe := secret.Resolve(opts.PasswordRef, secret.Options{
			AllowPlaintext: opts.AllowPlaintext,
			Keyring:        opts.Keyring,
		})
		if xe != nil {
			return "", false, xe
		}
		return val, false, nil
	}

	if !opts.ForceNewCredential {
		rec, xe := store.Load()
		if xe == nil {
			return rec.Secret, false, nil
		}
		if xe.Code == errors.CodeCredInvalid {
			regen, xe2 := handleInvalidCredential(opts, xe)
			if xe2 != nil {
				return "", false, xe2
			}
			if !regen {
				return "", false, xe
			}
			// fall through to prompting
		} else if xe.Code != errors.CodeCredNotFound {
			return "", false, xe
		}
	}

	if opts.PromptSecret == nil {
		return "", false, errors.New(errors.CodeCredNotFound, "no stored credential and no way to prompt for one", map[string]any{"location": store.Location()})
	}
	val, err := opts.PromptSecret()
	if err != nil {
		return "", false, errors.Wrap(errors.CodeInternal, "failed to read password", nil, err)
	}
	if val == "" {
		return "", false, errors.New(errors.CodeCredInvalid, "empty password", nil)
	}
	return val, true, nil
}

func handleInvalidCredential(opts ConnectionOptions, cause *errors.XError) (bool, *errors.XError) {
	switch opts.OnInvalid {
	case credential.OnInvalidRegenerate:
		return true, nil
	case credential.OnInvalidAbort:
		return false, nil
	default: // prompt
		if opts.ConfirmRegenerate == nil {
			return false, nil
		}
		ok, err := opts.ConfirmRegenerate(cause.Message)
		if err != nil {
			return false, errors.Wrap(errors.CodeInternal, "failed to read confirmation", nil, err)
		}
		return ok, nil
	}
}
