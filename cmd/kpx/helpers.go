package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kpx-tools/kpx/internal/app"
	"github.com/kpx-tools/kpx/internal/credential"
	"github.com/kpx-tools/kpx/internal/errors"
	"github.com/kpx-tools/kpx/internal/keepass"
	"github.com/kpx-tools/kpx/internal/log"
	"github.com/kpx-tools/kpx/internal/output"
)

// parseOutputFormat parses and validates the output format string
func parseOutputFormat(s string) (output.Format, error) {
	f := output.Format(s)
	if !output.IsValid(f) {
		return "", errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": s})
	}
	return resolveAuto(f), nil
}

// resolveFormatForError resolves the format for error output
func resolveFormatForError(s string) output.Format {
	f := output.Format(s)
	if !output.IsValid(f) {
		f = output.FormatAuto
	}
	return resolveAuto(f)
}

// resolveAuto resolves "auto" format to appropriate format based on TTY
func resolveAuto(f output.Format) output.Format {
	if f != output.FormatAuto {
		return f
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return output.FormatTable
	}
	return output.FormatJSON
}

// normalizeErr normalizes any error to XError
func normalizeErr(err error) *errors.XError {
	if xe, ok := errors.As(err); ok {
		return xe
	}
	// Preserve original error message
	return errors.Wrap(errors.CodeInternal, err.Error(), nil, err)
}

// Interactive seams, swappable in tests.
var (
	stdinIsTerminal = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd()))
	}

	readPassword = func(prompt string) (string, error) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	readConfirm = func(prompt string) (bool, error) {
		fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return false, err
		}
		line = strings.ToLower(strings.TrimSpace(line))
		return line == "y" || line == "yes", nil
	}
)

// connectFlags are the per-command overrides of profile connection values
type connectFlags struct {
	database       string
	keyFile        string
	exe            string
	credentialFile string
	passwordStdin  bool
	newCredential  bool
}

// buildConnectionOptions merges the resolved profile with command flags
// (CLI > Config) and wires the interactive prompts when stdin is a TTY.
func buildConnectionOptions(flags *connectFlags) (app.ConnectionOptions, *errors.XError) {
	p := GlobalConfig.Resolved.Profile

	database := firstNonEmpty(flags.database, p.Database)
	if database == "" {
		return app.ConnectionOptions{}, errors.New(errors.CodeCfgInvalid, "database is required (flag --database or profile)", nil)
	}

	onInvalid, xe := credential.ParseOnInvalid(p.OnInvalidCredential)
	if xe != nil {
		return app.ConnectionOptions{}, xe
	}

	opts := app.ConnectionOptions{
		Database:           database,
		KeyFile:            firstNonEmpty(flags.keyFile, p.KeyFile),
		Exe:                firstNonEmpty(flags.exe, p.Exe),
		PasswordRef:        p.Password,
		AllowPlaintext:     p.AllowPlaintext,
		CredentialBackend:  p.CredentialBackend,
		CredentialFile:     firstNonEmpty(flags.credentialFile, p.CredentialFile),
		OnInvalid:          onInvalid,
		ForceNewCredential: flags.newCredential,
		TimeoutSeconds:     p.TimeoutSeconds,
		Runner:             keepass.ExecRunner{Log: log.New(os.Stderr, GlobalConfig.Verbose)},
	}

	if flags.passwordStdin {
		sec, xe := readSecretFromStdin()
		if xe != nil {
			return app.ConnectionOptions{}, xe
		}
		opts.ExplicitSecret = sec
		return opts, nil
	}

	if stdinIsTerminal() {
		opts.PromptSecret = func() (string, error) {
			return readPassword(fmt.Sprintf("Master password for %s: ", database))
		}
		opts.ConfirmRegenerate = func(reason string) (bool, error) {
			return readConfirm(fmt.Sprintf("Stored credential is unusable (%s); replace it?", reason))
		}
	}
	return opts, nil
}

func readSecretFromStdin() (string, *errors.XError) {
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, "failed to read password from stdin", nil, err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
