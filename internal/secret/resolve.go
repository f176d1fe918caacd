package secret

import (
	"strings"

	"github.com/kpx-tools/kpx/internal/errors"
)

const keyringPrefix = "keyring:"

// Options controls secret reference resolution.
type Options struct {
	AllowPlaintext bool       // allow literal values (default false)
	Keyring        KeyringAPI // injectable keyring (nil uses the OS keyring)
}

// Resolve resolves a secret value:
//  1. keyring:<account> reads from the OS keyring
//  2. otherwise a literal value is returned only when plaintext is allowed
//  3. otherwise it is an error
//
// Interactive prompting is deliberately left to the cmd layer.
func Resolve(raw string, opts Options) (string, *errors.XError) {
	if strings.HasPrefix(raw, keyringPrefix) {
		account := strings.TrimPrefix(raw, keyringPrefix)
		if account == "" {
			return "", errors.New(errors.CodeCfgInvalid, "empty keyring reference", nil)
		}
		kr := opts.Keyring
		if kr == nil {
			kr = defaultKeyring()
		}
		val, err := kr.Get(account)
		if err != nil {
			return "", errors.Wrap(errors.CodeCredNotFound, "failed to read secret from keyring", map[string]any{"account": account}, err)
		}
		return val, nil
	}
	if opts.AllowPlaintext {
		return raw, nil
	}
	return "", errors.New(errors.CodeCfgInvalid, "plaintext secret not allowed; use a keyring: reference or enable allow_plaintext", nil)
}

// IsKeyringRef reports whether the value is a keyring reference.
func IsKeyringRef(s string) bool {
	return strings.HasPrefix(s, keyringPrefix)
}
