package credential

import (
	"time"

	"github.com/google/uuid"

	"github.com/kpx-tools/kpx/internal/errors"
)

// Record is the stored credential. The id tracks rotations across
// regenerations; the secret is the database master password.
type Record struct {
	ID        string    `json:"id"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists one credential record per database. Load returns
// KPX_CRED_NOT_FOUND when nothing is stored and KPX_CRED_INVALID when the
// stored record cannot be deserialized.
type Store interface {
	Load() (Record, *errors.XError)
	Save(secret string) (Record, *errors.XError)
	Delete() *errors.XError

	// Location is a human-readable description of where the credential
	// lives, for diagnostics and the `credential path` command.
	Location() string
}

// OnInvalid selects what happens when a stored credential fails to load:
// ask the user, silently regenerate, or abort. spec'd per profile so the
// tool stays usable non-interactively.
type OnInvalid string

const (
	OnInvalidPrompt     OnInvalid = "prompt"
	OnInvalidRegenerate OnInvalid = "regenerate"
	OnInvalidAbort      OnInvalid = "abort"
)

// ParseOnInvalid parses the on_invalid_credential option; empty defaults
// to prompt.
func ParseOnInvalid(s string) (OnInvalid, *errors.XError) {
	switch OnInvalid(s) {
	case "":
		return OnInvalidPrompt, nil
	case OnInvalidPrompt, OnInvalidRegenerate, OnInvalidAbort:
		return OnInvalid(s), nil
	default:
		return "", errors.New(errors.CodeCfgInvalid, "invalid on_invalid_credential option", map[string]any{"value": s})
	}
}

func newRecord(secret string) Record {
	return Record{ID: uuid.NewString(), Secret: secret, CreatedAt: time.Now().UTC()}
}

// Wipe zeroes a secret buffer. Best effort only; Go gives no guarantee
// the GC has not already copied the backing array.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
