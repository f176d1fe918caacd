package credential

import (
	"encoding/json"
	"strings"

	"github.com/kpx-tools/kpx/internal/errors"
	"github.com/kpx-tools/kpx/internal/secret"
)

const keyringAccountPrefix = "db/"

// KeyringStore keeps the credential record as JSON in the OS keyring,
// one account per database path. This is the default backend; the OS
// binds the value to the invoking user.
type KeyringStore struct {
	account string
	kr      secret.KeyringAPI
}

// NewKeyringStore builds a keyring-backed store for a database path.
// kr is injectable for tests; nil uses the OS keyring.
func NewKeyringStore(database string, kr secret.KeyringAPI) *KeyringStore {
	if kr == nil {
		kr = secret.DefaultKeyring()
	}
	return &KeyringStore{account: keyringAccountPrefix + database, kr: kr}
}

func (s *KeyringStore) Load() (Record, *errors.XError) {
	val, err := s.kr.Get(s.account)
	if err != nil {
		return Record{}, errors.Wrap(errors.CodeCredNotFound, "no stored credential in keyring", map[string]any{"account": s.account}, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return Record{}, errors.Wrap(errors.CodeCredInvalid, "stored credential is not valid", map[string]any{"account": s.account}, err)
	}
	if rec.Secret == "" {
		return Record{}, errors.New(errors.CodeCredInvalid, "stored credential has an empty secret", map[string]any{"account": s.account})
	}
	return rec, nil
}

func (s *KeyringStore) Save(secretValue string) (Record, *errors.XError) {
	rec := newRecord(secretValue)
	b, err := json.Marshal(rec)
	if err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "failed to serialize credential", nil, err)
	}
	if err := s.kr.Set(s.account, string(b)); err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "failed to write credential to keyring", map[string]any{"account": s.account}, err)
	}
	return rec, nil
}

func (s *KeyringStore) Delete() *errors.XError {
	if err := s.kr.Delete(s.account); err != nil {
		// Deleting a missing credential is not an error.
		if strings.Contains(err.Error(), "not found") {
			return nil
		}
		return errors.Wrap(errors.CodeInternal, "failed to delete credential from keyring", map[string]any{"account": s.account}, err)
	}
	return nil
}

func (s *KeyringStore) Location() string {
	return "os-keyring:" + s.account
}
