package credential

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"

	"golang.org/x/crypto/argon2"

	"github.com/kpx-tools/kpx/internal/errors"
)

// File layout: magic, 16-byte random salt, 12-byte nonce, AES-GCM
// ciphertext of the JSON record. The key is derived from the owning
// user and host, so the file only decrypts for the same user on the
// same machine (best effort; there is no portable OS-bound sealing).
var fileMagic = []byte("KPXC1")

const (
	saltSize  = 16
	nonceSize = 12
)

// FileStore keeps the credential in an encrypted file, for hosts without
// a usable OS keyring (headless servers, containers).
type FileStore struct {
	path string

	// identity overrides for tests; empty values auto-detect.
	username string
	hostname string
}

// NewFileStore builds a file-backed store. An empty path uses the
// platform default under the kpx config directory.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFilePath("")
	}
	return &FileStore{path: path}
}

func (s *FileStore) identity() []byte {
	username := s.username
	if username == "" {
		if u, err := user.Current(); err == nil {
			username = u.Username
		}
	}
	hostname := s.hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	return []byte(username + "@" + hostname)
}

func (s *FileStore) deriveKey(salt []byte) []byte {
	return argon2.IDKey(s.identity(), salt, 1, 64*1024, 4, 32)
}

func (s *FileStore) Load() (Record, *errors.XError) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, errors.New(errors.CodeCredNotFound, "credential file not found", map[string]any{"path": s.path})
		}
		return Record{}, errors.Wrap(errors.CodeCredInvalid, "failed to read credential file", map[string]any{"path": s.path}, err)
	}

	if len(data) < len(fileMagic)+saltSize+nonceSize || !bytes.HasPrefix(data, fileMagic) {
		return Record{}, errors.New(errors.CodeCredInvalid, "credential file is corrupt", map[string]any{"path": s.path})
	}
	data = data[len(fileMagic):]
	salt, data := data[:saltSize], data[saltSize:]
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]

	key := s.deriveKey(salt)
	defer Wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "cipher init failed", nil, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "cipher init failed", nil, err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Record{}, errors.Wrap(errors.CodeCredInvalid, "credential file cannot be decrypted for this user and machine", map[string]any{"path": s.path}, err)
	}
	defer Wipe(plaintext)

	var rec Record
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return Record{}, errors.Wrap(errors.CodeCredInvalid, "credential file is corrupt", map[string]any{"path": s.path}, err)
	}
	if rec.Secret == "" {
		return Record{}, errors.New(errors.CodeCredInvalid, "stored credential has an empty secret", map[string]any{"path": s.path})
	}
	return rec, nil
}

func (s *FileStore) Save(secretValue string) (Record, *errors.XError) {
	rec := newRecord(secretValue)
	plaintext, err := json.Marshal(rec)
	if err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "failed to serialize credential", nil, err)
	}
	defer Wipe(plaintext)

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "failed to generate salt", nil, err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "failed to generate nonce", nil, err)
	}

	key := s.deriveKey(salt)
	defer Wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "cipher init failed", nil, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "cipher init failed", nil, err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(fileMagic)+saltSize+nonceSize+len(ciphertext))
	out = append(out, fileMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "failed to create credential directory", map[string]any{"path": s.path}, err)
	}
	if err := os.WriteFile(s.path, out, 0o600); err != nil {
		return Record{}, errors.Wrap(errors.CodeInternal, "failed to write credential file", map[string]any{"path": s.path}, err)
	}
	return rec, nil
}

func (s *FileStore) Delete() *errors.XError {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.CodeInternal, "failed to delete credential file", map[string]any{"path": s.path}, err)
	}
	return nil
}

func (s *FileStore) Location() string {
	return s.path
}
