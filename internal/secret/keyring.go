package secret

// KeyringAPI is a minimal abstraction over the OS keyring for tests and
// platform quirks. Accounts are scoped under the fixed kpx service name.
type KeyringAPI interface {
	Get(account string) (string, error)
	Set(account, value string) error
	Delete(account string) error
}

const serviceName = "kpx"

// Default keyring backed by zalando/go-keyring; Get/Set/Delete live in
// keyring_default.go and keyring_windows.go (per-platform builds).
func defaultKeyring() KeyringAPI {
	return &osKeyring{}
}

// DefaultKeyring exposes the OS keyring for packages that persist their
// own records, e.g. the credential store.
func DefaultKeyring() KeyringAPI {
	return defaultKeyring()
}

type osKeyring struct{}
