//go:build !windows

package secret

import "github.com/zalando/go-keyring"

func (o *osKeyring) Get(account string) (string, error) {
	return keyring.Get(serviceName, account)
}

func (o *osKeyring) Set(account, value string) error {
	return keyring.Set(serviceName, account, value)
}

func (o *osKeyring) Delete(account string) error {
	return keyring.Delete(serviceName, account)
}
