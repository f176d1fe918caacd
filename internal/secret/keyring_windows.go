//go:build windows

package secret

import (
	"strings"

	"github.com/zalando/go-keyring"
)

func (o *osKeyring) Get(account string) (string, error) {
	val, err := keyring.Get(serviceName, account)
	if err != nil {
		return "", err
	}
	// Windows cmdkey interleaves null bytes between characters (UTF-16 legacy).
	val = strings.ReplaceAll(val, "\x00", "")
	return val, nil
}

func (o *osKeyring) Set(account, value string) error {
	return keyring.Set(serviceName, account, value)
}

func (o *osKeyring) Delete(account string) error {
	return keyring.Delete(serviceName, account)
}
