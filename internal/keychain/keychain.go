package keychain

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	serviceName  = "tgbot"
	tokenAccount = "bot-token"
)

// ErrNotFound is returned when the keychain holds no entry for an account.
var ErrNotFound = keyring.ErrNotFound

// Get retrieves a secret from the system keychain.
func Get(account string) (string, error) {
	return keyring.Get(serviceName, account)
}

// Set stores a secret in the system keychain.
func Set(account, value string) error {
	return keyring.Set(serviceName, account, value)
}

// Token returns the stored bot token, or "" when none is stored.
func Token() (string, error) {
	tok, err := Get(tokenAccount)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return tok, err
}

func SetToken(token string) error {
	return Set(tokenAccount, token)
}

// DeleteToken removes the stored bot token. Deleting a missing token is not
// an error.
func DeleteToken() error {
	err := keyring.Delete(serviceName, tokenAccount)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
