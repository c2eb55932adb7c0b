// Package secrets keeps the provider API key in the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/amishk599/hiringintel/internal/model"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "hiringintel"

	// APIKeyAccount is the keychain account holding the provider key.
	APIKeyAccount = "openai"

	// APIKeyEnv is checked when neither the config nor the keychain has a key.
	APIKeyEnv = "OPENAI_API_KEY"
)

func GetAPIKey() (string, error) {
	key, err := keyring.Get(KeyringService, APIKeyAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", model.ErrMissingCredential
	}
	if err != nil {
		return "", fmt.Errorf("reading keychain: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", model.ErrMissingCredential
	}
	return key, nil
}

func SetAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, APIKeyAccount, strings.TrimSpace(key))
}

func DeleteAPIKey() error {
	err := keyring.Delete(KeyringService, APIKeyAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// ResolveAPIKey picks the key from config first, then the keychain, then
// OPENAI_API_KEY. An empty result is not an error here; the search provider
// refuses to run without one.
func ResolveAPIKey(configured string) string {
	if k := strings.TrimSpace(configured); k != "" {
		return k
	}
	if k, err := GetAPIKey(); err == nil {
		return k
	}
	return strings.TrimSpace(os.Getenv(APIKeyEnv))
}
