package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the service name entries are filed under.
const DefaultKeyringService = "onboard-cli"

// KeyringRepository stores values in the OS keychain / credential manager.
// Entries are namespaced by account so several backends can share a machine.
type KeyringRepository struct {
	service string
	account string
}

// NewKeyringRepository returns a repository for the given account (usually
// the API base URL). An empty service selects DefaultKeyringService.
func NewKeyringRepository(service, account string) *KeyringRepository {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringRepository{service: service, account: account}
}

func (r *KeyringRepository) user(key string) string {
	return fmt.Sprintf("%s|%s", r.account, key)
}

func (r *KeyringRepository) Get(_ context.Context, key string) ([]byte, error) {
	v, err := keyring.Get(r.service, r.user(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get keyring[%s]: %w", key, err)
	}
	return []byte(v), nil
}

func (r *KeyringRepository) Set(_ context.Context, key string, value []byte) error {
	if err := keyring.Set(r.service, r.user(key), string(value)); err != nil {
		return fmt.Errorf("failed to set keyring[%s]: %w", key, err)
	}
	return nil
}

func (r *KeyringRepository) Delete(_ context.Context, key string) error {
	err := keyring.Delete(r.service, r.user(key))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring[%s]: %w", key, err)
	}
	return nil
}
