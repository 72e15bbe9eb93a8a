package metadata

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/dmitrijs2005/onboarding/internal/cryptox"
)

// saltKey stores the random salt used to derive the sealing key. It is kept
// in the inner repository in clear.
const saltKey = "sealed_salt"

// SealedRepository encrypts every value before handing it to the inner
// repository. Keys stay in clear.
type SealedRepository struct {
	inner Repository
	key   []byte
}

// NewSealedRepository derives the sealing key from passphrase and a per-store
// salt, creating and saving the salt on first use.
func NewSealedRepository(ctx context.Context, inner Repository, passphrase []byte) (*SealedRepository, error) {
	salt, err := inner.Get(ctx, saltKey)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		salt = make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("salt: %w", err)
		}
		if err := inner.Set(ctx, saltKey, salt); err != nil {
			return nil, err
		}
	}
	return &SealedRepository{inner: inner, key: cryptox.DeriveKey(passphrase, salt)}, nil
}

func (r *SealedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := r.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	plain, err := cryptox.Open(sealed, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed[%s]: %w", key, err)
	}
	return plain, nil
}

func (r *SealedRepository) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(value, r.key)
	if err != nil {
		return fmt.Errorf("failed to seal[%s]: %w", key, err)
	}
	return r.inner.Set(ctx, key, sealed)
}

func (r *SealedRepository) Delete(ctx context.Context, key string) error {
	return r.inner.Delete(ctx, key)
}

func (r *SealedRepository) SetMany(ctx context.Context, values map[string][]byte) error {
	sealed := make(map[string][]byte, len(values))
	for k, v := range values {
		s, err := cryptox.Seal(v, r.key)
		if err != nil {
			return fmt.Errorf("failed to seal[%s]: %w", k, err)
		}
		sealed[k] = s
	}
	return SetAll(ctx, r.inner, sealed)
}

func (r *SealedRepository) DeleteMany(ctx context.Context, keys ...string) error {
	return DeleteAll(ctx, r.inner, keys...)
}
