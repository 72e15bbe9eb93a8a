package metadata

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRedis_UnreachableFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := OpenRedis(ctx, "127.0.0.1:1", "", 0)
	require.ErrorContains(t, err, "metadata.OpenRedis")
}

func TestRedis_ErrorsAreWrapped(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	r := NewRedisRepository(client, "")
	require.NoError(t, r.Close())
	ctx := context.Background()

	_, err := r.Get(ctx, "access_token")
	require.ErrorContains(t, err, "failed to get redis[access_token]")

	err = r.Set(ctx, "access_token", []byte("A"))
	require.ErrorContains(t, err, "failed to set redis[access_token]")

	err = r.Delete(ctx, "access_token")
	require.ErrorContains(t, err, "failed to delete redis[access_token]")

	err = r.SetMany(ctx, map[string][]byte{"a": []byte("1")})
	require.ErrorContains(t, err, "failed to set redis batch")

	err = r.DeleteMany(ctx, "a")
	require.ErrorContains(t, err, "failed to delete redis batch")

	require.NoError(t, r.DeleteMany(ctx))
}

func TestNewRedisRepository_DefaultPrefix(t *testing.T) {
	r := NewRedisRepository(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "")
	t.Cleanup(func() { _ = r.Close() })

	assert.Equal(t, DefaultRedisPrefix, r.prefix)
}
