package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSource(t *testing.T, opts ...redis.Option) (*redis.Source, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	source := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = source.Close() })
	return source, mr
}

func TestRedisSource_Contract(t *testing.T) {
	source, _ := newSource(t)
	ctx := context.Background()

	seeded := map[string]string{
		"patrol": `root { sequence { action [Walk] wait [100] } }`,
		"flee":   `{"type":"root","child":{"type":"action","call":"Run"}}`,
	}
	for name, def := range seeded {
		require.NoError(t, source.Save(ctx, name, []byte(def)))
	}

	ports.RunDefinitionSourceContract(t, source, seeded)
}

func TestRedisSource_DeleteAndPrefix(t *testing.T) {
	source, mr := newSource(t, redis.WithPrefix("game:"))
	ctx := context.Background()

	require.NoError(t, source.Save(ctx, "a", []byte("root { action [a] }")))
	assert.True(t, mr.Exists("game:definitions"))
	assert.Equal(t, "root { action [a] }", mr.HGet("game:definitions", "a"))

	require.NoError(t, source.Delete(ctx, "a"))
	_, err := source.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)

	names, err := source.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisSource_Watch(t *testing.T) {
	source, _ := newSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := source.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, source.Save(context.Background(), "patrol", []byte("root { action [Walk] }")))

	select {
	case name := <-changes:
		assert.Equal(t, "patrol", name)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
