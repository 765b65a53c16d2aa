package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Source implements ports.DefinitionSource over a Redis hash. Every Save and
// Delete is announced on a pub/sub channel so Watch can follow changes.
type Source struct {
	client *backend.Client
	prefix string
}

type Option func(*Source)

// WithPrefix sets the key prefix. Defaults to "arbor:".
func WithPrefix(prefix string) Option {
	return func(s *Source) {
		s.prefix = prefix
	}
}

// New creates a Redis definition source with options.
func New(address, password string, db int, opts ...Option) *Source {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis definition source from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Source {
	source := &Source{
		client: client,
		prefix: "arbor:",
	}
	for _, opt := range opts {
		opt(source)
	}
	return source
}

func (s *Source) hashKey() string {
	return s.prefix + "definitions"
}

func (s *Source) channel() string {
	return s.prefix + "changes"
}

// Save stores data under name, replacing any previous definition.
func (s *Source) Save(ctx context.Context, name string, data []byte) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.hashKey(), name, data)
	pipe.Publish(ctx, s.channel(), name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes the definition stored under name.
func (s *Source) Delete(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, s.hashKey(), name)
	pipe.Publish(ctx, s.channel(), name)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the stored definition names, sorted.
func (s *Source) List(ctx context.Context) ([]string, error) {
	names, err := s.client.HKeys(ctx, s.hashKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the definition stored under name.
func (s *Source) Load(ctx context.Context, name string) ([]byte, error) {
	val, err := s.client.HGet(ctx, s.hashKey(), name).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("definition %s: %w", name, domain.ErrDefinitionNotFound)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Watch implements ports.Watchable. It emits the name of every saved or
// deleted definition until ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	// Wait for the subscription to be confirmed so no change is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel(), err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case ch <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// Close closes the redis client.
func (s *Source) Close() error {
	return s.client.Close()
}
