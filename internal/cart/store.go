package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ivdgroup/medlab-backend/pkg/redis"
)

// cartTTL is refreshed on every write; idle carts expire on their own.
const cartTTL = 30 * 24 * time.Hour

// Store persists carts keyed by cart token.
type Store interface {
	Load(ctx context.Context, token string) (*Cart, error)
	Save(ctx context.Context, token string, cart *Cart) error
	Delete(ctx context.Context, token string) error
}

// RedisStore keeps each cart as one JSON document.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wires the store to the shared Redis client.
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisStore{client: client}, nil
}

// Load returns the cart for the token; a missing key is an empty cart.
func (s *RedisStore) Load(ctx context.Context, token string) (*Cart, error) {
	raw, err := s.client.Get(ctx, redis.CartKey(token))
	if errors.Is(err, redis.Nil) {
		return &Cart{Items: []Item{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []Item{}
	}
	return &cart, nil
}

// Save writes the cart document and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, token string, cart *Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, redis.CartKey(token), string(raw), cartTTL); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Delete drops the cart document.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redis.CartKey(token)); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
