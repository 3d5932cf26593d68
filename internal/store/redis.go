package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"revolution/internal/domain"
)

const roomKeyPrefix = "revolution:room:"

// Redis stores each room as one JSON document. Loaded documents are
// shape-validated before use.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client. A zero ttl keeps rooms until deleted.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Load(ctx context.Context, code string) (*domain.GameState, error) {
	raw, err := r.client.Get(ctx, roomKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", code, err)
	}

	var state domain.GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := validateShape(&state, code); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *Redis) Save(ctx context.Context, state *domain.GameState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", state.Code, err)
	}
	if err := r.client.Set(ctx, roomKeyPrefix+state.Code, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save room %s: %w", state.Code, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, code string) error {
	if err := r.client.Del(ctx, roomKeyPrefix+code).Err(); err != nil {
		return fmt.Errorf("delete room %s: %w", code, err)
	}
	return nil
}
