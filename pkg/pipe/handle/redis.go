package handle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
	"github.com/vnykmshr/gopipe/pkg/common/validation"
	"github.com/vnykmshr/gopipe/pkg/pipe"
)

// RedisConfig holds configuration for RedisHandle.
type RedisConfig struct {
	// Client is the Redis client to append through.
	Client redis.UniversalClient

	// Key is the Redis key holding the byte stream.
	Key string

	// OpTimeout bounds each APPEND command. Default: 5 seconds.
	OpTimeout time.Duration
}

// redisOp is one APPEND in flight.
type redisOp struct {
	cancel   context.CancelFunc
	complete pipe.CompletionFunc
}

// RedisHandle appends the byte stream to a Redis key, one APPEND command
// per write. Every write completes asynchronously; cancellation aborts the
// command through its context.
type RedisHandle struct {
	config RedisConfig

	mu  sync.Mutex
	cur *redisOp
}

// NewRedis creates a handle appending to the configured key.
func NewRedis(config RedisConfig) (*RedisHandle, error) {
	if config.Client == nil {
		return nil, validation.ValidateNotNil("handle", "client", nil)
	}
	if err := validation.ValidateNotEmpty("handle", "key", config.Key); err != nil {
		return nil, err
	}
	if config.OpTimeout <= 0 {
		config.OpTimeout = 5 * time.Second
	}
	return &RedisHandle{config: config}, nil
}

// WriteAsync implements pipe.Handle.
func (h *RedisHandle) WriteAsync(p []byte, complete pipe.CompletionFunc) (int, bool, error) {
	h.mu.Lock()
	if h.cur != nil {
		h.mu.Unlock()
		return 0, false, gperrors.ErrWriteInProgress
	}

	data := make([]byte, len(p))
	copy(data, p)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.OpTimeout)
	op := &redisOp{cancel: cancel, complete: complete}
	h.cur = op
	h.mu.Unlock()

	go h.append(ctx, op, data)
	return 0, true, nil
}

// CancelWrite implements pipe.Handle.
func (h *RedisHandle) CancelWrite() error {
	h.mu.Lock()
	op := h.cur
	h.mu.Unlock()
	if op == nil {
		return gperrors.ErrOperationNotFound
	}
	op.cancel()
	return nil
}

func (h *RedisHandle) append(ctx context.Context, op *redisOp, data []byte) {
	defer op.cancel()

	err := h.config.Client.Append(ctx, h.config.Key, string(data)).Err()

	h.mu.Lock()
	h.cur = nil
	h.mu.Unlock()

	switch {
	case err == nil:
		op.complete(len(data), nil)
	case errors.Is(err, context.Canceled):
		op.complete(0, gperrors.ErrOperationCanceled)
	case errors.Is(err, redis.ErrClosed):
		op.complete(0, gperrors.ErrPipeClosing)
	default:
		op.complete(0, fmt.Errorf("redis append: %w", err))
	}
}
