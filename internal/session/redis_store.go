package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/config"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/metrics"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/utils"
)

// scanBatch is the COUNT hint used when listing sessions.
const scanBatch = 100

type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.RedisErrorsTotal.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.RedisErrorsTotal.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewRedisClient connects to Redis. cfg.URL may be a redis:// URL or a host:port address.
func NewRedisClient(ctx context.Context, cfg config.RedisSettings) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(cfg.URL, "://") {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.URL}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(ctx, constants.DBHealthCheckTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("Connected to redis")
	return client, nil
}

// RedisStore keeps sealed session records in Redis with a key TTL.
type RedisStore struct {
	client redis.UniversalClient
	sealer *utils.Sealer
	ttl    time.Duration
	prefix string
}

// NewRedisStore creates a RedisStore. Records are sealed with sealer so the
// tokens are never stored in plain text.
func NewRedisStore(client redis.UniversalClient, sealer *utils.Sealer, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		sealer: sealer,
		ttl:    ttl,
		prefix: constants.RedisSessionPrefix,
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Get loads and opens the session with id.
func (r *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	sealed, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	plain, err := r.sealer.Open(sealed)
	if err != nil {
		// A record sealed with a rotated secret is as good as missing.
		log.Warn().Err(err).Str(constants.SessionIDContextKey, id).Msg("Discarding unreadable session record")
		_ = r.client.Del(ctx, r.key(id)).Err()
		return nil, ErrSessionNotFound
	}

	var s models.Session
	if err := json.Unmarshal(plain, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// Put seals and stores s, restarting the key TTL.
func (r *RedisStore) Put(ctx context.Context, s *models.Session) error {
	plain, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	sealed, err := r.sealer.Seal(plain)
	if err != nil {
		return fmt.Errorf("failed to seal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.ID), sealed, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Delete removes the session with id.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns every stored session. Records that disappear or cannot be
// opened while scanning are skipped.
func (r *RedisStore) List(ctx context.Context) ([]*models.Session, error) {
	var out []*models.Session
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), r.prefix)
		s, err := r.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				log.Warn().Err(err).Str(constants.SessionIDContextKey, id).Msg("Skipping session while listing")
			}
			continue
		}
		out = append(out, s)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return out, nil
}

// HealthCheck pings Redis.
func (r *RedisStore) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
