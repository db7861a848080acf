package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Key prefix for all flash data
const keyPrefix = "feedbackboard"

// queueKey returns the Redis key holding the pending messages of a client
func queueKey(clientID string) string {
	return fmt.Sprintf("%s:flash:%s", keyPrefix, clientID)
}

// RedisConfig holds Redis connection and behavior settings
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL bounds how long undelivered messages are kept
	TTL time.Duration

	// Secure marks the client id cookie as HTTPS-only
	Secure bool
}

// DefaultRedisConfig returns sensible defaults for the Redis flash store
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		TTL:          5 * time.Minute,
	}
}

// RedisStore keeps pending messages in a Redis list per client. The client is
// identified by a random id in the flash_id cookie.
type RedisStore struct {
	client     *redis.Client
	cfg        RedisConfig
	cookieName string
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisStoreWithClient(client, cfg), nil
}

// NewRedisStoreWithClient creates a RedisStore with an existing client (for testing)
func NewRedisStoreWithClient(client *redis.Client, cfg RedisConfig) *RedisStore {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultRedisConfig().TTL
	}
	return &RedisStore{
		client:     client,
		cfg:        cfg,
		cookieName: "flash_id",
	}
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) Load(r *http.Request) ([]Message, error) {
	clientID := s.clientID(r)
	if clientID == "" {
		return nil, nil
	}

	raw, err := s.client.LRange(r.Context(), queueKey(clientID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load flash messages: %w", err)
	}

	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("parse flash message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, msgs []Message) error {
	clientID := s.clientID(r)
	if clientID == "" {
		if len(msgs) == 0 {
			return nil
		}
		clientID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    clientID,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	key := queueKey(clientID)
	_, err := s.client.TxPipelined(r.Context(), func(pipe redis.Pipeliner) error {
		pipe.Del(r.Context(), key)
		if len(values) > 0 {
			pipe.RPush(r.Context(), key, values...)
			pipe.Expire(r.Context(), key, s.cfg.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save flash messages: %w", err)
	}
	return nil
}

// clientID returns the id from the request cookie, ignoring values that are not UUIDs
func (s *RedisStore) clientID(r *http.Request) string {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}
