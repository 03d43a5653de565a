// Package bootstrap wires process-level dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/territory-leads/internal/config"
	"github.com/wolfman30/territory-leads/internal/leads"
	"github.com/wolfman30/territory-leads/internal/ratelimit"
	"github.com/wolfman30/territory-leads/internal/users"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when the rate
// limiter is not Redis-backed. When verify is true, a ping is issued and
// failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || cfg.RateLimitBackend != appconfig.RateLimitBackendRedis || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter picks the counter store. Redis is used only when
// configured and reachable; otherwise counting stays in process.
func BuildRateLimiter(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) *ratelimit.Limiter {
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient != nil {
		logger.Info("rate limiter using redis", "addr", cfg.RedisAddr)
		return ratelimit.New(ratelimit.NewRedisStore(redisClient), logger)
	}
	if cfg != nil && cfg.RateLimitBackend == appconfig.RateLimitBackendRedis {
		logger.Warn("redis rate limit backend requested but unavailable; using memory")
	}
	var opts []ratelimit.MemoryOption
	if cfg != nil && cfg.RateLimitMaxKeys > 0 {
		opts = append(opts, ratelimit.WithMaxKeys(cfg.RateLimitMaxKeys))
	}
	return ratelimit.New(ratelimit.NewMemoryStore(opts...), logger)
}

// ConnectPostgresPool opens the pgx pool used by the repositories. An empty
// URL means in-memory mode and returns nil.
func ConnectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) (*pgxpool.Pool, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	logger.Info("connected to postgres")
	return pool, nil
}

// OpenAuditDB opens the database/sql handle used by the compliance audit
// trail. An empty URL returns nil, which disables auditing.
func OpenAuditDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open audit db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: ping audit db: %w", err)
	}
	return db, nil
}

// Stores groups the repositories the API serves from.
type Stores struct {
	Users users.Repository
	Leads leads.Repository
}

// BuildStores returns Postgres repositories when a pool is available and
// in-memory ones otherwise.
func BuildStores(pool *pgxpool.Pool, logger *logging.Logger) Stores {
	if pool == nil {
		if logger != nil {
			logger.Warn("DATABASE_URL not set; using in-memory stores")
		}
		return Stores{
			Users: users.NewInMemoryRepository(),
			Leads: leads.NewInMemoryRepository(),
		}
	}
	return Stores{
		Users: users.NewPostgresRepository(pool),
		Leads: leads.NewPostgresRepository(pool),
	}
}
