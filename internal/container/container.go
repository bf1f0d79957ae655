package container

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/shortener"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	AccessLogSync   = "sync"
	AccessLogStream = "stream"

	// ConsumerGroupName is the Redis stream consumer group shared by consumer processes.
	ConsumerGroupName = "shortlink-analytics"
)

var (
	ErrUnknownDriver        = errors.New("unknown database driver")
	ErrMissingDatabaseURL   = errors.New("database-url is required for postgres")
	ErrUnknownAccessLogMode = errors.New("unknown access log mode")
	ErrStreamNeedsRedis     = errors.New("stream access log mode requires redis-addr")
	ErrRedisDisabled        = errors.New("redis is disabled")
)

type Options struct {
	Listen        string `default:":5000"                 help:"Address to listen on"                                 short:"l"`
	BaseURL       string `default:"http://127.0.0.1:5000" help:"Base URL prepended to short codes"                    short:"b"`
	DBDriver      string `default:"sqlite"                help:"Database driver: sqlite or postgres"                  short:"d"`
	DBPath        string `default:"shortlink.db"          help:"SQLite database file"`
	DatabaseURL   string `default:""                      help:"Postgres connection string"`
	RedisAddr     string `default:""                      help:"Redis server address, empty disables cache and events" short:"r"`
	CacheTTL      int    `default:"300"                   help:"Seconds a resolved link stays in the redis cache"`
	AccessLogMode string `default:"sync"                  help:"Access log mode: sync or stream"`
	TrustProxy    bool   `default:"false"                 help:"Take client address from X-Forwarded-For or X-Real-IP"`
	LogFormat     string `default:"console"               help:"Log format: json or console"`
}

// Validate reports option combinations the service cannot start with.
func (o *Options) Validate() error {
	switch o.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if o.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, o.DBDriver)
	}

	switch o.AccessLogMode {
	case AccessLogSync:
	case AccessLogStream:
		if !o.RedisEnabled() {
			return ErrStreamNeedsRedis
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAccessLogMode, o.AccessLogMode)
	}

	return nil
}

// RedisEnabled reports whether a redis address was configured.
func (o *Options) RedisEnabled() bool {
	return o.RedisAddr != ""
}

// Store is the database backing both links and the access log.
type Store interface {
	shortener.Repository
	shortener.AccessLog
	health.Checker
	Shutdown() error
}

// RedisClient lets the injector close the redis connection on shutdown.
type RedisClient struct {
	*redis.Client
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}
