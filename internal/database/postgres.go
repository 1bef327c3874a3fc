package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host        string        `mapstructure:"host" yaml:"host"`
	Port        int           `mapstructure:"port" yaml:"port"`
	Database    string        `mapstructure:"database" yaml:"database"`
	User        string        `mapstructure:"user" yaml:"user"`
	Password    string        `mapstructure:"password" yaml:"password"`
	SSLMode     string        `mapstructure:"sslmode" yaml:"sslmode"`
	MaxPoolSize int32         `mapstructure:"max_pool_size" yaml:"max_pool_size"`
	ConnTimeout time.Duration `mapstructure:"conn_timeout" yaml:"conn_timeout"`
}

// ConnString renders the keyword/value connection string understood by pgx.
func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		quoteValue(c.Password),
		c.Database,
		c.SSLMode,
	)
}

func quoteValue(v string) string {
	if v == "" {
		return "''"
	}
	return "'" + escapeValue(v) + "'"
}

func escapeValue(v string) string {
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		if v[i] == '\'' || v[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, v[i])
	}
	return string(out)
}

// Connect establishes a connection pool and verifies it with a ping.
func Connect(ctx context.Context, config PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error parsing connection string: %w", err)
	}

	if config.MaxPoolSize > 0 {
		poolConfig.MaxConns = config.MaxPoolSize
	}
	poolConfig.ConnConfig.ConnectTimeout = config.ConnTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// Disconnect safely closes the PostgreSQL connection pool
func Disconnect(pool *pgxpool.Pool) error {
	if pool != nil {
		pool.Close()
	}
	return nil
}
