package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig represents the configuration for MongoDB connection
type MongoConfig struct {
	URI                    string        `mapstructure:"uri" yaml:"uri"`
	Database               string        `mapstructure:"database" yaml:"database"`
	Collection             string        `mapstructure:"collection" yaml:"collection"`
	MaxPoolSize            uint64        `mapstructure:"max_pool_size" yaml:"max_pool_size"`
	MinPoolSize            uint64        `mapstructure:"min_pool_size" yaml:"min_pool_size"`
	MaxConnecting          uint64        `mapstructure:"max_connecting" yaml:"max_connecting"`
	ConnectTimeout         time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	HeartbeatInterval      time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout" yaml:"server_selection_timeout"`
	TLSEnabled             bool          `mapstructure:"tls_enabled" yaml:"tls_enabled"`
	TLSCAFile              string        `mapstructure:"tls_ca_file" yaml:"tls_ca_file"`
	TLSCertFile            string        `mapstructure:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile             string        `mapstructure:"tls_key_file" yaml:"tls_key_file"`
}

// ClientOptions translates cfg into driver options. Zero values keep the
// driver defaults.
func (cfg MongoConfig) ClientOptions() (*options.ClientOptions, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(cfg.MinPoolSize)
	}
	if cfg.MaxConnecting > 0 {
		clientOptions.SetMaxConnecting(cfg.MaxConnecting)
	}
	if cfg.ConnectTimeout > 0 {
		clientOptions.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.HeartbeatInterval > 0 {
		clientOptions.SetHeartbeatInterval(cfg.HeartbeatInterval)
	}
	if cfg.ServerSelectionTimeout > 0 {
		clientOptions.SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	}

	if cfg.TLSEnabled {
		tlsConfig, err := createTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		clientOptions.SetTLSConfig(tlsConfig)
	}
	return clientOptions, nil
}

// NewMongoClient connects and pings MongoDB.
func NewMongoClient(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	clientOptions, err := cfg.ClientOptions()
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

func createTLSConfig(cfg MongoConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.TLSCAFile != "" {
		caCert, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to append CA certificate")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate and key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
