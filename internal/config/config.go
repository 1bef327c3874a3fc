package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mesikahq/spitalverse/internal/database"
)

const EnvPrefix = "SPITALVERSE"

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Server        ServerConfig            `mapstructure:"server" yaml:"server"`
	Storage       StorageConfig           `mapstructure:"storage" yaml:"storage"`
	Postgres      database.PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Mongo         database.MongoConfig    `mapstructure:"mongo" yaml:"mongo"`
	Elasticsearch ElasticsearchConfig     `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	LLM           LLMConfig               `mapstructure:"llm" yaml:"llm"`
	RateLimit     RateLimitConfig         `mapstructure:"ratelimit" yaml:"ratelimit"`
	CORS          CORSConfig              `mapstructure:"cors" yaml:"cors"`
	Labs          LabsConfig              `mapstructure:"labs" yaml:"labs"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host" yaml:"host"`
	Port           int           `mapstructure:"port" yaml:"port"`
	Mode           string        `mapstructure:"mode" yaml:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	TLS            struct {
		Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
		CertFile string `mapstructure:"cert_file" yaml:"cert_file"`
		KeyFile  string `mapstructure:"key_file" yaml:"key_file"`
	} `mapstructure:"tls" yaml:"tls"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	Driver               string `mapstructure:"driver" yaml:"driver"`
	Dir                  string `mapstructure:"dir" yaml:"dir"`
	Slot                 string `mapstructure:"slot" yaml:"slot"`
	Table                string `mapstructure:"table" yaml:"table"`
	Encrypt              bool   `mapstructure:"encrypt" yaml:"encrypt"`
	EncryptionKey        string `mapstructure:"encryption_key" yaml:"encryption_key"`
	EncryptionPassphrase string `mapstructure:"encryption_passphrase" yaml:"encryption_passphrase"`
	SeedDemo             bool   `mapstructure:"seed_demo" yaml:"seed_demo"`
}

type ElasticsearchConfig struct {
	Addresses   []string `mapstructure:"addresses" yaml:"addresses"`
	Username    string   `mapstructure:"username" yaml:"username"`
	Password    string   `mapstructure:"password" yaml:"password"`
	IndexPrefix string   `mapstructure:"index_prefix" yaml:"index_prefix"`
}

func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0
}

type LLMConfig struct {
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Referer string        `mapstructure:"referer" yaml:"referer"`
	Title   string        `mapstructure:"title" yaml:"title"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" yaml:"rps"`
	Burst int     `mapstructure:"burst" yaml:"burst"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins" yaml:"origins"`
}

type LabsConfig struct {
	CatalogFile string `mapstructure:"catalog_file" yaml:"catalog_file"`
}

var configPaths = []string{
	"./configs",
	"../configs",
	"/etc/spitalverse",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 45*time.Second)
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.cert_file", "")
	v.SetDefault("server.tls.key_file", "")

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.slot", "spitalverse-storage")
	v.SetDefault("storage.table", "store_slots")
	v.SetDefault("storage.encrypt", false)
	v.SetDefault("storage.encryption_key", "")
	v.SetDefault("storage.encryption_passphrase", "")
	v.SetDefault("storage.seed_demo", false)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.database", "spitalverse")
	v.SetDefault("postgres.user", "spitalverse")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_pool_size", 10)
	v.SetDefault("postgres.conn_timeout", 5*time.Second)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "spitalverse")
	v.SetDefault("mongo.collection", "store_slots")
	v.SetDefault("mongo.max_pool_size", 10)
	v.SetDefault("mongo.connect_timeout", 5*time.Second)
	v.SetDefault("mongo.server_selection_timeout", 5*time.Second)
	v.SetDefault("mongo.tls_enabled", false)

	v.SetDefault("elasticsearch.addresses", []string{})
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.index_prefix", "spitalverse_audit_")

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "openai/gpt-4o-mini")
	v.SetDefault("llm.referer", "https://spitalverse.app")
	v.SetDefault("llm.title", "Spitalverse Health App")
	v.SetDefault("llm.timeout", time.Duration(0))

	v.SetDefault("ratelimit.rps", 5.0)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("cors.origins", []string{"http://localhost:3000"})

	v.SetDefault("labs.catalog_file", "")
}

// Load reads configuration from file, then the environment. When path is
// empty config.yaml is searched in the usual locations and may be absent.
// Environment variables use the SPITALVERSE_ prefix with "." replaced by
// "_"; OPENROUTER_API_KEY also sets llm.api_key.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENROUTER_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range configPaths {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("storage.driver must be one of file, postgres, mongo; got %q", c.Storage.Driver)
	}
	if c.Storage.Slot == "" {
		return fmt.Errorf("storage.slot is required")
	}
	if c.Storage.Encrypt && c.Storage.EncryptionKey == "" && c.Storage.EncryptionPassphrase == "" {
		return fmt.Errorf("storage.encrypt requires storage.encryption_key or storage.encryption_passphrase")
	}
	if c.Server.TLS.Enabled && (c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "") {
		return fmt.Errorf("server.tls requires cert_file and key_file")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("ratelimit.rps and ratelimit.burst must be positive")
	}
	return nil
}
