// Package bootstrap builds the runtime dependencies shared by the server and
// the admin tool from a loaded configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/mesikahq/spitalverse/internal/audit"
	"github.com/mesikahq/spitalverse/internal/config"
	"github.com/mesikahq/spitalverse/internal/database"
	"github.com/mesikahq/spitalverse/internal/encryption"
	"github.com/mesikahq/spitalverse/internal/labs"
	"github.com/mesikahq/spitalverse/internal/llm"
	"github.com/mesikahq/spitalverse/internal/store"
)

// OpenSlot connects the configured storage backend. The returned close func
// releases the connection and is never nil.
func OpenSlot(ctx context.Context, cfg *config.Config) (store.Slot, func(), error) {
	var (
		slot    store.Slot
		closeFn = func() {}
	)

	switch cfg.Storage.Driver {
	case config.DriverFile:
		slot = store.NewFileSlot(cfg.Storage.Dir, cfg.Storage.Slot)

	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		slot = store.NewPostgresSlot(pool, cfg.Storage.Table, cfg.Storage.Slot)
		closeFn = func() { _ = database.Disconnect(pool) }

	case config.DriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		slot = store.NewMongoSlot(coll, cfg.Storage.Slot)
		closeFn = func() { _ = client.Disconnect(context.Background()) }

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if !cfg.Storage.Encrypt {
		return slot, closeFn, nil
	}

	// The slot name salts passphrase derivation so two slots never share a key.
	key, err := encryption.ResolveKey(cfg.Storage.EncryptionKey, cfg.Storage.EncryptionPassphrase, cfg.Storage.Slot)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("resolve storage key: %w", err)
	}
	enc, err := encryption.NewService(key)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("init encryption: %w", err)
	}
	return store.NewEncryptedSlot(slot, enc), closeFn, nil
}

// NewAuditService returns a logrus-only audit trail unless Elasticsearch
// addresses are configured.
func NewAuditService(cfg *config.Config, logger *logrus.Logger) (audit.Service, error) {
	if !cfg.Elasticsearch.Enabled() {
		return audit.NewService(nil, logger, cfg.Elasticsearch.IndexPrefix), nil
	}

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("connect elasticsearch: %w", err)
	}
	return audit.NewService(esClient, logger, cfg.Elasticsearch.IndexPrefix), nil
}

func LoadCatalog(cfg *config.Config) (*labs.Catalog, error) {
	if cfg.Labs.CatalogFile == "" {
		return labs.DefaultCatalog(), nil
	}
	return labs.LoadCatalogFile(cfg.Labs.CatalogFile)
}

func NewLLMClient(cfg *config.Config) *llm.Client {
	return llm.New(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Referer: cfg.LLM.Referer,
		Title:   cfg.LLM.Title,
		Timeout: cfg.LLM.Timeout,
	})
}
