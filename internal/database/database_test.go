package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresConnString(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     5432,
		Database: "spitalverse",
		User:     "app",
		Password: `it's\secret`,
		SSLMode:  "disable",
	}
	assert.Equal(t, `host=db port=5432 user=app password='it\'s\\secret' dbname=spitalverse sslmode=disable`, cfg.ConnString())

	cfg.Password = ""
	assert.Contains(t, cfg.ConnString(), "password=''")
}

func TestMongoClientOptions(t *testing.T) {
	opts, err := MongoConfig{
		URI:            "mongodb://localhost:27017",
		MaxPoolSize:    20,
		ConnectTimeout: 3 * time.Second,
	}.ClientOptions()
	require.NoError(t, err)
	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(20), *opts.MaxPoolSize)
	require.NotNil(t, opts.ConnectTimeout)
	assert.Equal(t, 3*time.Second, *opts.ConnectTimeout)
	assert.Nil(t, opts.MinPoolSize)
}

func TestMongoTLSMissingCA(t *testing.T) {
	_, err := MongoConfig{URI: "mongodb://localhost", TLSEnabled: true, TLSCAFile: "/nonexistent/ca.pem"}.ClientOptions()
	assert.Error(t, err)
}
