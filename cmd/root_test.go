package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/speaker-cli/internal/config"
)

func TestApplyRootFlags_PostgresURL(t *testing.T) {
	flagDB = "postgres://localhost/speakers"
	flagLogLevel = "debug"
	t.Cleanup(func() { flagDB, flagLogLevel = "", "" })

	c := &config.Config{}
	c.Store.Driver = "sqlite"
	c.Log.Level = "info"

	applyRootFlags(c)

	assert.Equal(t, "postgres", c.Store.Driver)
	assert.Equal(t, "postgres://localhost/speakers", c.Store.DatabaseURL)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestApplyRootFlags_SQLitePath(t *testing.T) {
	flagDB = "/tmp/speakers.db"
	t.Cleanup(func() { flagDB = "" })

	c := &config.Config{}
	c.Store.Driver = "postgres"

	applyRootFlags(c)

	assert.Equal(t, "sqlite", c.Store.Driver)
	assert.Equal(t, "/tmp/speakers.db", c.Store.DatabaseURL)
}

func TestApplyRootFlags_NoFlags(t *testing.T) {
	c := &config.Config{}
	c.Store.Driver = "sqlite"
	c.Store.DatabaseURL = "speakers.db"
	c.Log.Level = "info"

	applyRootFlags(c)

	assert.Equal(t, "sqlite", c.Store.Driver)
	assert.Equal(t, "speakers.db", c.Store.DatabaseURL)
	assert.Equal(t, "info", c.Log.Level)
}
