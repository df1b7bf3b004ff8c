package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prfvault/prfvault/internal/configs"
)

func TestConfigInit(t *testing.T) {
	setupCLITest(t)
	require.NoError(t, os.Remove(configs.Paths.ConfigPath()))

	output := mustRunCLI(t, "config", "init", "--backend", "sqlite", "--session-ttl", "1m", "--rp-id", "example.com")
	assert.Contains(t, output, "✓ Configuration saved to")

	config, err := configs.Load()
	require.NoError(t, err)
	assert.Equal(t, configs.BackendSQLite, config.Store.Backend)
	assert.Equal(t, "vault.db", filepath.Base(config.Store.Path))
	assert.Equal(t, "1m", config.Session.TTL)
	assert.Equal(t, "example.com", config.RelyingParty.ID)
	assert.Equal(t, "example.com", config.RelyingParty.Name)
	require.NotEmpty(t, config.Installation.ID)
	installation := config.Installation.ID

	output = mustRunCLI(t, "config", "init")
	assert.Contains(t, output, "✗ ")
	assert.Contains(t, output, "already exists")

	output = mustRunCLI(t, "config", "init", "--force", "--session-ttl", "10m")
	assert.Contains(t, output, "session.ttl must be between 0s and 5m0s")

	mustRunCLI(t, "config", "init", "--force", "--presence", "auto")
	config, err = configs.Load()
	require.NoError(t, err)
	assert.Equal(t, installation, config.Installation.ID)
	assert.Equal(t, configs.BackendFile, config.Store.Backend)
}

func TestConfigShow(t *testing.T) {
	setupCLITest(t)
	t.Setenv("RP_ID", "override.example")

	output := mustRunCLI(t, "config", "show")
	assert.Contains(t, output, "# "+configs.Paths.ConfigPath())
	assert.Contains(t, output, `id = "override.example"`)
	assert.Contains(t, output, `backend = "file"`)
	assert.Contains(t, output, `presence = "auto"`)
}
