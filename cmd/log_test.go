package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prfvault/prfvault/internal/audit"
)

func TestLogCommand(t *testing.T) {
	setupCLITest(t)

	output := mustRunCLI(t, "log")
	assert.Contains(t, output, "No audit log entries found.")

	mustRunCLI(t, "vault", "init")
	mustRunCLI(t, "key", "register", "--nickname", "laptop")
	mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "x"))
	mustRunCLI(t, "vault", "show", "token")

	output = mustRunCLI(t, "log")
	assert.Contains(t, output, "vault.init")
	assert.Contains(t, output, "key.register")
	assert.Contains(t, output, "vault.show")

	output = mustRunCLI(t, "log", "--operation", "key.remove")
	assert.Contains(t, output, "No audit log entries found matching the filters.")

	output = mustRunCLI(t, "log", "--since", "last-week")
	assert.Contains(t, output, "✗ invalid date format")

	stdout, _, err := captureStreams(func() error {
		ResetGlobalState()
		RootCmd.SetArgs([]string{"log", "--json", "--entry", "token"})
		return RootCmd.Execute()
	})
	require.NoError(t, err)

	var entries []audit.Entry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stdout)), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "vault.insert", entries[0].Operation)
	assert.Equal(t, "vault.show", entries[1].Operation)
}
