package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultLifecycle(t *testing.T) {
	setupCLITest(t)

	output := mustRunCLI(t, "vault", "init")
	assert.Contains(t, output, "✓ Created vault for 'testuser'")
	assert.Contains(t, output, "prfvault key register")

	output = mustRunCLI(t, "key", "register", "--nickname", "laptop")
	assert.Contains(t, output, "✓ Registered 'laptop'")

	output = mustRunCLI(t, "vault", "insert", "github-token", "--file", writeSecretFile(t, "s3cret"))
	assert.Contains(t, output, "✓ Encrypted 'github-token' for:")
	assert.Contains(t, output, "- 'laptop'")

	output = mustRunCLI(t, "vault", "show", "github-token")
	assert.Contains(t, output, "s3cret")

	output = mustRunCLI(t, "vault", "list")
	assert.Contains(t, output, "NAME")
	assert.Contains(t, output, "github-token  laptop")

	output = mustRunCLI(t, "vault", "status")
	assert.Contains(t, output, "Owner:")
	assert.Contains(t, output, "1 registered, 1 on device")

	output = mustRunCLI(t, "vault", "delete", "github-token")
	assert.Contains(t, output, "✓ Deleted 'github-token'")

	output = mustRunCLI(t, "vault", "list")
	assert.Contains(t, output, "No entries yet")
}

func TestVaultErrorsAreReported(t *testing.T) {
	setupCLITest(t)

	output, err := runCLI("vault", "show", "missing")
	require.Error(t, err)
	assert.True(t, IsReported(err))
	assert.Contains(t, output, "✗ Vault has not been initialized")
	assert.Contains(t, output, "→ Run `prfvault vault init` first")

	mustRunCLI(t, "vault", "init")
	output = mustRunCLI(t, "vault", "init")
	assert.Contains(t, output, "✗ Vault has already been initialized")
	assert.Contains(t, output, "--force")

	output = mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "x"))
	assert.Contains(t, output, "✗ No authenticators are registered with this vault")
	assert.Contains(t, output, "prfvault key register")

	mustRunCLI(t, "key", "register", "--nickname", "laptop")
	mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "x"))

	output = mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "y"))
	assert.Contains(t, output, "✗ An entry with this name already exists")
	assert.Contains(t, output, "--replace")

	output = mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "y"), "--replace")
	assert.Contains(t, output, "✓ Replaced 'token'")

	output, err = runCLI("vault", "show", "nope")
	require.Error(t, err)
	assert.Contains(t, output, "✗ Entry not found")
	assert.Contains(t, output, "prfvault vault list")
}

func TestVaultReencryptGrantsNewKey(t *testing.T) {
	setupCLITest(t)

	mustRunCLI(t, "vault", "init")
	useDevice(t, "a")
	mustRunCLI(t, "key", "register", "--nickname", "key-a")
	mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "shared"))

	useDevice(t, "b")
	output := mustRunCLI(t, "key", "register", "--nickname", "key-b")
	assert.Contains(t, output, "prfvault vault reencrypt --all")

	// Device b holds no credential the entry is encrypted to.
	output, err := runCLI("vault", "show", "token")
	require.Error(t, err)
	assert.Contains(t, output, "✗ ")
	assert.NotContains(t, output, "shared")

	output = mustRunCLI(t, "vault", "reencrypt")
	assert.Contains(t, output, "✗ No entries named")

	useDevice(t, "a")
	output = mustRunCLI(t, "vault", "reencrypt", "--all")
	assert.Contains(t, output, "✓ Re-encrypted 1 entry")

	useDevice(t, "b")
	output = mustRunCLI(t, "vault", "show", "token")
	assert.Contains(t, output, "shared")
}

func TestVaultExportImport(t *testing.T) {
	setupCLITest(t)

	mustRunCLI(t, "vault", "init")
	mustRunCLI(t, "key", "register", "--nickname", "laptop")
	mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "x"))

	path := filepath.Join(t.TempDir(), "vault.json")
	output := mustRunCLI(t, "vault", "export", "--output", path)
	assert.Contains(t, output, "✓ Exported 1 keys and 1 entries")
	assert.FileExists(t, path)

	output = mustRunCLI(t, "vault", "import", path)
	assert.Contains(t, output, "✗ Vault has already been initialized")

	output = mustRunCLI(t, "vault", "import", path, "--force")
	assert.Contains(t, output, "✓ Imported vault for 'testuser' with 1 keys and 1 entries")
	assert.Contains(t, output, "The previous vault was replaced")

	bad := writeSecretFile(t, "not json")
	output = mustRunCLI(t, "vault", "import", bad, "--force")
	assert.Contains(t, output, "✗ Serialization failed")
}

func TestVaultShowWritesOnlyContentToStdout(t *testing.T) {
	setupCLITest(t)

	mustRunCLI(t, "vault", "init")
	mustRunCLI(t, "key", "register")
	mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "exact"))

	ResetGlobalState()
	RootCmd.SetArgs([]string{"vault", "show", "token"})
	stdout, _, err := captureStreams(func() error {
		return RootCmd.Execute()
	})
	require.NoError(t, err)
	assert.Equal(t, "exact", stdout)
}

func TestVaultShowFailureWritesOnlyToStderr(t *testing.T) {
	setupCLITest(t)

	mustRunCLI(t, "vault", "init")
	mustRunCLI(t, "key", "register", "--nickname", "laptop")
	mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "exact"))
	mustRunCLI(t, "key", "remove", "laptop", "--force")

	ResetGlobalState()
	RootCmd.SetArgs([]string{"vault", "show", "token"})
	stdout, stderr, err := captureStreams(func() error {
		return RootCmd.Execute()
	})
	require.Error(t, err)
	assert.True(t, IsReported(err))
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "✗ None of your registered authenticators can decrypt this entry")
	assert.Contains(t, stderr, "prfvault vault reencrypt")
}

func TestVaultShowCancelledIsSilentButFails(t *testing.T) {
	setupCLITest(t)

	mustRunCLI(t, "vault", "init")
	mustRunCLI(t, "key", "register")
	mustRunCLI(t, "vault", "insert", "token", "--file", writeSecretFile(t, "exact"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ResetGlobalState()
	RootCmd.SetArgs([]string{"vault", "show", "token"})
	stdout, stderr, err := captureStreams(func() error {
		return RootCmd.ExecuteContext(ctx)
	})
	require.Error(t, err)
	assert.True(t, IsReported(err))
	assert.Empty(t, stdout)
	assert.NotContains(t, stderr, "✗")
}
