package cmd

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prfvault/prfvault/internal/configs"
)

// setupCLITest points prfvault at temporary directories and writes a
// config whose softkey confirms presence without prompting.
func setupCLITest(t *testing.T) string {
	t.Helper()
	t.Setenv("RP_ID", "")
	t.Setenv("RP_NAME", "")
	t.Setenv("NO_COLOR", "1")

	dir := t.TempDir()
	originalPaths := configs.Paths
	configs.Paths = &configs.PathSettings{
		ConfigDir: filepath.Join(dir, "config"),
		DataDir:   filepath.Join(dir, "data"),
		Username:  "testuser",
	}
	t.Cleanup(func() {
		configs.Paths = originalPaths
		ResetGlobalState()
	})

	config := configs.Default()
	config.Authenticator.Presence = configs.PresenceAuto
	require.NoError(t, configs.Save(config))
	return dir
}

// useDevice switches the softkey device file, standing in for a
// different security key.
func useDevice(t *testing.T, name string) {
	t.Helper()
	config, err := configs.Load()
	require.NoError(t, err)
	config.Authenticator.Device = filepath.Join(configs.Paths.DataDir, name+".cbor")
	require.NoError(t, configs.Save(config))
}

// runCLI resets command state and runs prfvault with args, returning
// everything written to stdout and stderr.
func runCLI(args ...string) (string, error) {
	ResetGlobalState()
	return executeCLI(args...)
}

func executeCLI(args ...string) (string, error) {
	RootCmd.SetArgs(args)
	return captureOutput(func() error {
		return RootCmd.ExecuteContext(context.Background())
	})
}

// mustRunCLI runs prfvault and fails the test if the command errors.
func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	output, err := runCLI(args...)
	require.NoError(t, err, "prfvault %v: %s", args, output)
	return output
}

// writeSecretFile writes content to a file for insert --file.
func writeSecretFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	stdout, stderr, err := captureStreams(fn)
	return stdout + stderr, err
}

// captureStreams captures stdout and stderr separately.
func captureStreams(fn func() error) (string, string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	copyTo := func(r io.Reader, out chan<- string) {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		out <- buf.String()
	}
	go copyTo(stdoutReader, stdoutChan)
	go copyTo(stderrReader, stderrChan)

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan, <-stderrChan, err
}
