package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prfvault/prfvault/internal/configs"
)

// useConfigDir points configs.Paths at a temp directory for one test.
func useConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	original := configs.Paths
	configs.Paths = &configs.PathSettings{
		ConfigDir: filepath.Join(dir, "config"),
		DataDir:   filepath.Join(dir, "data"),
		Username:  "alice",
	}
	t.Cleanup(func() { configs.Paths = original })
	return configs.Paths.ConfigDir
}

func readLog(t *testing.T, configDir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(configDir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	return strings.TrimSpace(string(data))
}

func TestLog_CreatesFile(t *testing.T) {
	configDir := useConfigDir(t)

	Log(Entry{User: "alice", Operation: "vault.insert", Entry: "github-token"})

	info, err := os.Stat(filepath.Join(configDir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("Audit log file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	configDir := useConfigDir(t)

	Log(Entry{User: "alice", Operation: "vault.insert"})
	Log(Entry{User: "alice", Operation: "vault.show"})
	Log(Entry{User: "alice", Operation: "key.register"})

	lines := strings.Split(readLog(t, configDir), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
}

func TestLog_ValidJSON(t *testing.T) {
	configDir := useConfigDir(t)

	Log(Entry{
		User:            "alice",
		Installation:    "inst-1",
		Operation:       "vault.insert",
		Entry:           "db-password",
		RecipientsCount: 2,
	})

	var parsed Entry
	if err := json.Unmarshal([]byte(readLog(t, configDir)), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}
	if parsed.Entry != "db-password" {
		t.Errorf("Expected entry db-password, got %s", parsed.Entry)
	}
	if parsed.RecipientsCount != 2 {
		t.Errorf("Expected 2 recipients, got %d", parsed.RecipientsCount)
	}
	if parsed.Installation != "inst-1" {
		t.Errorf("Expected installation inst-1, got %s", parsed.Installation)
	}
}

func TestLog_TimestampFormat(t *testing.T) {
	configDir := useConfigDir(t)

	Log(Entry{User: "alice", Operation: "vault.list"})

	var parsed Entry
	if err := json.Unmarshal([]byte(readLog(t, configDir)), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}
	if !strings.HasSuffix(parsed.Timestamp, "Z") {
		t.Errorf("Timestamp should end with Z, got %s", parsed.Timestamp)
	}
	if !strings.Contains(parsed.Timestamp, ".") {
		t.Errorf("Timestamp should contain microseconds, got %s", parsed.Timestamp)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	configDir := useConfigDir(t)

	Log(Entry{User: "alice", Operation: "vault.status"})

	line := readLog(t, configDir)
	for _, field := range []string{`"credential"`, `"entry"`, `"recipients_count"`, `"output_path"`} {
		if strings.Contains(line, field) {
			t.Errorf("Empty %s field should be omitted: %s", field, line)
		}
	}
}

func TestLog_NoPaths(t *testing.T) {
	original := configs.Paths
	configs.Paths = nil
	defer func() { configs.Paths = original }()

	Log(Entry{User: "alice", Operation: "vault.show"})

	if path := LogPath(); path != "" {
		t.Errorf("Expected empty path, got %s", path)
	}
}

func TestLogWithUser(t *testing.T) {
	useConfigDir(t)

	config := configs.Default()
	config.Installation.ID = "inst-42"

	entry := LogWithUser("key.rename", config)
	if entry.User != "alice" {
		t.Errorf("Expected user alice, got %s", entry.User)
	}
	if entry.Installation != "inst-42" {
		t.Errorf("Expected installation inst-42, got %s", entry.Installation)
	}
	if entry.Operation != "key.rename" {
		t.Errorf("Expected op key.rename, got %s", entry.Operation)
	}

	if entry := LogWithUser("vault.list", nil); entry.Installation != "" {
		t.Errorf("Expected empty installation without config, got %s", entry.Installation)
	}
}

func TestReadEntries(t *testing.T) {
	useConfigDir(t)

	entries, err := ReadEntries()
	if err != nil || entries != nil {
		t.Fatalf("Expected no entries before logging, got %v, %v", entries, err)
	}

	Log(Entry{User: "alice", Operation: "vault.init", Backend: "file"})
	Log(Entry{User: "alice", Operation: "vault.export", OutputPath: "/tmp/v.json"})

	entries, err = ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Backend != "file" || entries[1].OutputPath != "/tmp/v.json" {
		t.Errorf("Unexpected entries: %+v", entries)
	}
}

func TestParseEntries_ValidData(t *testing.T) {
	data := []byte(`{"ts":"2026-01-15T10:30:00.123456Z","user":"alice","op":"vault.insert"}
{"ts":"2026-01-15T10:35:00.456789Z","user":"bob","op":"vault.show"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].User != "alice" || entries[1].User != "bob" {
		t.Errorf("Unexpected users: %s, %s", entries[0].User, entries[1].User)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2026-01-15T10:30:00.123456Z","user":"alice","op":"vault.insert"}
this is not valid json
{"ts":"2026-01-15T10:35:00.456789Z","user":"bob","op":"vault.show"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 valid entries, got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries([]byte{})
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries for empty data, got %v", entries)
	}
}
