package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/prfvault/prfvault/internal/configs"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp    string `json:"ts"`           // RFC3339 with microseconds.
	User         string `json:"user"`         // OS user performing the action.
	Installation string `json:"installation"` // Installation ID from config.toml.
	Operation    string `json:"op"`           // Operation name.

	// Optional fields depending on operation.
	Credential      string `json:"credential,omitempty"`       // For key register/rename/remove.
	Entry           string `json:"entry,omitempty"`            // For insert/show/delete/reencrypt.
	RecipientsCount int    `json:"recipients_count,omitempty"` // For insert/reencrypt.
	Count           int    `json:"count,omitempty"`            // For remove (entries affected) and import.
	OutputPath      string `json:"output_path,omitempty"`      // For export.
	Backend         string `json:"backend,omitempty"`          // For init/import.
}

// Log appends an entry to the audit log.
// Failures are ignored; an operation never fails because auditing did.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser returns an entry for op with the user and installation
// fields filled in.
func LogWithUser(op string, config *configs.Config) Entry {
	entry := Entry{Operation: op}
	if configs.Paths != nil {
		entry.User = configs.Paths.Username
	}
	if config != nil {
		entry.Installation = config.Installation.ID
	}
	return entry
}

// LogPath returns the path to the audit log file, or "" when the
// directories have not been resolved.
func LogPath() string {
	if configs.Paths == nil || configs.Paths.ConfigDir == "" {
		return ""
	}
	return configs.Paths.AuditLogPath()
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
