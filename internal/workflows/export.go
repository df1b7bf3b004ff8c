package workflows

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prfvault/prfvault/internal/audit"
	"github.com/prfvault/prfvault/internal/vault"
)

// ExportOptions configures the export workflow.
type ExportOptions struct {
	// OutputPath is the file to write. If empty, Output is used.
	OutputPath string

	// Output receives the JSON when OutputPath is empty.
	Output io.Writer
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	OutputPath string
	Bytes      int
	Keypairs   int
	Entries    int
}

// Export writes the serialized vault. Everything in it is either public or
// encrypted, so no ceremony is needed.
func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	if opts.OutputPath == "" && opts.Output == nil {
		return nil, fmt.Errorf("export needs an output path or writer")
	}

	var result *ExportResult
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		data, err := vault.MarshalIndent(v)
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if opts.OutputPath != "" {
			if err := writeExport(opts.OutputPath, data); err != nil {
				return err
			}
		} else if _, err := opts.Output.Write(data); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}

		entry := audit.LogWithUser("vault.export", env.config)
		entry.OutputPath = opts.OutputPath
		audit.Log(entry)

		result = &ExportResult{
			OutputPath: opts.OutputPath,
			Bytes:      len(data),
			Keypairs:   len(v.User.Keypairs),
			Entries:    len(v.Contents),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func writeExport(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
