package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/prfvault/prfvault/internal/configs"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/store"
	"github.com/prfvault/prfvault/internal/vault"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// doctorState is what the checks inspect. Fields are nil when an earlier
// step failed.
type doctorState struct {
	env      *environment
	vault    *vault.VaultConfig
	vaultErr error
}

// Doctor runs health checks on the configuration, the store, the
// authenticator device and the vault contents. It never runs a ceremony.
func Doctor(ctx context.Context) (*DoctorResult, error) {
	var results []CheckResult
	state := &doctorState{}

	if _, err := configs.Load(); err != nil {
		results = append(results, CheckResult{
			Name:       "Configuration",
			Status:     CheckError,
			Message:    err.Error(),
			Suggestion: fmt.Sprintf("Fix %s or run 'prfvault config init --force'", configs.Paths.ConfigPath()),
		})
		return finishDoctor(results), nil
	}
	results = append(results, CheckResult{Name: "Configuration", Status: CheckPass, Message: "Configuration valid"})

	env, err := openEnvironment(ctx)
	if err != nil {
		results = append(results, CheckResult{
			Name:       "Store",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to open store or device: %v", err),
			Suggestion: "Check the [store] and [authenticator] paths in config.toml",
		})
		return finishDoctor(results), nil
	}
	defer env.Close()
	state.env = env
	state.vault, state.vaultErr = env.loadVault(ctx)

	checks := []func(*doctorState) CheckResult{
		checkVault,
		checkStorePermissions,
		checkDevicePermissions,
		checkKeypairs,
		checkDeviceCredentials,
		checkUndecryptable,
		checkStaleRecipients,
	}
	for _, check := range checks {
		results = append(results, check(state))
	}
	return finishDoctor(results), nil
}

func finishDoctor(results []CheckResult) *DoctorResult {
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}
	return &DoctorResult{
		Checks:      results,
		Summary:     calculateDoctorSummary(results),
		Suggestions: suggestions,
	}
}

func checkVault(s *doctorState) CheckResult {
	switch {
	case errors.Is(s.vaultErr, kerrors.ErrVaultNotInitialized):
		return CheckResult{
			Name:       "Vault",
			Status:     CheckError,
			Message:    "No vault found in the store",
			Suggestion: "Run 'prfvault vault init' to create one",
		}
	case s.vaultErr != nil:
		return CheckResult{
			Name:       "Vault",
			Status:     CheckError,
			Message:    fmt.Sprintf("Vault cannot be read: %v", s.vaultErr),
			Suggestion: "Restore the vault from an export with 'prfvault vault import --force'",
		}
	}
	return CheckResult{
		Name:    "Vault",
		Status:  CheckPass,
		Message: fmt.Sprintf("Vault for %s loaded (%d keypairs, %d entries)", s.vault.User.Username, len(s.vault.User.Keypairs), len(s.vault.Contents)),
	}
}

func checkStorePermissions(s *doctorState) CheckResult {
	var path string
	switch st := s.env.store.(type) {
	case *store.FileStore:
		path = st.Path(store.VaultKey)
	case *store.SQLStore:
		path = s.env.config.Store.Path
	default:
		return CheckResult{Name: "Store permissions", Status: CheckPass, Message: "In-memory store, nothing on disk"}
	}
	return checkPermissions("Store permissions", path)
}

func checkDevicePermissions(s *doctorState) CheckResult {
	return checkPermissions("Device permissions", s.env.config.Authenticator.Device)
}

func checkPermissions(name, path string) CheckResult {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return CheckResult{Name: name, Status: CheckPass, Message: fmt.Sprintf("%s not created yet", path)}
	}
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to stat %s: %v", path, err),
			Suggestion: fmt.Sprintf("Check that %s is accessible", path),
		}
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("%s is accessible by other users (%04o)", path, mode),
			Suggestion: fmt.Sprintf("Run 'chmod 600 %s' to fix permissions", path),
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: fmt.Sprintf("%s has correct permissions", path)}
}

func checkKeypairs(s *doctorState) CheckResult {
	if s.vault == nil {
		return CheckResult{Name: "Registered keys", Status: CheckError, Message: "Skipped: vault not loaded"}
	}
	if len(s.vault.User.Keypairs) == 0 {
		return CheckResult{
			Name:       "Registered keys",
			Status:     CheckWarning,
			Message:    "No authenticators are registered",
			Suggestion: "Run 'prfvault key register' before inserting entries",
		}
	}
	return CheckResult{
		Name:    "Registered keys",
		Status:  CheckPass,
		Message: fmt.Sprintf("%d authenticator(s) registered", len(s.vault.User.Keypairs)),
	}
}

func checkDeviceCredentials(s *doctorState) CheckResult {
	if s.vault == nil {
		return CheckResult{Name: "Device credentials", Status: CheckError, Message: "Skipped: vault not loaded"}
	}
	rpID := s.env.config.RelyingParty.ID
	var missing []string
	for _, kp := range s.vault.User.Keypairs {
		if !s.env.device.Has(rpID, kp.CredentialID()) {
			missing = append(missing, kp.DisplayName())
		}
	}
	if len(missing) == len(s.vault.User.Keypairs) && len(missing) > 0 {
		return CheckResult{
			Name:       "Device credentials",
			Status:     CheckWarning,
			Message:    "The configured device holds none of the registered credentials",
			Suggestion: fmt.Sprintf("Check authenticator.device and relying_party.id (currently %q)", rpID),
		}
	}
	if len(missing) > 0 {
		return CheckResult{
			Name:    "Device credentials",
			Status:  CheckPass,
			Message: fmt.Sprintf("Held on another authenticator: %s", strings.Join(missing, ", ")),
		}
	}
	return CheckResult{Name: "Device credentials", Status: CheckPass, Message: "All registered credentials are on the configured device"}
}

func checkUndecryptable(s *doctorState) CheckResult {
	if s.vault == nil {
		return CheckResult{Name: "Entries", Status: CheckError, Message: "Skipped: vault not loaded"}
	}
	var lost []string
	for _, name := range s.vault.Names() {
		if recipients, _ := s.vault.Recipients(name); len(recipients) == 0 {
			lost = append(lost, name)
		}
	}
	if len(lost) > 0 {
		return CheckResult{
			Name:       "Entries",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("No registered authenticator can decrypt: %s", strings.Join(lost, ", ")),
			Suggestion: "Delete undecryptable entries with 'prfvault vault delete'",
		}
	}
	return CheckResult{Name: "Entries", Status: CheckPass, Message: "Every entry has a registered recipient"}
}

// checkStaleRecipients finds entries that are not encrypted to every
// registered keypair, typically after a new key was registered.
func checkStaleRecipients(s *doctorState) CheckResult {
	if s.vault == nil {
		return CheckResult{Name: "Recipients", Status: CheckError, Message: "Skipped: vault not loaded"}
	}
	var stale []string
	for _, name := range s.vault.Names() {
		entry := s.vault.Contents[name]
		for _, kp := range s.vault.User.Keypairs {
			if _, ok := entry.Recipient(kp.CredentialID()); !ok {
				stale = append(stale, name)
				break
			}
		}
	}
	if len(stale) > 0 {
		return CheckResult{
			Name:       "Recipients",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Not encrypted to every registered key: %s", strings.Join(stale, ", ")),
			Suggestion: "Run 'prfvault vault reencrypt --all' to grant access to every key",
		}
	}
	return CheckResult{Name: "Recipients", Status: CheckPass, Message: "Every entry is encrypted to every registered key"}
}

// calculateDoctorSummary calculates the counts of checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
