package utils

import (
	"strings"
	"testing"
)

func TestSanitizeNickname(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"LowercaseSimple", "YubiKey", "yubikey"},
		{"SpacesToHyphens", "Work Key", "work-key"},
		{"RemoveSpecialChars", "Key@Home#1!", "keyhome1"},
		{"RemoveConsecutiveHyphens", "my--key", "my-key"},
		{"TrimHyphens", "-my-key-", "my-key"},
		{"EmptyToDefault", "", "key"},
		{"OnlySpecialChars", "@#$%", "key"},
		{"PreserveUnderscores", "backup_key", "backup_key"},
		{"TrimWhitespace", "  solo  ", "solo"},
		{"ComplexName", "  My MacBook Pro! softkey  ", "my-macbook-pro-softkey"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := SanitizeNickname(tc.input)
			if result != tc.expected {
				t.Errorf("SanitizeNickname(%q) = %q, expected %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestUniqueNickname(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		expected string
	}{
		{"NoConflict", nil, "laptop-softkey"},
		{"AppendsNumberOnConflict", []string{"laptop-softkey"}, "laptop-softkey-2"},
		{"IncrementsForMultipleConflicts", []string{"laptop-softkey", "laptop-softkey-2", "laptop-softkey-3"}, "laptop-softkey-4"},
		{"CaseInsensitiveConflictCheck", []string{"Laptop-Softkey"}, "laptop-softkey-2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := uniqueNickname("laptop-softkey", tc.existing); got != tc.expected {
				t.Errorf("uniqueNickname = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestGenerateNickname(t *testing.T) {
	name := GenerateNickname("softkey", nil)
	if !strings.HasSuffix(name, "softkey") {
		t.Errorf("Expected nickname to end with the authenticator kind, got %q", name)
	}

	again := GenerateNickname("softkey", []string{name})
	if again != name+"-2" {
		t.Errorf("Expected %q, got %q", name+"-2", again)
	}
}

func TestGetUsername(t *testing.T) {
	username, err := GetUsername()
	if err != nil {
		t.Fatalf("GetUsername failed: %v", err)
	}
	if username == "" {
		t.Fatal("Expected non-empty username")
	}
}
