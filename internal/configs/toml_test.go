package configs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndLoadTOML(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.toml")

	type TestStruct struct {
		Name    string `toml:"name"`
		Port    int    `toml:"port"`
		Enabled bool   `toml:"enabled"`
	}

	originalData := TestStruct{
		Name:    "localhost",
		Port:    8443,
		Enabled: true,
	}

	if err := SaveTOML(testFile, originalData); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loadedData := TestStruct{}
	if err := LoadTOML(testFile, &loadedData); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if loadedData != originalData {
		t.Errorf("Expected %+v, got %+v", originalData, loadedData)
	}
}

func TestLoadTOMLNonExistent(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "nonexistent.toml")

	type TestStruct struct {
		Name string
	}

	data := TestStruct{}
	if err := LoadTOML(testFile, &data); err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
}

func TestLoadTOMLRejectsUnknownKeys(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "typo.toml")
	if err := os.WriteFile(testFile, []byte("[store]\nbackedn = \"sqlite\"\n"), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	var config Config
	err := LoadTOML(testFile, &config)
	if err == nil {
		t.Fatal("Expected error for unknown key, got nil")
	}
	if !strings.Contains(err.Error(), "store.backedn") {
		t.Errorf("Expected error to name the unknown key, got: %v", err)
	}
}

func TestSaveTOMLCreatesDirectoryWithPrivatePermissions(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "subdir", "test.toml")

	type TestStruct struct {
		Name string
	}

	if err := SaveTOML(testFile, TestStruct{Name: "Test"}); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("File was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected permissions 0600, got %o", perm)
	}
	if _, err := os.Stat(testFile + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Temporary file was left behind")
	}
}
