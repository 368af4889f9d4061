package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration: %v", err)
	}
	if config.MarkFormat != MarkFormatHTK || config.MarkStream != "mrk1" || !config.NoDB || !config.WriteData {
		t.Errorf("unexpected defaults %+v", config)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("defaults must be valid: %v", err)
	}
}

func TestLoadConfigurationOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"verbosity": 2, "mark_format": "hdf5", "num_workers": 4}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration: %v", err)
	}
	if config.Verbosity != 2 || config.MarkFormat != MarkFormatHDF5 || config.NumWorkers != 4 {
		t.Errorf("unexpected configuration %+v", config)
	}
	if config.CompressionLevel != 4 {
		t.Errorf("compression level = %d, want the default 4", config.CompressionLevel)
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfiguration(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	config, _ := LoadConfiguration("")
	config.MarkFormat = "wav"
	config.NumWorkers = 0
	config.NoDB = false
	config.CatalogPath = ""

	err := config.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, field := range []string{"mark_format", "num_workers", "catalog_path"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}
