package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRootCommandMetadata(t *testing.T) {
	if rootCmd.Use != "matlab-language-server" {
		t.Errorf("expected Use to be 'matlab-language-server', got %q", rootCmd.Use)
	}
	if !rootCmd.SilenceUsage || !rootCmd.SilenceErrors {
		t.Error("expected rootCmd to silence usage and errors, matching Execute()'s own error formatting")
	}
}

func TestRunServeRejectsMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matlab-language-server.yaml")
	if err := os.WriteFile(path, []byte("matlabConnectionTiming: [this is not a scalar"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	orig := configPath
	configPath = path
	defer func() { configPath = orig }()

	if err := runServe(rootCmd, nil); err == nil {
		t.Error("expected an error loading a malformed YAML config file")
	}
}
