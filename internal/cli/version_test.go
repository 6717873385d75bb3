package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestVersionCommandHumanReadable(t *testing.T) {
	versionJSON = false
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
}

func TestVersionCommandJSON(t *testing.T) {
	versionJSON = true
	defer func() { versionJSON = false }()

	if err := runVersion(versionCmd, nil); err != nil {
		t.Fatalf("version --json failed: %v", err)
	}

	data, err := json.Marshal(versionInfo{Version: Version, GitCommit: GitCommit})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var info versionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info.Version != Version {
		t.Errorf("expected version %q, got %q", Version, info.Version)
	}
}

func TestVersionCommandRegistered(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "version" {
			found = true
		}
	}
	if !found {
		t.Error("expected version subcommand to be registered on rootCmd")
	}
}
