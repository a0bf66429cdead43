package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const (
	adaProfile = "testdata/ada/profile.html"
	feedPage   = "testdata/feed/feed.html"
	adaURL     = "https://www.linkedin.com/in/ada-lovelace/"
)

// emptyConfig writes an empty configuration file so that tests never pick
// up a .prospector from the working or home directory.
func emptyConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".prospector")
	if err := os.WriteFile(path, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}
