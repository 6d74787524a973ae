package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const mainTestPrefix = "cmd/rpcd:main_test"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setAppEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "cli-app")
	t.Setenv("APP_VERSION", "3.2.1")
	t.Setenv("APP_DESCRIPTION", "")
	t.Setenv("RPC_EXPOSE_APP_INFO", "true")
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"serve", "schema", "ensure-db", "version"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("%s - subcommand %q not registered", mainTestPrefix, name)
		}
	}
}

func TestRootCmd_HelpListsEnvironment(t *testing.T) {
	long := newRootCmd().Long
	for _, env := range []string{"APP_NAME", "APP_VERSION", "COMMS_URL", "DATABASE_URL", "RPC_HTTP_ADDR", "LOG_LEVEL"} {
		if !strings.Contains(long, env) {
			t.Errorf("%s - help should mention %s", mainTestPrefix, env)
		}
	}
	if strings.Contains(long, "README") {
		t.Errorf("%s - help refers to a README the repo does not ship", mainTestPrefix)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("%s - version failed: %v", mainTestPrefix, err)
	}
	if !strings.Contains(out, "rpcd version: dev") || !strings.Contains(out, "Go version:") {
		t.Errorf("%s - unexpected output %q", mainTestPrefix, out)
	}
}

func TestSchemaCmd_Stdout(t *testing.T) {
	setAppEnv(t)

	out, err := execute(t, "schema")
	if err != nil {
		t.Fatalf("%s - schema failed: %v", mainTestPrefix, err)
	}
	var doc struct {
		Info struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"info"`
		Procedures []json.RawMessage `json:"procedures"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("%s - output is not JSON: %v", mainTestPrefix, err)
	}
	if doc.Info.Name != "cli-app" || doc.Info.Version != "3.2.1" {
		t.Errorf("%s - unexpected info %+v", mainTestPrefix, doc.Info)
	}
	if len(doc.Procedures) != 6 {
		t.Errorf("%s - got %d procedures, want 6", mainTestPrefix, len(doc.Procedures))
	}
}

func TestSchemaCmd_IndentToFile(t *testing.T) {
	setAppEnv(t)
	path := filepath.Join(t.TempDir(), "schema.json")

	out, err := execute(t, "schema", "--indent", "--out", path)
	if err != nil {
		t.Fatalf("%s - schema failed: %v", mainTestPrefix, err)
	}
	if !strings.Contains(out, "wrote "+path) {
		t.Errorf("%s - unexpected output %q", mainTestPrefix, out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("%s - read output: %v", mainTestPrefix, err)
	}
	if !strings.Contains(string(data), "\n  \"") {
		t.Errorf("%s - expected indented JSON", mainTestPrefix)
	}
	if !json.Valid(data) {
		t.Errorf("%s - file is not valid JSON", mainTestPrefix)
	}
}

func TestSchemaCmd_InvalidVersion(t *testing.T) {
	setAppEnv(t)
	t.Setenv("APP_VERSION", "not-semver")

	if _, err := execute(t, "schema"); err == nil {
		t.Fatalf("%s - expected error for invalid APP_VERSION", mainTestPrefix)
	}
}

func TestEnsureDBCmd_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "ensure-db")
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("%s - expected DATABASE_URL error, got %v", mainTestPrefix, err)
	}
}
