package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "--version")
	if code != 0 || !strings.HasPrefix(out, "drawstorm dev") {
		t.Errorf("code = %d, output = %q", code, out)
	}
}

func TestBadFlags(t *testing.T) {
	tests := [][]string{
		{"--no-such-flag"},
		{"--log-level", "loud"},
		{"--undo", "-1"},
		{"stray"},
		{"--query", "undo"},
	}
	for _, args := range tests {
		if code, _, _ := runCLI(t, args...); code != 2 {
			t.Errorf("run(%v) = %d, want 2", args, code)
		}
	}
}

func TestScriptListHistoryUndo(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "drawstorm.db")
	script := filepath.Join(dir, "seed.lua")
	if err := os.WriteFile(script, []byte(`
		local a = ds.add_shape{x = 0, y = 0, width = 10, height = 10}
		local b = ds.add_shape{x = 40, y = 0, width = 10, height = 10}
		ds.connect(a, b)
	`), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, "--db", db, "--doc", "flow", "--name", "Flow", "--script", script, "--log-level", "error")
	if code != 0 {
		t.Fatalf("script run = %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "Flow (flow)") || !strings.Contains(out, "2 shapes, 1 connectors") {
		t.Errorf("summary = %q", out)
	}

	code, out, _ = runCLI(t, "--db", db, "--list", "--log-level", "error")
	if code != 0 || !strings.Contains(out, "flow") || !strings.Contains(out, "Flow") {
		t.Errorf("list = %d, %q", code, out)
	}

	code, out, _ = runCLI(t, "--db", db, "--doc", "flow", "--history", "--log-level", "error")
	if code != 0 {
		t.Fatalf("history = %d", code)
	}
	var snap struct {
		Undo []struct {
			Type string `json:"type"`
		} `json:"undo"`
	}
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("history output is not JSON: %v\n%s", err, out)
	}
	if len(snap.Undo) != 3 {
		t.Errorf("undo entries = %d, want 3", len(snap.Undo))
	}
	if !strings.Contains(out, `"document":{"id":"flow","name":"Flow"}`) {
		t.Errorf("history output missing document label: %s", out)
	}

	code, out, _ = runCLI(t, "--db", db, "--doc", "flow", "--history", "-q", "undo.#.type", "--log-level", "error")
	if code != 0 || strings.TrimSpace(out) != `["AddShape","AddShape","AddConnector"]` {
		t.Errorf("query = %d, %q", code, out)
	}
	if code, _, _ := runCLI(t, "--db", db, "--doc", "flow", "--history", "-q", "nothing.here", "--log-level", "error"); code != 1 {
		t.Errorf("empty query result code = %d, want 1", code)
	}

	code, out, _ = runCLI(t, "--db", db, "--doc", "flow", "--undo", "1", "--log-level", "error")
	if code != 0 || !strings.Contains(out, "2 shapes, 0 connectors") || !strings.Contains(out, "history: 2 undo, 1 redo") {
		t.Errorf("undo = %d, %q", code, out)
	}
}
