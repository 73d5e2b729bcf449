package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leandrodaf/midiperform/sdk/contracts"
)

func TestLoadTableLogsFollowFlags(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "midiperform.log")
	mapPath := filepath.Join(dir, "map.txt")
	if err := os.WriteFile(mapPath, []byte("C4 0 t t\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	log, level, err := newLogger("debug", logPath)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if level != contracts.DebugLevel {
		t.Fatalf("level = %v, want debug", level)
	}
	if _, err := loadTable(log, []string{mapPath}, false); err != nil {
		t.Fatalf("loadTable: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "Parsed mapping line") {
		t.Fatalf("debug import diagnostics missing from log file:\n%s", data)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, _, err := newLogger("chatty", ""); err == nil {
		t.Fatalf("newLogger accepted an unknown level")
	}
}
