package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/mbsim/internal/sim"
	"github.com/spf13/cobra"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newTestCommand(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.N != 16384 || cfg.Ticks != 1024 || cfg.Speed != 500 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestResolveConfigPresetWithOverride(t *testing.T) {
	cfg, err := resolveConfig(newTestCommand(t, "--preset", "small", "-n", "64"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.N != 64 {
		t.Errorf("flag should override preset, N=%d", cfg.N)
	}
	if cfg.Radius != 0.004 {
		t.Errorf("unchanged flags should keep the preset radius, got %v", cfg.Radius)
	}
}

func TestResolveConfigPresetWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("ticks: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveConfig(newTestCommand(t, "--preset", "small", "--config", path))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ticks != 5 {
		t.Errorf("config file should set ticks, got %d", cfg.Ticks)
	}
	if cfg.Radius != 0.004 || cfg.N != 1024 {
		t.Errorf("preset values should survive the config file: %+v", cfg)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	if _, err := resolveConfig(newTestCommand(t, "--preset", "nope")); err == nil {
		t.Error("expected error for unknown preset")
	}
	_, err := resolveConfig(newTestCommand(t, "-n", "10"))
	if !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for non-square grid, got %v", err)
	}
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		format, level string
		wantErr       bool
	}{
		{"text", "info", false},
		{"json", "debug", false},
		{"JSON", "warn", false},
		{"xml", "info", true},
		{"text", "loud", true},
	}
	for _, tt := range tests {
		err := setupLogging(tt.format, tt.level)
		if (err != nil) != tt.wantErr {
			t.Errorf("setupLogging(%q, %q) error = %v, wantErr %v", tt.format, tt.level, err, tt.wantErr)
		}
	}
}

func TestPrintSummaryHaltReason(t *testing.T) {
	r := &sim.Result{
		Config:  sim.Config{Ticks: 10},
		Device:  "cpu",
		Ticks:   make([]sim.TickStats, 4),
		Metrics: map[string]float64{"mean_sq": 250000},
		Halted:  true,
	}

	var buf bytes.Buffer
	printSummary(&buf, r, "window closed")
	out := buf.String()
	if !strings.Contains(out, "ticks: 4 / 10") || !strings.Contains(out, "mean_sq: 250000.0000") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if !strings.HasSuffix(out, "window closed\n") {
		t.Errorf("halted run should report its reason:\n%s", out)
	}

	buf.Reset()
	r.Halted = false
	printSummary(&buf, r, "window closed")
	if strings.Contains(buf.String(), "window closed") {
		t.Error("completed run should not report a halt")
	}
}
