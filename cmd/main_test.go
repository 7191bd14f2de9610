package main

import (
	"flag"
	"testing"

	"github.com/csaltikov/kegger/internal/config"
)

func newTestFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("kegger", flag.ContinueOnError)
	fs.String("org", "eco", "")
	fs.String("out", "database.json", "")
	fs.String("gene-report", "", "")
	return fs
}

func TestApplyFlagOverrides_ConfigWinsOverFlagDefaults(t *testing.T) {
	fs := newTestFlagSet()
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	cfg := &config.Config{Organism: "hsa"}
	applyFlagOverrides(cfg, fs)

	if cfg.Organism != "hsa" {
		t.Fatalf("expected organism from config to survive flag defaults, got %q", cfg.Organism)
	}
	// unset config fields fall back to flag defaults
	if cfg.OutputJSON != "database.json" {
		t.Fatalf("expected output default, got %q", cfg.OutputJSON)
	}
}

func TestApplyFlagOverrides_ExplicitFlagWinsOverConfig(t *testing.T) {
	fs := newTestFlagSet()
	if err := fs.Parse([]string{"-org", "sce", "-gene-report", "report.json"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	cfg := &config.Config{Organism: "hsa", OutputJSON: "custom.json"}
	applyFlagOverrides(cfg, fs)

	if cfg.Organism != "sce" {
		t.Fatalf("expected explicit -org to override config, got %q", cfg.Organism)
	}
	if cfg.GeneReportJSON != "report.json" {
		t.Fatalf("expected explicit -gene-report to apply, got %q", cfg.GeneReportJSON)
	}
	// flags the user did not pass leave config untouched
	if cfg.OutputJSON != "custom.json" {
		t.Fatalf("expected config output to survive, got %q", cfg.OutputJSON)
	}
}
