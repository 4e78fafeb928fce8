package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TABSTAT_CHART_COLOR", "green")

	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.SampEnEmbeddingDim != 1 || c.SampEnToleranceFactor != 0.2 {
		t.Fatalf("sampen defaults: %+v", c)
	}
	if c.ChartColor != "green" {
		t.Fatalf("env override ignored: %q", c.ChartColor)
	}
	if c.HistoryPath != filepath.Join(home, ".tabstat", "history.db") {
		t.Fatalf("history path = %q", c.HistoryPath)
	}
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	p := filepath.Join(dir, "cfg.yaml")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.SampEnEmbeddingDim = 3
	c.ChartCapsize = 4
	if err := Save(c, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	back, err := Load(p)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.SampEnEmbeddingDim != 3 || back.ChartCapsize != 4 {
		t.Fatalf("round trip lost values: %+v", back)
	}
}
