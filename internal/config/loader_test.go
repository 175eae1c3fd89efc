package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/finpulse/finpulse/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "finpulse.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoaderDefaults(t *testing.T) {
	path := writeConfig(t, "version: v1\n")
	loader, err := config.NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	cfg := loader.Config()
	if cfg.Writer.Workers != 4 || cfg.Writer.QueueDepth != 1024 || cfg.Writer.PersistTimeoutMs != 5000 {
		t.Errorf("writer defaults not applied: %+v", cfg.Writer)
	}
	if cfg.Storage.Path != "data/notifications.db" {
		t.Errorf("storage default not applied: %q", cfg.Storage.Path)
	}
}

func TestLoaderParsesRules(t *testing.T) {
	path := writeConfig(t, `
version: v1
rules:
  overspending_threshold: 0.75
  critical_spending_threshold: 0.90
  goal_milestones: [0.5, 1.0]
`)
	loader, err := config.NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	cfg := loader.Config()
	if cfg.Rules.OverspendingThreshold != 0.75 || cfg.Rules.CriticalSpendingThreshold != 0.90 {
		t.Errorf("thresholds not parsed: %+v", cfg.Rules)
	}
	if len(cfg.Rules.GoalMilestones) != 2 {
		t.Errorf("milestones not parsed: %v", cfg.Rules.GoalMilestones)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	if _, err := config.NewLoader(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestReload(t *testing.T) {
	path := writeConfig(t, "version: v1\nrules:\n  overspending_threshold: 0.8\n")
	loader, err := config.NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	var notified *config.Config
	loader.OnChange(func(c *config.Config) { notified = c })

	if err := os.WriteFile(path, []byte("version: v1\nrules:\n  overspending_threshold: 0.7\n"), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	cfg, err := loader.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cfg.Rules.OverspendingThreshold != 0.7 {
		t.Errorf("reload did not pick up the new value: %v", cfg.Rules.OverspendingThreshold)
	}
	if notified == nil || notified.Rules.OverspendingThreshold != 0.7 {
		t.Error("OnChange callback not invoked on Reload")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{name: "minimal valid", cfg: config.Config{Version: "v1"}},
		{name: "missing version", cfg: config.Config{}, wantErr: true},
		{
			name: "threshold out of range",
			cfg: config.Config{
				Version: "v1",
				Rules:   config.RulesConf{OverspendingThreshold: 1.2},
			},
			wantErr: true,
		},
		{
			name: "critical below warning",
			cfg: config.Config{
				Version: "v1",
				Rules:   config.RulesConf{OverspendingThreshold: 0.9, CriticalSpendingThreshold: 0.8},
			},
			wantErr: true,
		},
		{
			name: "bad milestone",
			cfg: config.Config{
				Version: "v1",
				Rules:   config.RulesConf{GoalMilestones: []float64{0.25, 1.5}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.Validate(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
