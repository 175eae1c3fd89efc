package rules_test

import (
	"testing"

	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/rules"
)

func TestDefault(t *testing.T) {
	rs := rules.Default()
	if rs.OverspendingThreshold != 0.80 || rs.CriticalSpendingThreshold != 0.95 {
		t.Errorf("unexpected spending thresholds: %v / %v", rs.OverspendingThreshold, rs.CriticalSpendingThreshold)
	}
	if len(rs.GoalMilestones) != 4 || rs.GoalMilestones[0] != 0.25 || rs.GoalMilestones[3] != 1.0 {
		t.Errorf("unexpected milestones: %v", rs.GoalMilestones)
	}
}

func TestFromConfigOverrides(t *testing.T) {
	rs, err := rules.FromConfig(config.RulesConf{
		OverspendingThreshold: 0.70,
		GoalMilestones:        []float64{1.0, 0.5}, // out of order on purpose
	})
	if err != nil {
		t.Fatalf("FromConfig error: %v", err)
	}
	if rs.OverspendingThreshold != 0.70 {
		t.Errorf("override lost: %v", rs.OverspendingThreshold)
	}
	if rs.CriticalSpendingThreshold != 0.95 {
		t.Errorf("unset field should keep default: %v", rs.CriticalSpendingThreshold)
	}
	if rs.GoalMilestones[0] != 0.5 || rs.GoalMilestones[1] != 1.0 {
		t.Errorf("milestones not sorted ascending: %v", rs.GoalMilestones)
	}
}

func TestFromConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		conf config.RulesConf
	}{
		{name: "threshold above one", conf: config.RulesConf{OverspendingThreshold: 1.5}},
		{name: "critical below warning", conf: config.RulesConf{OverspendingThreshold: 0.9, CriticalSpendingThreshold: 0.5}},
		{name: "milestone out of range", conf: config.RulesConf{GoalMilestones: []float64{0.5, 2.0}}},
		{name: "negative milestone", conf: config.RulesConf{GoalMilestones: []float64{-0.25}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := rules.FromConfig(tt.conf); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
