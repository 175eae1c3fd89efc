package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for:
//   - Required fields
//   - Threshold ranges (each fraction must sit in (0, 1])
//   - Internal consistency (critical threshold at or above the warning one)
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	if cfg.Writer.Workers < 0 {
		errs = append(errs, "writer.workers must not be negative")
	}
	if cfg.Writer.QueueDepth < 0 {
		errs = append(errs, "writer.queue_depth must not be negative")
	}

	checkFraction := func(name string, v float64) {
		if v != 0 && (v <= 0 || v > 1) {
			errs = append(errs, fmt.Sprintf("rules.%s must be in (0, 1], got %v", name, v))
		}
	}
	checkFraction("overspending_threshold", cfg.Rules.OverspendingThreshold)
	checkFraction("critical_spending_threshold", cfg.Rules.CriticalSpendingThreshold)
	checkFraction("anomaly_confidence_threshold", cfg.Rules.AnomalyConfidenceThreshold)
	checkFraction("insight_relevance_threshold", cfg.Rules.InsightRelevanceThreshold)

	if cfg.Rules.OverspendingThreshold != 0 && cfg.Rules.CriticalSpendingThreshold != 0 &&
		cfg.Rules.CriticalSpendingThreshold < cfg.Rules.OverspendingThreshold {
		errs = append(errs, fmt.Sprintf("rules.critical_spending_threshold %v is below rules.overspending_threshold %v",
			cfg.Rules.CriticalSpendingThreshold, cfg.Rules.OverspendingThreshold))
	}
	for i, m := range cfg.Rules.GoalMilestones {
		if m <= 0 || m > 1 {
			errs = append(errs, fmt.Sprintf("rules.goal_milestones[%d] must be in (0, 1], got %v", i, m))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
