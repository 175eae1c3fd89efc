// Package rules holds the compiled threshold table the notification engine
// evaluates events against. A Ruleset is immutable once built; hot-reload
// builds a new Ruleset and swaps it atomically.
package rules

import (
	"fmt"
	"sort"

	"github.com/finpulse/finpulse/internal/config"
)

// Ruleset is the full set of evaluation thresholds. All fractions are in
// (0, 1]; GoalMilestones is sorted ascending.
type Ruleset struct {
	OverspendingThreshold      float64
	CriticalSpendingThreshold  float64
	GoalMilestones             []float64
	AnomalyConfidenceThreshold float64
	InsightRelevanceThreshold  float64
}

// Default returns the stock ruleset used when no config file is present.
func Default() *Ruleset {
	return &Ruleset{
		OverspendingThreshold:      0.80,
		CriticalSpendingThreshold:  0.95,
		GoalMilestones:             []float64{0.25, 0.50, 0.75, 1.0},
		AnomalyConfidenceThreshold: 0.70,
		InsightRelevanceThreshold:  0.60,
	}
}

// FromConfig builds a Ruleset from a validated config section. Unset fields
// fall back to the defaults.
func FromConfig(rc config.RulesConf) (*Ruleset, error) {
	rs := Default()
	if rc.OverspendingThreshold != 0 {
		rs.OverspendingThreshold = rc.OverspendingThreshold
	}
	if rc.CriticalSpendingThreshold != 0 {
		rs.CriticalSpendingThreshold = rc.CriticalSpendingThreshold
	}
	if len(rc.GoalMilestones) > 0 {
		rs.GoalMilestones = append([]float64(nil), rc.GoalMilestones...)
	}
	if rc.AnomalyConfidenceThreshold != 0 {
		rs.AnomalyConfidenceThreshold = rc.AnomalyConfidenceThreshold
	}
	if rc.InsightRelevanceThreshold != 0 {
		rs.InsightRelevanceThreshold = rc.InsightRelevanceThreshold
	}

	for name, v := range map[string]float64{
		"overspending_threshold":       rs.OverspendingThreshold,
		"critical_spending_threshold":  rs.CriticalSpendingThreshold,
		"anomaly_confidence_threshold": rs.AnomalyConfidenceThreshold,
		"insight_relevance_threshold":  rs.InsightRelevanceThreshold,
	} {
		if v <= 0 || v > 1 {
			return nil, fmt.Errorf("rules: %s must be in (0, 1], got %v", name, v)
		}
	}
	if rs.CriticalSpendingThreshold < rs.OverspendingThreshold {
		return nil, fmt.Errorf("rules: critical_spending_threshold %v is below overspending_threshold %v",
			rs.CriticalSpendingThreshold, rs.OverspendingThreshold)
	}
	for _, m := range rs.GoalMilestones {
		if m <= 0 || m > 1 {
			return nil, fmt.Errorf("rules: goal milestone %v must be in (0, 1]", m)
		}
	}
	// Milestones are evaluated lowest-first; enforce the order here so the
	// engine never has to think about it.
	sort.Float64s(rs.GoalMilestones)

	return rs, nil
}
