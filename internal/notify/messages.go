package notify

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// money formats an amount for display. Decimal keeps float artifacts
// (1234.4999999) out of user-facing text.
func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// percent formats a 0–100 percentage with one decimal place.
func percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// milestoneEmoji decorates the well-known goal checkpoints. Unlisted
// milestones (custom config) get the generic progress marker.
func milestoneEmoji(fraction float64) string {
	switch fraction {
	case 0.25:
		return "🌟"
	case 0.50:
		return "💪"
	case 0.75:
		return "🔥"
	case 1.0:
		return "🎉"
	}
	return "📈"
}

func overspendingDraft(userID string, monthlyTotal, budget, spentPct float64, meta map[string]any) Draft {
	return Draft{
		UserID:   userID,
		Type:     TypeOverspending,
		Priority: PriorityCritical,
		Category: CategorySpending,
		Title:    "🚨 Critical: Budget Almost Exhausted",
		Message: fmt.Sprintf("You've spent %s of your %s monthly budget (%s). Immediate attention needed.",
			money(monthlyTotal), money(budget), percent(spentPct)),
		ActionLabel: "Review Budget",
		ActionURL:   "/budget",
		Metadata:    meta,
	}
}

func budgetWarningDraft(userID string, monthlyTotal, budget, spentPct float64, meta map[string]any) Draft {
	return Draft{
		UserID:   userID,
		Type:     TypeBudgetWarning,
		Priority: PriorityHigh,
		Category: CategorySpending,
		Title:    "⚠️ Budget Warning",
		Message: fmt.Sprintf("You've used %s of your monthly budget. %s remaining.",
			percent(spentPct), money(budget-monthlyTotal)),
		ActionLabel: "Review Budget",
		ActionURL:   "/budget",
		Metadata:    meta,
	}
}

func incomeDraft(userID string, amount float64, source string, meta map[string]any) Draft {
	msg := fmt.Sprintf("You received %s.", money(amount))
	if source != "" {
		msg = fmt.Sprintf("You received %s from %s.", money(amount), source)
	}
	return Draft{
		UserID:      userID,
		Type:        TypeIncomeReceived,
		Priority:    PriorityMedium,
		Category:    CategorySavings,
		Title:       "💰 Income Received",
		Message:     msg,
		ActionLabel: "View Income",
		ActionURL:   "/income",
		Metadata:    meta,
	}
}

func goalDraft(userID, goalName string, milestone, current, target float64, meta map[string]any) Draft {
	emoji := milestoneEmoji(milestone)
	if milestone == 1.0 {
		return Draft{
			UserID:   userID,
			Type:     TypeGoalAchieved,
			Priority: PriorityHigh,
			Category: CategoryGoals,
			Title:    fmt.Sprintf("%s Goal Achieved: %s!", emoji, goalName),
			Message: fmt.Sprintf("Congratulations! You've reached your %s goal of %s.",
				goalName, money(target)),
			ActionLabel: "View Goals",
			ActionURL:   "/goals",
			Metadata:    meta,
		}
	}
	return Draft{
		UserID:   userID,
		Type:     TypeGoalProgress,
		Priority: PriorityMedium,
		Category: CategoryGoals,
		Title:    fmt.Sprintf("%s %s of the way to %s", emoji, percent(milestone*100), goalName),
		Message: fmt.Sprintf("You've saved %s of %s toward %s. Keep going!",
			money(current), money(target), goalName),
		ActionLabel: "View Goals",
		ActionURL:   "/goals",
		Metadata:    meta,
	}
}

func recommendationDraft(userID, agentName, title, message string, meta map[string]any) Draft {
	if title == "" {
		title = "💡 New Recommendation"
	}
	return Draft{
		UserID:      userID,
		Type:        TypeAIRecommendation,
		Priority:    PriorityMedium,
		Category:    CategoryAIInsights,
		Title:       title,
		Message:     fmt.Sprintf("%s (from %s)", message, agentName),
		ActionLabel: "View Insights",
		ActionURL:   "/insights",
		Metadata:    meta,
	}
}

func agentActionDraft(userID, title, message string, priority Priority, meta map[string]any) Draft {
	if title == "" {
		title = "🤖 Agent Update"
	}
	return Draft{
		UserID:      userID,
		Type:        TypeAIInsight,
		Priority:    priority,
		Category:    CategoryAIInsights,
		Title:       title,
		Message:     message,
		ActionLabel: "View Insights",
		ActionURL:   "/insights",
		Metadata:    meta,
	}
}

func anomalyDraft(userID, message string, priority Priority, meta map[string]any) Draft {
	return Draft{
		UserID:      userID,
		Type:        TypeAnomalyDetected,
		Priority:    priority,
		Category:    CategorySpending,
		Title:       "🔍 Unusual Activity Detected",
		Message:     message,
		ActionLabel: "Review Activity",
		ActionURL:   "/expenses",
		Metadata:    meta,
	}
}
