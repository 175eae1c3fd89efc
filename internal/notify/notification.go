package notify

import "time"

// Type identifies what a notification is about. The set is closed; the
// engine never invents new types at runtime.
type Type string

const (
	TypeOverspending     Type = "overspending"
	TypeBudgetWarning    Type = "budget_warning"
	TypeSavingsMilestone Type = "savings_milestone"
	TypeGoalAchieved     Type = "goal_achieved"
	TypeGoalProgress     Type = "goal_progress"
	TypeIncomeReceived   Type = "income_received"
	TypeAIInsight        Type = "ai_insight"
	TypeAIRecommendation Type = "ai_recommendation"
	TypeAnomalyDetected  Type = "anomaly_detected"
)

// Priority orders notifications for display. More severe sorts first.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the sort rank of p; lower is more severe. Unknown priorities
// sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Category groups notifications for UI filtering.
type Category string

const (
	CategorySpending   Category = "spending"
	CategorySavings    Category = "savings"
	CategoryGoals      Category = "goals"
	CategoryBills      Category = "bills"
	CategoryAIInsights Category = "ai_insights"
	CategorySystem     Category = "system"
)

// Notification is the record the rule engine materializes for a qualifying
// event. Title and Message are fully formatted; nothing downstream templates
// them further. Read and Dismissed only ever transition false→true.
type Notification struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Type        Type           `json:"type"`
	Priority    Priority       `json:"priority"`
	Category    Category       `json:"category"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	ActionLabel string         `json:"action_label,omitempty"`
	ActionURL   string         `json:"action_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Read        bool           `json:"read"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	Dismissed   bool           `json:"dismissed"`
	DismissedAt *time.Time     `json:"dismissed_at,omitempty"`
}

// Draft is a fully-formed notification intent, before the engine assigns
// identity and lifecycle state.
type Draft struct {
	UserID      string
	Type        Type
	Priority    Priority
	Category    Category
	Title       string
	Message     string
	ActionLabel string
	ActionURL   string
	Metadata    map[string]any
}
