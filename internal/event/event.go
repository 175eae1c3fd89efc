package event

import "time"

// Kind discriminates the closed set of domain events the bus carries.
type Kind string

const (
	KindExpenseAdded        Kind = "expense_added"
	KindIncomeReceived      Kind = "income_received"
	KindGoalUpdated         Kind = "goal_updated"
	KindAgentRecommendation Kind = "agent_recommendation"
	KindAgentAction         Kind = "agent_action"
	KindAnomalyDetected     Kind = "anomaly_detected"
)

// Kinds lists every valid event kind, in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindExpenseAdded,
		KindIncomeReceived,
		KindGoalUpdated,
		KindAgentRecommendation,
		KindAgentAction,
		KindAnomalyDetected,
	}
}

// Event is the common interface of all domain events. Events are immutable
// once emitted; handlers must not mutate the payload they receive.
type Event interface {
	Kind() Kind
	User() string
	OccurredAt() time.Time
}

// Meta carries the fields shared by every event.
type Meta struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"occurred_at"`
}

func (m Meta) User() string          { return m.UserID }
func (m Meta) OccurredAt() time.Time { return m.At }

// ExpenseAdded is emitted after an expense transaction is recorded.
// BudgetAmount of zero means no monthly budget is configured.
type ExpenseAdded struct {
	Meta
	Amount               float64 `json:"amount"`
	Category             string  `json:"category"`
	MonthlyTotal         float64 `json:"monthly_total"`
	CategoryTotal        float64 `json:"category_total"`
	BudgetAmount         float64 `json:"budget_amount"`
	CategoryBudgetAmount float64 `json:"category_budget_amount"`
	EntryMethod          string  `json:"entry_method"` // "manual", "voice", "import"
}

func (ExpenseAdded) Kind() Kind { return KindExpenseAdded }

// IncomeReceived is emitted after an income transaction is recorded.
type IncomeReceived struct {
	Meta
	Amount float64 `json:"amount"`
	Source string  `json:"source"`
}

func (IncomeReceived) Kind() Kind { return KindIncomeReceived }

// GoalUpdated is emitted when a savings goal balance changes.
type GoalUpdated struct {
	Meta
	GoalName       string  `json:"goal_name"`
	CurrentAmount  float64 `json:"current_amount"`
	TargetAmount   float64 `json:"target_amount"`
	PreviousAmount float64 `json:"previous_amount"`
}

func (GoalUpdated) Kind() Kind { return KindGoalUpdated }

// AgentRecommendation is emitted by an AI agent proposing an action to the
// user. Confidence is nil when the agent did not score the recommendation.
type AgentRecommendation struct {
	Meta
	AgentName  string   `json:"agent_name"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func (AgentRecommendation) Kind() Kind { return KindAgentRecommendation }

// AgentAction is emitted after an AI agent has acted on the user's behalf.
type AgentAction struct {
	Meta
	AgentName  string `json:"agent_name"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	ActionType string `json:"action_type"` // "alert", "warning", "info"
}

func (AgentAction) Kind() Kind { return KindAgentAction }

// AnomalyDetected is emitted when spending analysis flags unusual activity.
type AnomalyDetected struct {
	Meta
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	Confidence float64        `json:"confidence"`
	Details    map[string]any `json:"details,omitempty"`
}

func (AnomalyDetected) Kind() Kind { return KindAnomalyDetected }
