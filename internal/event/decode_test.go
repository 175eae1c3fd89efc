package event_test

import (
	"testing"

	"github.com/finpulse/finpulse/internal/event"
)

func TestDecodeExpenseAdded(t *testing.T) {
	body := []byte(`{
		"kind": "expense_added",
		"user_id": "u1",
		"amount": 42.5,
		"category": "Groceries",
		"monthly_total": 950,
		"budget_amount": 1000,
		"entry_method": "voice"
	}`)

	ev, err := event.Decode(body)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	e, ok := ev.(event.ExpenseAdded)
	if !ok {
		t.Fatalf("decoded %T, want ExpenseAdded", ev)
	}
	if e.User() != "u1" || e.Amount != 42.5 || e.BudgetAmount != 1000 {
		t.Errorf("unexpected fields: %+v", e)
	}
	if e.ID == "" {
		t.Error("missing id should be defaulted")
	}
	if e.OccurredAt().IsZero() {
		t.Error("missing occurred_at should be defaulted")
	}
}

func TestDecodeAgentRecommendationConfidence(t *testing.T) {
	withScore := []byte(`{"kind":"agent_recommendation","user_id":"u1","agent_name":"coach","confidence":0.4}`)
	ev, err := event.Decode(withScore)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	rec := ev.(event.AgentRecommendation)
	if rec.Confidence == nil || *rec.Confidence != 0.4 {
		t.Errorf("confidence = %v, want 0.4", rec.Confidence)
	}

	unscored := []byte(`{"kind":"agent_recommendation","user_id":"u1","agent_name":"coach"}`)
	ev, err = event.Decode(unscored)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if rec := ev.(event.AgentRecommendation); rec.Confidence != nil {
		t.Errorf("absent confidence should stay nil, got %v", *rec.Confidence)
	}
}

func TestDecodeEveryKind(t *testing.T) {
	for _, k := range event.Kinds() {
		body := []byte(`{"kind":"` + string(k) + `","user_id":"u1"}`)
		ev, err := event.Decode(body)
		if err != nil {
			t.Errorf("kind %s: %v", k, err)
			continue
		}
		if ev.Kind() != k {
			t.Errorf("decoded kind = %s, want %s", ev.Kind(), k)
		}
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown kind", body: `{"kind":"coffee_spilled","user_id":"u1"}`},
		{name: "missing kind", body: `{"user_id":"u1"}`},
		{name: "invalid json", body: `{"kind":`},
		{name: "wrong field type", body: `{"kind":"income_received","amount":"lots"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := event.Decode([]byte(tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
