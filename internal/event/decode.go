package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Decode parses a JSON event envelope of the form
//
//	{"kind": "expense_added", "user_id": "u1", "amount": 42.5, ...}
//
// into the concrete event type for its kind.
func Decode(data []byte) (Event, error) {
	var probe struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch probe.Kind {
	case KindExpenseAdded:
		var e ExpenseAdded
		if err := decodePayload(data, probe.Kind, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindIncomeReceived:
		var e IncomeReceived
		if err := decodePayload(data, probe.Kind, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindGoalUpdated:
		var e GoalUpdated
		if err := decodePayload(data, probe.Kind, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindAgentRecommendation:
		var e AgentRecommendation
		if err := decodePayload(data, probe.Kind, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindAgentAction:
		var e AgentAction
		if err := decodePayload(data, probe.Kind, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindAnomalyDetected:
		var e AnomalyDetected
		if err := decodePayload(data, probe.Kind, &e); err != nil {
			return nil, err
		}
		return e, nil
	case "":
		return nil, fmt.Errorf("event kind is required")
	default:
		return nil, fmt.Errorf("unknown event kind %q", probe.Kind)
	}
}

func (m *Meta) meta() *Meta { return m }

// decodePayload unmarshals the envelope into the concrete event and fills in
// the identity defaults producers are allowed to omit.
func decodePayload(data []byte, kind Kind, v interface{ meta() *Meta }) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s event: %w", kind, err)
	}
	m := v.meta()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.At.IsZero() {
		m.At = time.Now()
	}
	return nil
}
