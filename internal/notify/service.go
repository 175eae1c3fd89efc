// Package notify evaluates domain events against threshold rules and owns
// the live notification list: creation, queries, read/dismiss transitions,
// and fan-out to local subscribers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/finpulse/finpulse/internal/category"
	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/event"
	"github.com/finpulse/finpulse/internal/metrics"
	"github.com/finpulse/finpulse/internal/rules"
)

// ErrNotFound is returned when a mutation targets an id the caller does not
// own or that does not exist.
var ErrNotFound = errors.New("notify: notification not found")

// Tag labels the lifecycle events broadcast to local subscribers.
type Tag string

const (
	TagCreated   Tag = "created"
	TagRead      Tag = "read"
	TagAllRead   Tag = "allRead"
	TagDismissed Tag = "dismissed"
	TagLoaded    Tag = "loaded"
)

// Listener receives every lifecycle event. Data is a Notification for
// created/read/dismissed and a []Notification for allRead/loaded.
type Listener func(tag Tag, data any)

// QueryOptions filters GetForUser. The zero value means: limit 50, include
// read, exclude dismissed, all categories and priorities.
type QueryOptions struct {
	Limit            int
	UnreadOnly       bool
	IncludeDismissed bool
	Category         Category
	Priority         Priority
}

// Service is the notification rule engine. It subscribes to the event bus,
// holds the current ruleset, and owns the in-memory notification list. All
// methods are safe for concurrent use.
type Service struct {
	rules atomic.Pointer[rules.Ruleset]
	store Store
	wr    *writer

	mu     sync.RWMutex
	items  []*Notification // most-recent-first
	byID   map[string]*Notification
	loaded map[string]bool // users hydrated from the store

	lmu       sync.RWMutex
	listeners []subscriber
	nextLID   int

	now func() time.Time
}

// New creates a Service and starts its background persistence writer.
func New(ctx context.Context, store Store, rs *rules.Ruleset, wc config.WriterConf) *Service {
	s := &Service{
		store:  store,
		byID:   make(map[string]*Notification),
		loaded: make(map[string]bool),
		now:    time.Now,
	}
	s.rules.Store(rs)
	s.wr = newWriter(ctx, wc.Workers, wc.QueueDepth, time.Duration(wc.PersistTimeoutMs)*time.Millisecond)
	return s
}

// SwapRules atomically replaces the ruleset (used on hot-reload).
func (s *Service) SwapRules(rs *rules.Ruleset) {
	s.rules.Store(rs)
}

// Rules returns the ruleset currently in effect.
func (s *Service) Rules() *rules.Ruleset {
	return s.rules.Load()
}

// Register subscribes the engine to every event kind on the bus.
func (s *Service) Register(bus *event.Bus) {
	for _, k := range event.Kinds() {
		bus.On(k, s.HandleEvent)
	}
}

// HandleEvent evaluates one event against the current rules and materializes
// at most one notification. Evaluation that fails a threshold terminates
// silently; that is policy, not an error.
func (s *Service) HandleEvent(ctx context.Context, ev event.Event) error {
	start := s.now()
	defer func() {
		metrics.EventProcessingDuration.Observe(float64(time.Since(start).Milliseconds()))
	}()

	var (
		draft Draft
		fired bool
	)
	switch e := ev.(type) {
	case event.ExpenseAdded:
		draft, fired = s.evalExpense(e)
	case event.IncomeReceived:
		draft, fired = s.evalIncome(e)
	case event.GoalUpdated:
		draft, fired = s.evalGoal(e)
	case event.AgentRecommendation:
		draft, fired = s.evalRecommendation(e)
	case event.AgentAction:
		draft, fired = s.evalAgentAction(e)
	case event.AnomalyDetected:
		draft, fired = s.evalAnomaly(e)
	default:
		return fmt.Errorf("notify: unhandled event kind %q", ev.Kind())
	}

	if !fired {
		metrics.EvaluationsSuppressed.WithLabelValues(string(ev.Kind())).Inc()
		return nil
	}
	s.Create(ctx, draft)
	return nil
}

// evalExpense applies the overspending thresholds. Without a budget there is
// nothing to compare against, so the event is a no-op.
func (s *Service) evalExpense(e event.ExpenseAdded) (Draft, bool) {
	rs := s.rules.Load()
	if e.BudgetAmount <= 0 {
		return Draft{}, false
	}
	spentPct := e.MonthlyTotal / e.BudgetAmount * 100

	meta := map[string]any{
		"amount":           e.Amount,
		"category":         category.Normalize(e.Category),
		"monthly_total":    e.MonthlyTotal,
		"budget_amount":    e.BudgetAmount,
		"spent_percentage": spentPct,
		"entry_method":     e.EntryMethod,
	}

	// Descending severity so the stronger threshold wins.
	switch {
	case spentPct >= rs.CriticalSpendingThreshold*100:
		return overspendingDraft(e.UserID, e.MonthlyTotal, e.BudgetAmount, spentPct, meta), true
	case spentPct >= rs.OverspendingThreshold*100:
		return budgetWarningDraft(e.UserID, e.MonthlyTotal, e.BudgetAmount, spentPct, meta), true
	}
	return Draft{}, false
}

// evalIncome is informational; income always notifies.
func (s *Service) evalIncome(e event.IncomeReceived) (Draft, bool) {
	meta := map[string]any{"amount": e.Amount, "source": e.Source}
	return incomeDraft(e.UserID, e.Amount, e.Source, meta), true
}

// evalGoal reports the lowest milestone this update newly crossed, then
// stops. An update that jumps several milestones surfaces only the lowest;
// the higher ones are never retroactively reported.
func (s *Service) evalGoal(e event.GoalUpdated) (Draft, bool) {
	rs := s.rules.Load()
	if e.TargetAmount <= 0 {
		return Draft{}, false
	}
	progress := e.CurrentAmount / e.TargetAmount * 100
	previous := e.PreviousAmount / e.TargetAmount * 100

	for _, m := range rs.GoalMilestones {
		if progress >= m*100 && previous < m*100 {
			meta := map[string]any{
				"goal_name":       e.GoalName,
				"milestone":       m,
				"current_amount":  e.CurrentAmount,
				"target_amount":   e.TargetAmount,
				"previous_amount": e.PreviousAmount,
			}
			return goalDraft(e.UserID, e.GoalName, m, e.CurrentAmount, e.TargetAmount, meta), true
		}
	}
	return Draft{}, false
}

func (s *Service) evalRecommendation(e event.AgentRecommendation) (Draft, bool) {
	rs := s.rules.Load()
	if e.Confidence != nil && *e.Confidence < rs.InsightRelevanceThreshold {
		return Draft{}, false
	}
	meta := map[string]any{"agent_name": e.AgentName}
	if e.Confidence != nil {
		meta["confidence"] = *e.Confidence
	}
	return recommendationDraft(e.UserID, e.AgentName, e.Title, e.Message, meta), true
}

func (s *Service) evalAgentAction(e event.AgentAction) (Draft, bool) {
	var prio Priority
	switch e.ActionType {
	case "alert":
		prio = PriorityHigh
	case "warning":
		prio = PriorityMedium
	default:
		prio = PriorityLow
	}
	meta := map[string]any{"agent_name": e.AgentName, "action_type": e.ActionType}
	return agentActionDraft(e.UserID, e.Title, e.Message, prio, meta), true
}

func (s *Service) evalAnomaly(e event.AnomalyDetected) (Draft, bool) {
	rs := s.rules.Load()
	if e.Confidence < rs.AnomalyConfidenceThreshold {
		return Draft{}, false
	}
	prio := PriorityMedium
	if e.Confidence > 0.9 {
		prio = PriorityHigh
	}
	meta := map[string]any{
		"anomaly_type": e.Type,
		"confidence":   e.Confidence,
	}
	for k, v := range e.Details {
		meta[k] = v
	}
	return anomalyDraft(e.UserID, e.Message, prio, meta), true
}

// Create materializes a notification from a draft: assigns identity, prepends
// it to the in-memory list, broadcasts "created", and hands persistence to
// the background writer. Creation succeeds once the record is visible in
// memory; the persistence outcome is invisible to the caller.
func (s *Service) Create(_ context.Context, d Draft) Notification {
	n := &Notification{
		ID:          uuid.New().String(),
		UserID:      d.UserID,
		Type:        d.Type,
		Priority:    d.Priority,
		Category:    d.Category,
		Title:       d.Title,
		Message:     d.Message,
		ActionLabel: d.ActionLabel,
		ActionURL:   d.ActionURL,
		Metadata:    d.Metadata,
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	s.items = append([]*Notification{n}, s.items...)
	s.byID[n.ID] = n
	snapshot := *n
	s.mu.Unlock()

	metrics.NotificationsCreated.WithLabelValues(string(n.Type), string(n.Priority)).Inc()
	s.broadcast(TagCreated, snapshot)

	s.wr.submit("create", func(ctx context.Context) error {
		return s.store.Create(ctx, &snapshot)
	})
	return snapshot
}

// GetForUser returns the user's notifications sorted by priority rank, then
// newest first within equal priority. Pure read, no side effects.
func (s *Service) GetForUser(userID string, opts QueryOptions) []Notification {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	matched := make([]Notification, 0, 16)
	for _, n := range s.items {
		if n.UserID != userID {
			continue
		}
		if opts.UnreadOnly && n.Read {
			continue
		}
		if !opts.IncludeDismissed && n.Dismissed {
			continue
		}
		if opts.Category != "" && n.Category != opts.Category {
			continue
		}
		if opts.Priority != "" && n.Priority != opts.Priority {
			continue
		}
		matched = append(matched, *n)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := matched[i].Priority.Rank(), matched[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// UnreadCount counts the user's notifications that are neither read nor
// dismissed.
func (s *Service) UnreadCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.items {
		if n.UserID == userID && !n.Read && !n.Dismissed {
			count++
		}
	}
	return count
}

// MarkAsRead flips a notification to read. Idempotent: a second call is a
// no-op with no broadcast and no store write.
func (s *Service) MarkAsRead(_ context.Context, id, userID string) error {
	s.mu.Lock()
	n, ok := s.byID[id]
	if !ok || n.UserID != userID {
		s.mu.Unlock()
		return ErrNotFound
	}
	if n.Read {
		s.mu.Unlock()
		return nil
	}
	at := s.now()
	n.Read = true
	n.ReadAt = &at
	snapshot := *n
	s.mu.Unlock()

	s.broadcast(TagRead, snapshot)
	s.wr.submit("update", func(ctx context.Context) error {
		return s.store.Update(ctx, id, ReadFields(at))
	})
	return nil
}

// MarkAllAsRead applies the read transition to every currently-unread
// notification the user owns, broadcasting a single allRead event carrying
// the affected set. Returns how many were affected.
func (s *Service) MarkAllAsRead(_ context.Context, userID string) int {
	at := s.now()

	s.mu.Lock()
	var affected []Notification
	for _, n := range s.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			n.ReadAt = &at
			affected = append(affected, *n)
		}
	}
	s.mu.Unlock()

	if len(affected) == 0 {
		return 0
	}
	s.broadcast(TagAllRead, affected)
	s.wr.submit("bulk_update", func(ctx context.Context) error {
		return s.store.BulkUpdate(ctx, userID, ReadFields(at))
	})
	return len(affected)
}

// Dismiss marks a notification dismissed. Unlike MarkAsRead it is not
// guarded: re-dismissing refreshes the timestamp and re-fires the broadcast.
func (s *Service) Dismiss(_ context.Context, id, userID string) error {
	s.mu.Lock()
	n, ok := s.byID[id]
	if !ok || n.UserID != userID {
		s.mu.Unlock()
		return ErrNotFound
	}
	at := s.now()
	n.Dismissed = true
	n.DismissedAt = &at
	snapshot := *n
	s.mu.Unlock()

	s.broadcast(TagDismissed, snapshot)
	s.wr.submit("update", func(ctx context.Context) error {
		return s.store.Update(ctx, id, DismissFields(at))
	})
	return nil
}

// subscriber pairs a listener with its registration id so unsubscribe can
// remove exactly one entry.
type subscriber struct {
	id int
	fn Listener
}

// Subscribe registers a listener for lifecycle events and returns its
// unsubscribe function. Listeners are invoked in registration order; one
// that panics is logged and skipped, never blocking delivery to the others.
func (s *Service) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextLID
	s.nextLID++
	s.listeners = append(s.listeners, subscriber{id: id, fn: fn})
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				break
			}
		}
		s.lmu.Unlock()
	}
}

// EnsureLoaded hydrates the user's persisted notifications into memory, once
// per process. Records created in-process win over their stored copies.
func (s *Service) EnsureLoaded(ctx context.Context, userID string) error {
	s.mu.RLock()
	done := s.loaded[userID]
	s.mu.RUnlock()
	if done {
		return nil
	}

	records, err := s.store.LoadAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("load notifications for %s: %w", userID, err)
	}

	s.mu.Lock()
	if s.loaded[userID] {
		s.mu.Unlock()
		return nil
	}
	loaded := make([]Notification, 0, len(records))
	for _, r := range records {
		if _, exists := s.byID[r.ID]; exists {
			continue
		}
		s.byID[r.ID] = r
		s.items = append(s.items, r)
		loaded = append(loaded, *r)
	}
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].CreatedAt.After(s.items[j].CreatedAt)
	})
	s.loaded[userID] = true
	s.mu.Unlock()

	if len(loaded) > 0 {
		s.broadcast(TagLoaded, loaded)
	}
	return nil
}

// Shutdown drains the persistence writer.
func (s *Service) Shutdown() {
	s.wr.drain()
}

// WriterUtilization reports persistence queue pressure (0–1) for readiness
// probes.
func (s *Service) WriterUtilization() float64 {
	return s.wr.utilization()
}

// broadcast delivers a lifecycle event to every subscriber, isolating each
// one: a panicking listener is logged and the rest still get the event.
func (s *Service) broadcast(tag Tag, data any) {
	s.lmu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		listeners = append(listeners, sub.fn)
	}
	s.lmu.RUnlock()

	for _, fn := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					metrics.ListenerErrors.Inc()
					slog.Error("notification listener panicked", "tag", tag, "err", r)
				}
			}()
			fn(tag, data)
		}()
	}
}
