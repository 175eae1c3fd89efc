package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/finpulse/finpulse/internal/notify"
	"github.com/finpulse/finpulse/internal/storage"
)

func newStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(id, userID string, createdAt time.Time) *notify.Notification {
	return &notify.Notification{
		ID:          id,
		UserID:      userID,
		Type:        notify.TypeBudgetWarning,
		Priority:    notify.PriorityHigh,
		Category:    notify.CategorySpending,
		Title:       "⚠️ Budget Warning",
		Message:     "You've used 85.0% of your monthly budget.",
		ActionLabel: "Review Budget",
		ActionURL:   "/budget",
		Metadata:    map[string]any{"spent_percentage": 85.0, "entry_method": "manual"},
		CreatedAt:   createdAt,
	}
}

func TestCreateAndLoadAll(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := s.Create(ctx, sample("n1", "u1", now.Add(-time.Minute))); err != nil {
		t.Fatalf("Create n1: %v", err)
	}
	if err := s.Create(ctx, sample("n2", "u1", now)); err != nil {
		t.Fatalf("Create n2: %v", err)
	}
	if err := s.Create(ctx, sample("n3", "u2", now)); err != nil {
		t.Fatalf("Create n3: %v", err)
	}

	got, err := s.LoadAll(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d notifications, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "n2" || got[1].ID != "n1" {
		t.Errorf("order = [%s %s], want [n2 n1]", got[0].ID, got[1].ID)
	}
	n := got[0]
	if n.Type != notify.TypeBudgetWarning || n.Priority != notify.PriorityHigh || n.Category != notify.CategorySpending {
		t.Errorf("enums did not round-trip: %+v", n)
	}
	if n.Read || n.Dismissed || n.ReadAt != nil || n.DismissedAt != nil {
		t.Errorf("fresh record should be unread and undismissed: %+v", n)
	}
	if v, _ := n.Metadata["entry_method"].(string); v != "manual" {
		t.Errorf("metadata did not round-trip: %v", n.Metadata)
	}
}

func TestCreateIsIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	n := sample("n1", "u1", time.Now().UTC())

	if err := s.Create(ctx, n); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if err := s.Create(ctx, n); err != nil {
		t.Fatalf("replayed Create should not fail: %v", err)
	}
	got, err := s.LoadAll(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("replay created a duplicate row: %d", len(got))
	}
}

func TestUpdate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, sample("n1", "u1", time.Now().UTC())); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := s.Update(ctx, "n1", notify.ReadFields(at)); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.LoadAll(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if !got[0].Read || got[0].ReadAt == nil || !got[0].ReadAt.Equal(at) {
		t.Errorf("read transition did not persist: %+v", got[0])
	}
	if got[0].Dismissed {
		t.Error("update touched an unrelated column")
	}

	if err := s.Update(ctx, "missing", notify.ReadFields(at)); err == nil {
		t.Error("updating a missing row should error")
	}
}

func TestBulkUpdateOnlyTouchesUnread(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	earlier := now.Add(-time.Hour)
	already := sample("n1", "u1", now.Add(-2*time.Hour))
	already.Read = true
	already.ReadAt = &earlier
	if err := s.Create(ctx, already); err != nil {
		t.Fatalf("Create n1: %v", err)
	}
	if err := s.Create(ctx, sample("n2", "u1", now)); err != nil {
		t.Fatalf("Create n2: %v", err)
	}

	if err := s.BulkUpdate(ctx, "u1", notify.ReadFields(now)); err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}

	got, err := s.LoadAll(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for _, n := range got {
		switch n.ID {
		case "n1":
			if !n.ReadAt.Equal(earlier) {
				t.Errorf("bulk update overwrote an earlier read_at: %v", n.ReadAt)
			}
		case "n2":
			if !n.Read || !n.ReadAt.Equal(now) {
				t.Errorf("bulk update missed the unread row: %+v", n)
			}
		}
	}
}

func TestDismissPersists(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, sample("n1", "u1", time.Now().UTC())); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := s.Update(ctx, "n1", notify.DismissFields(at)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.LoadAll(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if !got[0].Dismissed || got[0].DismissedAt == nil || !got[0].DismissedAt.Equal(at) {
		t.Errorf("dismiss transition did not persist: %+v", got[0])
	}
	if got[0].Read {
		t.Error("dismiss touched the read column")
	}
}
