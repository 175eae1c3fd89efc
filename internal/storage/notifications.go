package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/finpulse/finpulse/internal/notify"
)

// Create inserts a notification row. Replaying the same record is harmless:
// the insert is keyed on id and converges via upsert.
func (s *SQLiteStore) Create(ctx context.Context, n *notify.Notification) error {
	meta, err := marshalMetadata(n.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", n.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications
			(id, user_id, type, priority, category, title, message,
			 action_label, action_url, metadata, created_at,
			 read, read_at, dismissed, dismissed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			read = excluded.read,
			read_at = excluded.read_at,
			dismissed = excluded.dismissed,
			dismissed_at = excluded.dismissed_at`,
		n.ID, n.UserID, string(n.Type), string(n.Priority), string(n.Category),
		n.Title, n.Message, n.ActionLabel, n.ActionURL, meta, n.CreatedAt,
		n.Read, nullableTime(n.ReadAt), n.Dismissed, nullableTime(n.DismissedAt),
	)
	if err != nil {
		return fmt.Errorf("insert notification %s: %w", n.ID, err)
	}
	return nil
}

// Update applies a partial update to one row. Nil fields are untouched.
func (s *SQLiteStore) Update(ctx context.Context, id string, fields notify.UpdateFields) error {
	set, args := buildSet(fields)
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update notification %s: %w", id, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("update notification %s: no such row", id)
	}
	return nil
}

// BulkUpdate applies a partial update to all of a user's rows. When the
// update sets read=true it only touches unread rows, so earlier read_at
// values survive a replay.
func (s *SQLiteStore) BulkUpdate(ctx context.Context, userID string, fields notify.UpdateFields) error {
	set, args := buildSet(fields)
	if len(set) == 0 {
		return nil
	}
	where := `user_id = ?`
	args = append(args, userID)
	if fields.Read != nil && *fields.Read {
		where += ` AND read = 0`
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET `+strings.Join(set, ", ")+` WHERE `+where, args...)
	if err != nil {
		return fmt.Errorf("bulk update notifications for %s: %w", userID, err)
	}
	return nil
}

// LoadAll returns every stored notification for the user, newest first.
func (s *SQLiteStore) LoadAll(ctx context.Context, userID string) ([]*notify.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, priority, category, title, message,
		       action_label, action_url, metadata, created_at,
		       read, read_at, dismissed, dismissed_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("load notifications for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []*notify.Notification
	for rows.Next() {
		var (
			n                   notify.Notification
			typ, prio, cat      string
			actionLabel, actURL sql.NullString
			meta                sql.NullString
			readAt, dismissedAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &prio, &cat, &n.Title, &n.Message,
			&actionLabel, &actURL, &meta, &n.CreatedAt,
			&n.Read, &readAt, &n.Dismissed, &dismissedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = notify.Type(typ)
		n.Priority = notify.Priority(prio)
		n.Category = notify.Category(cat)
		n.ActionLabel = actionLabel.String
		n.ActionURL = actURL.String
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &n.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", n.ID, err)
			}
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		if dismissedAt.Valid {
			t := dismissedAt.Time
			n.DismissedAt = &t
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// buildSet turns UpdateFields into SET fragments and their arguments.
func buildSet(fields notify.UpdateFields) ([]string, []any) {
	var set []string
	var args []any
	if fields.Read != nil {
		set = append(set, "read = ?")
		args = append(args, *fields.Read)
	}
	if fields.ReadAt != nil {
		set = append(set, "read_at = ?")
		args = append(args, *fields.ReadAt)
	}
	if fields.Dismissed != nil {
		set = append(set, "dismissed = ?")
		args = append(args, *fields.Dismissed)
	}
	if fields.DismissedAt != nil {
		set = append(set, "dismissed_at = ?")
		args = append(args, *fields.DismissedAt)
	}
	return set, args
}

func marshalMetadata(m map[string]any) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
