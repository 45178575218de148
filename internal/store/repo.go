package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/abhisek/lexmatch/internal/game"
	"github.com/abhisek/lexmatch/internal/memcurve"
)

// HistoryRepo manages persisted match-game session results.
type HistoryRepo interface {
	// Append stores a finished session result for a learner.
	Append(ctx context.Context, learnerID string, res *game.Result) error

	// List returns a learner's session results, most recent first.
	// limit <= 0 returns all results.
	List(ctx context.Context, learnerID string, limit int) ([]*game.Result, error)

	// Prune deletes all but the N most recent results for a learner.
	Prune(ctx context.Context, learnerID string, keep int) error
}

// SnapshotRepo manages persisted memory-curve snapshots.
type SnapshotRepo interface {
	// Save stores a learner's memory snapshot.
	Save(ctx context.Context, snap *memcurve.Snapshot) error

	// Latest returns the most recent snapshot for a learner, or nil if
	// none exist.
	Latest(ctx context.Context, learnerID string) (*memcurve.Snapshot, error)

	// Prune deletes all but the N most recent snapshots for a learner.
	Prune(ctx context.Context, learnerID string, keep int) error
}

type historyRepo struct {
	db *sql.DB
}

func (r *historyRepo) Append(ctx context.Context, learnerID string, res *game.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal session result: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO session_results (learner_id, session_id, recorded_at, payload)
		 VALUES (?, ?, ?, ?)`,
		learnerID, res.SessionID, res.Timestamp.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("insert session result: %w", err)
	}
	return nil
}

func (r *historyRepo) List(ctx context.Context, learnerID string, limit int) ([]*game.Result, error) {
	q := `SELECT payload FROM session_results WHERE learner_id = ? ORDER BY id DESC`
	args := []any{learnerID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query session results: %w", err)
	}
	defer rows.Close()

	var results []*game.Result
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan session result: %w", err)
		}
		var res game.Result
		if err := json.Unmarshal([]byte(payload), &res); err != nil {
			return nil, fmt.Errorf("unmarshal session result: %w", err)
		}
		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session results: %w", err)
	}
	return results, nil
}

func (r *historyRepo) Prune(ctx context.Context, learnerID string, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM session_results WHERE learner_id = ? AND id NOT IN (
			SELECT id FROM session_results WHERE learner_id = ?
			ORDER BY id DESC LIMIT ?
		 )`,
		learnerID, learnerID, keep)
	if err != nil {
		return fmt.Errorf("prune session results: %w", err)
	}
	return nil
}

type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, snap *memcurve.Snapshot) error {
	payload, err := memcurve.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO memory_snapshots (learner_id, saved_at, payload)
		 VALUES (?, ?, ?)`,
		snap.LearnerID, snap.SavedAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, learnerID string) (*memcurve.Snapshot, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM memory_snapshots WHERE learner_id = ?
		 ORDER BY id DESC LIMIT 1`,
		learnerID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	snap, err := memcurve.UnmarshalSnapshot([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, learnerID string, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM memory_snapshots WHERE learner_id = ? AND id NOT IN (
			SELECT id FROM memory_snapshots WHERE learner_id = ?
			ORDER BY id DESC LIMIT ?
		 )`,
		learnerID, learnerID, keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// ResultWriter adapts a HistoryRepo to the game manager's persistence
// hook.
type ResultWriter struct {
	Repo HistoryRepo
}

// AppendResult implements game.HistoryWriter.
func (w *ResultWriter) AppendResult(learnerID string, res *game.Result) error {
	return w.Repo.Append(context.Background(), learnerID, res)
}

var _ game.HistoryWriter = (*ResultWriter)(nil)
