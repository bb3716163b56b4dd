package store

import (
	"context"
	"fmt"

	"github.com/roach88/authflow/internal/engine"
)

// Record is one committed transition with its states rendered as variant
// paths.
type Record struct {
	Seq     int64    `json:"seq"`
	Event   string   `json:"event"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Actions []string `json:"actions"`
}

// RecordOf renders t with describe.
func RecordOf[S any](t engine.Transition[S], describe func(S) string) Record {
	actions := t.Actions
	if actions == nil {
		actions = []string{}
	}
	return Record{
		Seq:     t.Seq,
		Event:   t.Event.Type(),
		From:    describe(t.From),
		To:      describe(t.To),
		Actions: actions,
	}
}

// AppendTransition inserts rec into the transition log.
// Uses ON CONFLICT(seq) DO NOTHING for idempotency - duplicate seqs are silently ignored.
func (s *Store) AppendTransition(ctx context.Context, rec Record) error {
	actionsJSON, err := marshalActions(rec.Actions)
	if err != nil {
		return fmt.Errorf("append transition: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transitions (seq, event, from_state, to_state, actions)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, rec.Seq, rec.Event, rec.From, rec.To, actionsJSON)
	if err != nil {
		return fmt.Errorf("append transition: %w", err)
	}
	return nil
}

// ReadTransitions returns the log ordered by seq. An empty event matches
// every event type.
//
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ReadTransitions(ctx context.Context, event string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, event, from_state, to_state, actions
		FROM transitions
		WHERE ? = '' OR event = ?
		ORDER BY seq ASC
	`, event, event)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec         Record
			actionsJSON string
		)
		if err := rows.Scan(&rec.Seq, &rec.Event, &rec.From, &rec.To, &actionsJSON); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if rec.Actions, err = unmarshalActions(actionsJSON); err != nil {
			return nil, fmt.Errorf("scan transition %d: %w", rec.Seq, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return records, nil
}

// LastSeq returns the highest recorded seq, or 0 for an empty log. A resumed
// engine continues after it with engine.NewClockAt.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM transitions`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}
