// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielhkuo/roundvote/models"
)

// DefaultHistoryLimit caps ListOutcomes when no limit is given
const DefaultHistoryLimit = 50

// Journal appends decided rounds for operators. The engine never reads
// round state back from it.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// RecordOutcome stores one decided round. Recording the same round twice
// is a no-op.
func (j *Journal) RecordOutcome(ctx context.Context, r models.OutcomeRecord) error {
	payload, err := json.Marshal(r.Outcome)
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO round_result (id, session_id, round_id, mode, kind, winner, total_votes, payload, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (round_id) DO NOTHING
	`, r.ID, r.SessionID, r.RoundID, string(r.Mode), string(r.Kind), r.Winner, r.TotalVotes, string(payload), r.DecidedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns the most recent results of a session, newest first
func (j *Journal) ListOutcomes(ctx context.Context, sessionID string, limit int) ([]models.OutcomeRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, round_id, mode, kind, winner, total_votes, payload, decided_at
		FROM round_result
		WHERE session_id = $1
		ORDER BY decided_at DESC, id
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	results := []models.OutcomeRecord{}
	for rows.Next() {
		var (
			r         models.OutcomeRecord
			mode      string
			kind      string
			winner    sql.NullString
			payload   string
			decidedAt time.Time
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.RoundID, &mode, &kind, &winner, &r.TotalVotes, &payload, &decidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &r.Outcome); err != nil {
			return nil, fmt.Errorf("failed to decode outcome %s: %w", r.ID, err)
		}

		r.Mode = models.Mode(mode)
		r.Kind = models.OutcomeKind(kind)
		r.DecidedAt = decidedAt.UTC()
		if winner.Valid {
			w := winner.String
			r.Winner = &w
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outcomes: %w", err)
	}

	return results, nil
}
