package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"patientlink/internal/correction"
	"patientlink/internal/logging"
)

// Correction is one archived batch of reviewer operations.
type Correction struct {
	ID              int64                  `json:"id"`
	RunID           string                 `json:"run_id"`
	CreatedAt       string                 `json:"created_at"`
	Revision        int                    `json:"revision"`
	UserInstruction string                 `json:"user_instruction,omitempty"`
	Operations      []correction.Operation `json:"operations"`
}

// SaveCorrection records a correction batch for runID and replaces the run's
// candidates with the corrected list. The run revision increases by one.
func (s *Store) SaveCorrection(ctx context.Context, runID string, res *correction.Result) (*Correction, error) {
	if res == nil {
		return nil, errors.New("save correction: result is nil")
	}
	opsJSON, err := json.Marshal(res.OperationsApplied)
	if err != nil {
		return nil, fmt.Errorf("marshal operations: %w", err)
	}

	saved := &Correction{
		RunID:           runID,
		UserInstruction: res.UserInstruction,
		Operations:      res.OperationsApplied,
	}
	err = s.withWriteLock(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var (
			payload  []byte
			revision int
		)
		err = tx.QueryRowContext(ctx, `SELECT payload, revision FROM runs WHERE id = ?`, runID).Scan(&payload, &revision)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		if err != nil {
			return err
		}

		result, err := s.decodePayload(payload)
		if err != nil {
			return err
		}
		result.Candidates = res.Candidates
		updated, err := s.encodePayload(result)
		if err != nil {
			return err
		}

		live, quarantined := countLive(res.Candidates)
		now := s.timestamp()
		saved.CreatedAt = now
		saved.Revision = revision + 1

		if _, err := tx.ExecContext(ctx,
			`UPDATE runs SET payload = ?, revision = ?, updated_at = ?,
                candidate_count = ?, quarantined_count = ?
             WHERE id = ?`,
			updated, saved.Revision, now, live, quarantined, runID,
		); err != nil {
			return err
		}

		insert, err := tx.ExecContext(ctx,
			`INSERT INTO corrections (run_id, created_at, revision, user_instruction, operations_json)
             VALUES (?, ?, ?, ?, ?)`,
			runID, now, saved.Revision, nullableString(res.UserInstruction), string(opsJSON),
		)
		if err != nil {
			return err
		}
		if saved.ID, err = insert.LastInsertId(); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, fmt.Errorf("save correction: %w", err)
	}

	s.logger.Info("correction archived",
		logging.String(logging.FieldRunID, runID),
		logging.Int("revision", saved.Revision),
		logging.Int("operations", len(saved.Operations)),
	)
	return saved, nil
}

// Corrections lists the corrections of runID in the order they were saved.
func (s *Store) Corrections(ctx context.Context, runID string) ([]Correction, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, created_at, revision, user_instruction, operations_json
         FROM corrections WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	defer rows.Close()

	var out []Correction
	for rows.Next() {
		var (
			c           Correction
			instruction sql.NullString
			opsJSON     string
		)
		if err := rows.Scan(&c.ID, &c.RunID, &c.CreatedAt, &c.Revision, &instruction, &opsJSON); err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		c.UserInstruction = instruction.String
		if err := json.Unmarshal([]byte(opsJSON), &c.Operations); err != nil {
			return nil, fmt.Errorf("decode correction %d operations: %w", c.ID, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corrections: %w", err)
	}
	return out, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
