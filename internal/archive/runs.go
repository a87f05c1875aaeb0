package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"patientlink/internal/grouping"
	"patientlink/internal/logging"
)

// ErrRunNotFound indicates an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is the indexed part of an archived run.
type RunSummary struct {
	ID               string `json:"id"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
	Strategy         string `json:"strategy"`
	RawItemCount     int    `json:"raw_item_count"`
	CandidateCount   int    `json:"candidate_count"`
	QuarantinedCount int    `json:"quarantined_count"`
	Revision         int    `json:"revision"`
}

// Run is an archived grouping result. Result holds the current candidate
// list, which corrections replace.
type Run struct {
	RunSummary
	Result *grouping.Result `json:"result"`
}

func countLive(candidates []*grouping.Candidate) (live, quarantined int) {
	for _, c := range candidates {
		if c == nil || !c.Live() {
			continue
		}
		live++
		if c.Quarantined() {
			quarantined++
		}
	}
	return live, quarantined
}

func (s *Store) encodePayload(res *grouping.Result) ([]byte, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal run payload: %w", err)
	}
	return s.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

func (s *Store) decodePayload(blob []byte) (*grouping.Result, error) {
	raw, err := s.decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress run payload: %w", err)
	}
	var res grouping.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode run payload: %w", err)
	}
	return &res, nil
}

// SaveRun archives a grouping result under a new run id.
func (s *Store) SaveRun(ctx context.Context, res *grouping.Result) (*RunSummary, error) {
	if res == nil {
		return nil, errors.New("save run: result is nil")
	}
	payload, err := s.encodePayload(res)
	if err != nil {
		return nil, err
	}

	live, quarantined := countLive(res.Candidates)
	now := s.timestamp()
	summary := &RunSummary{
		ID:               uuid.NewString(),
		CreatedAt:        now,
		UpdatedAt:        now,
		Strategy:         string(res.Config.Strategy()),
		RawItemCount:     len(res.RawItems),
		CandidateCount:   live,
		QuarantinedCount: quarantined,
		Revision:         1,
	}

	err = s.withWriteLock(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (
                id, created_at, updated_at, strategy, raw_item_count,
                candidate_count, quarantined_count, revision, payload
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			summary.ID, summary.CreatedAt, summary.UpdatedAt, summary.Strategy,
			summary.RawItemCount, summary.CandidateCount, summary.QuarantinedCount,
			summary.Revision, payload,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	s.logger.Info("run archived",
		logging.String(logging.FieldRunID, summary.ID),
		logging.String(logging.FieldStrategy, summary.Strategy),
		logging.Int("candidates", summary.CandidateCount),
		logging.Int("payload_bytes", len(payload)),
	)
	return summary, nil
}

const runColumns = `id, created_at, updated_at, strategy, raw_item_count,
    candidate_count, quarantined_count, revision`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner, extra ...any) (*RunSummary, error) {
	var r RunSummary
	dest := []any{
		&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.Strategy, &r.RawItemCount,
		&r.CandidateCount, &r.QuarantinedCount, &r.Revision,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRun loads a run with its decoded result.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	var payload []byte
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+`, payload FROM runs WHERE id = ?`, id)
	summary, err := scanSummary(row, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	res, err := s.decodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return &Run{RunSummary: *summary, Result: res}, nil
}

// ListRuns returns run summaries, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
