package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/MikeSquared-Agency/mimic/internal/corpus"
	"github.com/MikeSquared-Agency/mimic/internal/writer"
)

// CreateRun records the start of a corpus build.
func (s *Store) CreateRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO corpus_runs (id, started_at)
		VALUES ($1, $2)`,
		runID, startedAt,
	)
	if err != nil {
		return fmt.Errorf("insert corpus_run: %w", err)
	}
	return nil
}

// FinishRun records the final counts for a corpus build.
func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID, finishedAt time.Time, files, examples, rejected int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE corpus_runs
		SET finished_at = $2, files = $3, examples = $4, rejected = $5
		WHERE id = $1`,
		runID, finishedAt, files, examples, rejected,
	)
	if err != nil {
		return fmt.Errorf("update corpus_run: %w", err)
	}
	return nil
}

// WriteExample persists one packed example.
func (s *Store) WriteExample(ctx context.Context, runID uuid.UUID, rec writer.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO corpus_examples (run_id, chat_name, seq, start_line, tokens, over_budget, text)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		runID, rec.ChatName, rec.Seq, rec.StartLine, rec.Tokens, rec.OverBudget, rec.Text,
	)
	if err != nil {
		return fmt.Errorf("insert corpus_example: %w", err)
	}
	return nil
}

// WriteDiagnostic persists one reportable packing condition.
func (s *Store) WriteDiagnostic(ctx context.Context, runID uuid.UUID, d corpus.Diagnostic) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO corpus_diagnostics (run_id, chat_name, kind, line, detail)
		VALUES ($1, $2, $3, $4, $5)`,
		runID, d.Conversation, d.Kind, d.Line, d.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert corpus_diagnostic: %w", err)
	}
	return nil
}
