package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/MikeSquared-Agency/mimic/internal/corpus"
)

// FileResult summarizes one successfully processed export.
type FileResult struct {
	Path             string `json:"path"`
	ChatName         string `json:"chat_name"`
	Format           string `json:"format"`
	Messages         int    `json:"messages"`
	Turns            int    `json:"turns"`
	Examples         int    `json:"examples"`
	DiscardedNotices int    `json:"discarded_notices"`
	DroppedMessages  int    `json:"dropped_messages"`
	FormatMismatches int    `json:"format_mismatches"`
	OverBudget       int    `json:"over_budget"`
}

// FileError names a rejected file and why it was rejected.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report is the full accounting of one corpus build. Every rejected file is
// named and every discarded line is counted somewhere in here.
type Report struct {
	RunID       uuid.UUID           `json:"run_id"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
	MaxTokens   int                 `json:"max_tokens"`
	Files       []FileResult        `json:"files"`
	Rejected    []FileError         `json:"rejected,omitempty"`
	Duplicates  []string            `json:"duplicates,omitempty"`
	Examples    int                 `json:"examples"`
	OverBudget  int                 `json:"over_budget"`
	Diagnostics []corpus.Diagnostic `json:"diagnostics,omitempty"`
}

// Save persists the report next to the corpus outputs.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Summary renders the human-readable block printed after a build.
func (r *Report) Summary() string {
	var sb strings.Builder
	sb.WriteString("\n=== Corpus Build Summary ===\n")
	fmt.Fprintf(&sb, "Files processed: %d\n", len(r.Files))
	fmt.Fprintf(&sb, "Examples written: %d\n", r.Examples)
	fmt.Fprintf(&sb, "Over-budget turns: %d\n", r.OverBudget)
	notices := 0
	for _, f := range r.Files {
		notices += f.DiscardedNotices
	}
	fmt.Fprintf(&sb, "Discarded notice lines: %d\n", notices)
	if len(r.Duplicates) > 0 {
		fmt.Fprintf(&sb, "Duplicate exports skipped: %d\n", len(r.Duplicates))
	}
	if len(r.Rejected) > 0 {
		fmt.Fprintf(&sb, "Rejected files: %d\n", len(r.Rejected))
		for _, f := range r.Rejected {
			fmt.Fprintf(&sb, "  - %s: %s\n", f.Path, f.Error)
		}
	}
	return sb.String()
}
