package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/MikeSquared-Agency/mimic/internal/corpus"
	"github.com/MikeSquared-Agency/mimic/internal/events"
	"github.com/MikeSquared-Agency/mimic/internal/store"
	"github.com/MikeSquared-Agency/mimic/internal/transcript"
	"github.com/MikeSquared-Agency/mimic/internal/writer"
)

// Output file names, matching what downstream fine-tuning jobs expect.
const (
	csvName    = "whatsapp_chats_formatted.csv"
	jsonlName  = "whatsapp_chats_formatted.jsonl"
	reportName = "run-report.json"
)

// Config holds the corpus build configuration.
type Config struct {
	DataDir   string
	OutputDir string
	MaxTokens int
	Filters   []string
	SenderMap map[string]string
}

// Runner orchestrates a corpus build across all exports in the data dir.
// Files are independent; one malformed file is reported and skipped while the
// rest of the batch continues.
type Runner struct {
	cfg     Config
	counter corpus.TokenCounter
	store   *store.Store      // optional
	events  *events.Publisher // optional
	logger  *slog.Logger
}

func New(cfg Config, counter corpus.TokenCounter, st *store.Store, ev *events.Publisher, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, counter: counter, store: st, events: ev, logger: logger}
}

// Run executes the corpus build and returns the full report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be positive, got %d", r.cfg.MaxTokens)
	}

	paths, err := discoverExports(r.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir output dir: %w", err)
	}

	report := &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		MaxTokens: r.cfg.MaxTokens,
	}
	r.logger.Info("corpus build starting",
		"run_id", report.RunID,
		"files", len(paths),
		"max_tokens", r.cfg.MaxTokens,
	)

	if r.store != nil {
		if err := r.store.CreateRun(ctx, report.RunID, report.StartedAt); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}

	var records []writer.Record
	var diags []corpus.Diagnostic
	seen := make(map[string]string) // fingerprint → first path

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		res, fileRecords, fileDiags, fp, err := r.processFile(path)
		if err != nil {
			r.logger.Warn("file rejected", "path", path, "error", err)
			report.Rejected = append(report.Rejected, FileError{Path: path, Error: err.Error()})
			r.publish(events.SubjectFileRejected, map[string]any{
				"run_id": report.RunID,
				"path":   path,
				"error":  err.Error(),
			})
			continue
		}
		if first, dup := seen[fp]; fp != "" && dup {
			r.logger.Info("skipping duplicate export", "path", path, "duplicate_of", first)
			report.Duplicates = append(report.Duplicates, path)
			continue
		}
		if fp != "" {
			seen[fp] = path
		}

		records = append(records, fileRecords...)
		diags = append(diags, fileDiags...)
		report.Files = append(report.Files, res)

		r.logger.Info("file processed",
			"path", path,
			"chat_name", res.ChatName,
			"messages", res.Messages,
			"turns", res.Turns,
			"examples", res.Examples,
		)
		r.publish(events.SubjectFileProcessed, map[string]any{
			"run_id":    report.RunID,
			"path":      path,
			"chat_name": res.ChatName,
			"examples":  res.Examples,
		})
	}

	// Outputs are deterministic: files in sorted order, examples in source order.
	if err := writer.WriteCSV(filepath.Join(r.cfg.OutputDir, csvName), records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	if err := writer.WriteJSONL(filepath.Join(r.cfg.OutputDir, jsonlName), records); err != nil {
		return nil, fmt.Errorf("write jsonl: %w", err)
	}

	if r.store != nil {
		for _, rec := range records {
			if err := r.store.WriteExample(ctx, report.RunID, rec); err != nil {
				return nil, fmt.Errorf("persist example: %w", err)
			}
		}
		for _, d := range diags {
			if err := r.store.WriteDiagnostic(ctx, report.RunID, d); err != nil {
				return nil, fmt.Errorf("persist diagnostic: %w", err)
			}
		}
	}

	report.FinishedAt = time.Now().UTC()
	report.Examples = len(records)
	report.Diagnostics = diags
	for _, d := range diags {
		if d.Kind == corpus.DiagOverBudget {
			report.OverBudget++
		}
	}

	if r.store != nil {
		if err := r.store.FinishRun(ctx, report.RunID, report.FinishedAt, len(report.Files), report.Examples, len(report.Rejected)); err != nil {
			r.logger.Warn("failed to finish run record", "error", err)
		}
	}
	r.publish(events.SubjectRunCompleted, report)

	if err := report.Save(filepath.Join(r.cfg.OutputDir, reportName)); err != nil {
		r.logger.Warn("failed to save run report", "error", err)
	}

	r.logger.Info("corpus build complete",
		"files", len(report.Files),
		"examples", report.Examples,
		"rejected", len(report.Rejected),
		"duplicates", len(report.Duplicates),
		"over_budget", report.OverBudget,
	)
	return report, nil
}

func (r *Runner) publish(subject string, data any) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(subject, data); err != nil {
		r.logger.Warn("publish failed", "subject", subject, "error", err)
	}
}

func (r *Runner) processFile(path string) (FileResult, []writer.Record, []corpus.Diagnostic, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileResult{}, nil, nil, "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	msgs, stats, err := transcript.Parse(f, filepath.Base(path), transcript.Options{
		Filters:   r.cfg.Filters,
		SenderMap: r.cfg.SenderMap,
	})
	if err != nil {
		return FileResult{}, nil, nil, "", err
	}

	name := ChatName(path)
	turns := corpus.Group(msgs)
	conv, err := corpus.NewConversation(name, turns, r.counter)
	if err != nil {
		return FileResult{}, nil, nil, "", fmt.Errorf("tokenize: %w", err)
	}
	examples, diags := corpus.Pack(conv, r.cfg.MaxTokens)

	recs := make([]writer.Record, 0, len(examples))
	for i, ex := range examples {
		recs = append(recs, writer.Record{
			ChatName:   name,
			Seq:        i,
			StartLine:  ex.StartLine,
			Tokens:     ex.Tokens,
			OverBudget: ex.OverBudget,
			Text:       ex.Render(),
		})
	}

	res := FileResult{
		Path:             path,
		ChatName:         name,
		Format:           stats.Format,
		Messages:         stats.Messages,
		Turns:            len(turns),
		Examples:         len(examples),
		DiscardedNotices: stats.DiscardedNotices,
		DroppedMessages:  stats.DroppedMessages,
		FormatMismatches: stats.FormatMismatches,
		OverBudget:       len(diags),
	}
	return res, recs, diags, Fingerprint(msgs), nil
}

// ChatName derives the conversation name from the export file name, the same
// way the exports name themselves.
func ChatName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".txt")
	name = strings.ReplaceAll(name, "WhatsApp Chat with", "")
	return strings.TrimSpace(name)
}

func discoverExports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
