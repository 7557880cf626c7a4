package writer

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Record is one packed example ready for serialization.
type Record struct {
	ChatName   string
	Seq        int // example index within its conversation
	StartLine  int // source line of the example's first turn
	Tokens     int
	OverBudget bool
	Text       string
}

// WriteCSV writes the tabular corpus form, one row per example.
func WriteCSV(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"chat_name", "seq", "start_line", "tokens", "over_budget", "text"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ChatName,
			strconv.Itoa(r.Seq),
			strconv.Itoa(r.StartLine),
			strconv.Itoa(r.Tokens),
			strconv.FormatBool(r.OverBudget),
			r.Text,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// WriteJSONL writes the training form: one {"text": ...} record per example,
// exactly the rendered text under a fixed field name.
func WriteJSONL(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range records {
		line, err := json.Marshal(struct {
			Text string `json:"text"`
		}{r.Text})
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush jsonl: %w", err)
	}
	return f.Close()
}
