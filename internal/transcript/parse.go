package transcript

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Message is one reconstructed chat message.
type Message struct {
	Sender    string
	Timestamp string   // raw prefix text, e.g. "1/2/24, 10:01 AM"
	Lines     []string // content lines, including intentional blanks
	StartLine int      // 1-based line numbers in the source file
	EndLine   int
}

// Body joins the message's content lines. The newline here is the soft-break
// the renderer later turns into an inline tag.
func (m Message) Body() string {
	return strings.Join(m.Lines, "\n")
}

// MalformedError means a file structurally violates the export format and was
// rejected as a whole.
type MalformedError struct {
	File   string
	Line   int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

// Stats accounts for every line so nothing is discarded silently.
type Stats struct {
	Lines            int
	Messages         int
	DiscardedNotices int // prefixed system notices plus filtered lines
	DroppedMessages  int // messages left empty after filtering
	Format           string
	FormatMismatches int // prefixed lines matching a format other than the file's first
}

// Options controls reconstruction policy.
type Options struct {
	// Filters are case-insensitive substrings; a content line containing one
	// is discarded (media placeholders, deleted-message stand-ins, banners).
	Filters []string
	// SenderMap rewrites sender names to display names before validation.
	SenderMap map[string]string
}

// Parse reconstructs discrete messages from a raw export. Exactly one message
// is open at a time; a new prefix closes it, unprefixed lines extend it. The
// whole file is rejected with *MalformedError when the first content line has
// no sender context or when a sender name carries tag delimiters.
func Parse(r io.Reader, file string, opts Options) ([]Message, Stats, error) {
	var (
		msgs   []Message
		stats  Stats
		open   *Message
		lineNo int
	)

	flush := func() {
		if open == nil {
			return
		}
		m := *open
		open = nil
		// Drop trailing blanks so filtered or empty endings don't render.
		for len(m.Lines) > 0 && strings.TrimSpace(m.Lines[len(m.Lines)-1]) == "" {
			m.Lines = m.Lines[:len(m.Lines)-1]
		}
		if len(m.Lines) == 0 {
			stats.DroppedMessages++
			return
		}
		msgs = append(msgs, m)
		stats.Messages++
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNo++
		stats.Lines++
		c := Classify(scanner.Text())

		switch c.Kind {
		case KindNewMessage:
			flush()
			if stats.Format == "" {
				stats.Format = c.Format
			} else if c.Format != stats.Format {
				stats.FormatMismatches++
			}
			sender := c.Sender
			if mapped, ok := opts.SenderMap[sender]; ok {
				sender = mapped
			}
			if strings.ContainsAny(sender, "<>") {
				return nil, stats, &MalformedError{
					File:   file,
					Line:   lineNo,
					Reason: fmt.Sprintf("sender %q contains tag delimiter characters", sender),
				}
			}
			open = &Message{Sender: sender, Timestamp: c.Timestamp, StartLine: lineNo, EndLine: lineNo}
			if filtered(c.Content, opts.Filters) {
				stats.DiscardedNotices++
			} else if strings.TrimSpace(c.Content) != "" {
				open.Lines = append(open.Lines, c.Content)
			}

		case KindContinuation:
			if filtered(c.Content, opts.Filters) {
				stats.DiscardedNotices++
				continue
			}
			if open == nil {
				return nil, stats, &MalformedError{
					File:   file,
					Line:   lineNo,
					Reason: "continuation line before any message",
				}
			}
			open.Lines = append(open.Lines, c.Content)
			open.EndLine = lineNo

		case KindSystemNotice:
			stats.DiscardedNotices++

		case KindBlank:
			// Blank lines are part of a multi-line message but never start one.
			if open != nil && len(open.Lines) > 0 {
				open.Lines = append(open.Lines, "")
				open.EndLine = lineNo
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan %s: %w", file, err)
	}
	flush()

	return msgs, stats, nil
}

func filtered(line string, filters []string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	l := strings.ToLower(line)
	for _, f := range filters {
		if strings.Contains(l, strings.ToLower(f)) {
			return true
		}
	}
	return false
}
