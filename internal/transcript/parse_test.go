package transcript

import (
	"errors"
	"strings"
	"testing"
)

func parseString(t *testing.T, input string, opts Options) ([]Message, Stats) {
	t.Helper()
	msgs, stats, err := Parse(strings.NewReader(input), "test.txt", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return msgs, stats
}

func TestParse_AlternatingSenders(t *testing.T) {
	input := "1/1/24, 10:00 AM - John: Hey\n1/1/24, 10:01 AM - Sarah: Hi"
	msgs, stats := parseString(t, input, Options{})

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != "John" || msgs[0].Body() != "Hey" {
		t.Errorf("msg[0] = %q %q", msgs[0].Sender, msgs[0].Body())
	}
	if msgs[1].Sender != "Sarah" || msgs[1].Body() != "Hi" {
		t.Errorf("msg[1] = %q %q", msgs[1].Sender, msgs[1].Body())
	}
	if msgs[0].StartLine != 1 || msgs[1].StartLine != 2 {
		t.Errorf("line ranges = %d, %d", msgs[0].StartLine, msgs[1].StartLine)
	}
	if msgs[0].Timestamp != "1/1/24, 10:00 AM" {
		t.Errorf("timestamp = %q", msgs[0].Timestamp)
	}
	if stats.Messages != 2 || stats.Lines != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Format != "us-12h" {
		t.Errorf("format = %q", stats.Format)
	}
}

func TestParse_ContinuationLines(t *testing.T) {
	input := "1/1/24, 10:00 AM - John: first line\nsecond line\nthird line"
	msgs, _ := parseString(t, input, Options{})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Body() != "first line\nsecond line\nthird line" {
		t.Errorf("body = %q", msgs[0].Body())
	}
	if msgs[0].StartLine != 1 || msgs[0].EndLine != 3 {
		t.Errorf("line range = %d-%d", msgs[0].StartLine, msgs[0].EndLine)
	}
}

func TestParse_BlankLinesInsideMessagePreserved(t *testing.T) {
	input := "1/1/24, 10:00 AM - John: para one\n\npara two\n1/1/24, 10:05 AM - Sarah: ok"
	msgs, _ := parseString(t, input, Options{})

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Body() != "para one\n\npara two" {
		t.Errorf("body = %q", msgs[0].Body())
	}
}

func TestParse_TrailingBlanksTrimmed(t *testing.T) {
	input := "1/1/24, 10:00 AM - John: hey\n\n\n"
	msgs, _ := parseString(t, input, Options{})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Body() != "hey" {
		t.Errorf("body = %q", msgs[0].Body())
	}
}

func TestParse_LeadingContinuationRejected(t *testing.T) {
	input := "no prefix at all\n1/1/24, 10:00 AM - John: hi"
	_, _, err := Parse(strings.NewReader(input), "bad.txt", Options{})

	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedError, got %v", err)
	}
	if malformed.File != "bad.txt" || malformed.Line != 1 {
		t.Errorf("error location = %s:%d", malformed.File, malformed.Line)
	}
}

func TestParse_LeadingBannerDiscarded(t *testing.T) {
	input := "Messages and calls are end-to-end encrypted.\n1/1/24, 10:00 AM - John: hi"
	msgs, stats := parseString(t, input, Options{Filters: DefaultFilters()})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if stats.DiscardedNotices != 1 {
		t.Errorf("discarded = %d, want 1", stats.DiscardedNotices)
	}
}

func TestParse_SenderWithTagDelimiterRejected(t *testing.T) {
	input := "1/1/24, 10:00 AM - <John>: hi"
	_, _, err := Parse(strings.NewReader(input), "bad.txt", Options{})

	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedError, got %v", err)
	}
}

func TestParse_SenderMapApplied(t *testing.T) {
	input := "1/1/24, 10:00 AM - +49 170 1234567: hi"
	msgs, _ := parseString(t, input, Options{SenderMap: map[string]string{"+49 170 1234567": "Max"}})

	if len(msgs) != 1 || msgs[0].Sender != "Max" {
		t.Fatalf("msgs = %+v", msgs)
	}
}

func TestParse_MediaMessageDropped(t *testing.T) {
	input := "1/1/24, 10:00 AM - John: <Media omitted>\n1/1/24, 10:01 AM - John: real text"
	msgs, stats := parseString(t, input, Options{Filters: DefaultFilters()})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Body() != "real text" {
		t.Errorf("body = %q", msgs[0].Body())
	}
	if stats.DiscardedNotices != 1 || stats.DroppedMessages != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestParse_DeletedMessageDropped(t *testing.T) {
	input := "1/1/24, 10:00 AM - John: This message was deleted\n1/1/24, 10:01 AM - Sarah: hi"
	msgs, _ := parseString(t, input, Options{Filters: DefaultFilters()})

	if len(msgs) != 1 || msgs[0].Sender != "Sarah" {
		t.Fatalf("msgs = %+v", msgs)
	}
}

func TestParse_UnfilteredStandInKeptAsContent(t *testing.T) {
	// Deletion stand-ins are policy-configurable: with no filters they are
	// ordinary content.
	input := "1/1/24, 10:00 AM - John: This message was deleted"
	msgs, _ := parseString(t, input, Options{})

	if len(msgs) != 1 || msgs[0].Body() != "This message was deleted" {
		t.Fatalf("msgs = %+v", msgs)
	}
}

func TestParse_PrefixedNoticeBetweenMessages(t *testing.T) {
	input := "1/1/24, 10:00 AM - John: one\n" +
		"1/1/24, 10:01 AM - John added Sarah\n" +
		"1/1/24, 10:02 AM - John: two"
	msgs, stats := parseString(t, input, Options{})

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != "John" || msgs[1].Sender != "John" {
		t.Errorf("senders = %q, %q", msgs[0].Sender, msgs[1].Sender)
	}
	if stats.DiscardedNotices != 1 {
		t.Errorf("discarded = %d, want 1", stats.DiscardedNotices)
	}
}

func TestParse_FormatMismatchFlagged(t *testing.T) {
	input := "1/1/24, 10:00 AM - John: hi\n[5/6/24, 10:00:05] Sarah: hello"
	msgs, stats := parseString(t, input, Options{})

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if stats.Format != "us-12h" {
		t.Errorf("format = %q", stats.Format)
	}
	if stats.FormatMismatches != 1 {
		t.Errorf("mismatches = %d, want 1", stats.FormatMismatches)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	msgs, stats := parseString(t, "", Options{})
	if len(msgs) != 0 || stats.Lines != 0 {
		t.Errorf("msgs = %v, stats = %+v", msgs, stats)
	}
}
