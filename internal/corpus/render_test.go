package corpus

import (
	"reflect"
	"strings"
	"testing"
)

func TestRenderTurn_SingleMessage(t *testing.T) {
	got := RenderTurn(Turn{Sender: "John", Bodies: []string{"Hey"}})
	if got != "<John> Hey </John>" {
		t.Errorf("rendered = %q", got)
	}
}

func TestRenderTurn_MergedMessagesGetSoftBreak(t *testing.T) {
	got := RenderTurn(Turn{Sender: "John", Bodies: []string{"Hi", "How are you?"}})
	if got != "<John> Hi <br>\nHow are you? </John>" {
		t.Errorf("rendered = %q", got)
	}
}

func TestRenderTurn_MultiLineBodyGetsSoftBreak(t *testing.T) {
	got := RenderTurn(Turn{Sender: "John", Bodies: []string{"line one\nline two"}})
	if got != "<John> line one <br>\nline two </John>" {
		t.Errorf("rendered = %q", got)
	}
}

func TestRenderHeader(t *testing.T) {
	if got := RenderHeader("Sarah"); got != "<chat> Sarah </chat>\n" {
		t.Errorf("header = %q", got)
	}
}

func TestRenderTurn_Deterministic(t *testing.T) {
	turn := Turn{Sender: "Sarah", Bodies: []string{"a", "b\nc"}}
	if RenderTurn(turn) != RenderTurn(turn) {
		t.Error("rendering is not deterministic")
	}
}

func TestParseRendered_RoundTrip(t *testing.T) {
	turns := []Turn{
		{Sender: "John", Bodies: []string{"Hey"}},
		{Sender: "Sarah", Bodies: []string{"Hi", "what's up\nover there?"}},
		{Sender: "John", Bodies: []string{"not much"}},
	}

	var parts []string
	for _, turn := range turns {
		parts = append(parts, RenderTurn(turn))
	}
	rendered := RenderHeader("Sarah") + strings.Join(parts, "\n")

	parsed, err := ParseRendered(rendered)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed) != len(turns) {
		t.Fatalf("expected %d turns, got %d", len(turns), len(parsed))
	}

	want := []ParsedTurn{
		{Sender: "John", Body: "Hey"},
		{Sender: "Sarah", Body: "Hi\nwhat's up\nover there?"},
		{Sender: "John", Body: "not much"},
	}
	if !reflect.DeepEqual(parsed, want) {
		t.Errorf("parsed = %+v, want %+v", parsed, want)
	}
}

func TestParseRendered_SkipsChatHeader(t *testing.T) {
	parsed, err := ParseRendered("<chat> Sarah </chat>\n<John> hi </John>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Sender != "John" {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestParseRendered_TagMismatch(t *testing.T) {
	if _, err := ParseRendered("<John> hi </Sarah>"); err == nil {
		t.Error("expected tag mismatch error")
	}
}
