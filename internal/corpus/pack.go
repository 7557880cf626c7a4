package corpus

import (
	"fmt"
	"strings"
)

// TokenCounter reports the token length of a piece of rendered text. Counts
// must be consistent within one run; which vocabulary backs them is the
// adapter's business.
type TokenCounter interface {
	Count(text string) (int, error)
}

// RenderedTurn is a turn's markup plus its token count, computed once.
// Counting is the expensive step, so packing only ever reads the cache.
type RenderedTurn struct {
	Sender    string
	Text      string
	Tokens    int
	StartLine int
}

// Conversation is the fully rendered turn sequence for one export file.
// Immutable once built; examples hold subslice views into Turns.
type Conversation struct {
	Name         string
	Header       string
	HeaderTokens int
	JoinTokens   int // cost of the newline between adjacent turns
	Turns        []RenderedTurn
}

// NewConversation renders every turn and counts its tokens exactly once.
func NewConversation(name string, turns []Turn, counter TokenCounter) (Conversation, error) {
	header := RenderHeader(name)
	headerTokens, err := counter.Count(header)
	if err != nil {
		return Conversation{}, fmt.Errorf("count header: %w", err)
	}
	joinTokens, err := counter.Count("\n")
	if err != nil {
		return Conversation{}, fmt.Errorf("count join: %w", err)
	}

	conv := Conversation{
		Name:         name,
		Header:       header,
		HeaderTokens: headerTokens,
		JoinTokens:   joinTokens,
		Turns:        make([]RenderedTurn, 0, len(turns)),
	}
	for _, t := range turns {
		text := RenderTurn(t)
		n, err := counter.Count(text)
		if err != nil {
			return Conversation{}, fmt.Errorf("count turn at line %d: %w", t.StartLine, err)
		}
		conv.Turns = append(conv.Turns, RenderedTurn{
			Sender:    t.Sender,
			Text:      text,
			Tokens:    n,
			StartLine: t.StartLine,
		})
	}
	return conv, nil
}

// Example is a contiguous slice of a conversation's turns whose rendered
// form fits the token budget, or a single flagged over-budget turn.
type Example struct {
	Conversation string
	Header       string
	Turns        []RenderedTurn // view into the conversation, not a copy
	Tokens       int
	OverBudget   bool
	StartLine    int
}

// Render concatenates the chat header and the example's turns.
func (e Example) Render() string {
	var sb strings.Builder
	sb.WriteString(e.Header)
	for i, t := range e.Turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Diagnostic kinds reported by Pack.
const DiagOverBudget = "over_budget_turn"

// Diagnostic is a reportable, non-fatal packing condition.
type Diagnostic struct {
	Conversation string
	Kind         string
	Line         int
	Detail       string
}

// Pack slices a conversation into examples with a greedy forward scan. Every
// turn lands in exactly one example; examples are contiguous and ordered. A
// single turn that cannot fit the budget even alone is emitted as its own
// flagged example rather than truncated inside its tags.
func Pack(conv Conversation, maxTokens int) ([]Example, []Diagnostic) {
	var (
		examples []Example
		diags    []Diagnostic
		start    int
		total    int
	)

	flush := func(end int, over bool) {
		if end <= start {
			return
		}
		turns := conv.Turns[start:end]
		examples = append(examples, Example{
			Conversation: conv.Name,
			Header:       conv.Header,
			Turns:        turns,
			Tokens:       total,
			OverBudget:   over,
			StartLine:    turns[0].StartLine,
		})
	}

	for i, t := range conv.Turns {
		alone := conv.HeaderTokens + t.Tokens

		if alone > maxTokens {
			flush(i, false)
			start, total = i, alone
			flush(i+1, true)
			diags = append(diags, Diagnostic{
				Conversation: conv.Name,
				Kind:         DiagOverBudget,
				Line:         t.StartLine,
				Detail:       fmt.Sprintf("single turn is %d tokens, budget is %d", alone, maxTokens),
			})
			start, total = i+1, 0
			continue
		}

		if i == start {
			total = alone
			continue
		}
		if total+conv.JoinTokens+t.Tokens > maxTokens {
			flush(i, false)
			start, total = i, alone
			continue
		}
		total += conv.JoinTokens + t.Tokens
	}
	flush(len(conv.Turns), false)

	return examples, diags
}
