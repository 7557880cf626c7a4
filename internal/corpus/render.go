package corpus

import (
	"fmt"
	"regexp"
	"strings"
)

// SoftBreak separates message bodies and intra-message lines inside a
// rendered turn. The model is trained on this exact byte sequence.
const SoftBreak = " <br>\n"

// RenderTurn renders one turn as "<Sender> body </Sender>" with soft breaks
// between the turn's lines. Deterministic and lossless with respect to
// message order and sender attribution; content is not escaped beyond the
// sender validation done at ingestion.
func RenderTurn(t Turn) string {
	body := strings.ReplaceAll(strings.Join(t.Bodies, "\n"), "\n", SoftBreak)
	return "<" + t.Sender + "> " + body + " </" + t.Sender + ">"
}

// RenderHeader renders the chat-name header that opens every example and
// every chat prompt.
func RenderHeader(chatName string) string {
	return "<chat> " + chatName + " </chat>\n"
}

// ParsedTurn is a (sender, body) pair recovered from rendered markup. Soft
// breaks come back as newlines.
type ParsedTurn struct {
	Sender string
	Body   string
}

var turnRe = regexp.MustCompile(`(?s)<([^<>/]+)> (.*?) </([^<>]+)>`)

// ParseRendered recovers the turn sequence from rendered markup. A leading
// chat header is skipped. Mismatched open/close tags are an error, since the
// renderer can never produce them.
func ParseRendered(s string) ([]ParsedTurn, error) {
	var turns []ParsedTurn
	for _, m := range turnRe.FindAllStringSubmatch(s, -1) {
		openTag, body, closeTag := m[1], m[2], m[3]
		if openTag != closeTag {
			return nil, fmt.Errorf("tag mismatch: <%s> closed by </%s>", openTag, closeTag)
		}
		if openTag == "chat" {
			continue
		}
		turns = append(turns, ParsedTurn{
			Sender: openTag,
			Body:   strings.ReplaceAll(body, SoftBreak, "\n"),
		})
	}
	return turns, nil
}
