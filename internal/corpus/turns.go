package corpus

import "github.com/MikeSquared-Agency/mimic/internal/transcript"

// Turn is a run of consecutive messages from one sender.
type Turn struct {
	Sender    string
	Bodies    []string
	StartLine int
	EndLine   int
}

// Group merges consecutive same-sender messages into turns. Pure linear scan;
// order in equals order out.
func Group(msgs []transcript.Message) []Turn {
	var turns []Turn
	for _, m := range msgs {
		if n := len(turns); n > 0 && turns[n-1].Sender == m.Sender {
			turns[n-1].Bodies = append(turns[n-1].Bodies, m.Body())
			turns[n-1].EndLine = m.EndLine
			continue
		}
		turns = append(turns, Turn{
			Sender:    m.Sender,
			Bodies:    []string{m.Body()},
			StartLine: m.StartLine,
			EndLine:   m.EndLine,
		})
	}
	return turns
}
