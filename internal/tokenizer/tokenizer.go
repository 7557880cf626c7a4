package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken counts tokens with an OpenAI BPE encoding. Safe to share across
// files within a run; counts are stable for a given encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding, e.g. "cl100k_base".
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Count(text string) (int, error) {
	return len(t.enc.Encode(text, nil, nil)), nil
}

// Estimator approximates token counts at ~4 characters per token. It exists
// for offline runs and tests where fetching a BPE vocabulary is unwanted;
// budgets enforced with it are approximate.
type Estimator struct{}

func (Estimator) Count(text string) (int, error) {
	if len(text) == 0 {
		return 0, nil
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n, nil
}
