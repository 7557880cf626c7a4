package runner

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/mimic/internal/transcript"
)

// previewLen caps how much of each opening message goes into a fingerprint.
const previewLen = 100

// Fingerprint identifies an export by its message count and opening messages,
// so the same chat exported twice under different file names is only
// formatted once. Empty exports fingerprint to "" and are never deduped.
func Fingerprint(msgs []transcript.Message) string {
	if len(msgs) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", len(msgs))
	for i := 0; i < len(msgs) && i < 3; i++ {
		text := msgs[i].Body()
		if len(text) > previewLen {
			text = text[:previewLen]
		}
		fmt.Fprintf(&sb, "|%s@%s:%s", msgs[i].Sender, msgs[i].Timestamp, text)
	}
	return sb.String()
}
