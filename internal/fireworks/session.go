package fireworks

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/mimic/internal/corpus"
)

// Session holds the rolling prompt state for one persona conversation. The
// prompt is assembled in exactly the markup the model was trained on: chat
// header, one tagged turn per exchange, then an open tag for the persona to
// complete.
type Session struct {
	ChatName  string
	SenderAs  string // name the human's messages are attributed to
	RespondAs string // persona the model completes as
	MaxTokens int

	history []corpus.ParsedTurn
}

func NewSession(chatName, senderAs, respondAs string, maxTokens int) *Session {
	return &Session{
		ChatName:  chatName,
		SenderAs:  senderAs,
		RespondAs: respondAs,
		MaxTokens: maxTokens,
	}
}

// Prompt renders the session history with an open persona tag at the end.
func (s *Session) Prompt() string {
	var sb strings.Builder
	sb.WriteString(corpus.RenderHeader(s.ChatName))
	for _, t := range s.history {
		sb.WriteString(corpus.RenderTurn(corpus.Turn{Sender: t.Sender, Bodies: []string{t.Body}}))
		sb.WriteByte('\n')
	}
	sb.WriteString("<" + s.RespondAs + ">")
	return sb.String()
}

// Stop returns the persona's close tag, which ends every completion.
func (s *Session) Stop() []string {
	return []string{"</" + s.RespondAs + ">"}
}

// Chat appends the user message, completes the prompt, and records the reply
// in the history. The user message stays in the history even when the call
// fails, so a retry continues the same conversation.
func (s *Session) Chat(ctx context.Context, c *Client, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("empty message")
	}
	s.history = append(s.history, corpus.ParsedTurn{Sender: s.SenderAs, Body: message})

	raw, err := c.Complete(ctx, s.Prompt(), s.Stop(), s.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}

	reply := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "</"+s.RespondAs+">"))
	s.history = append(s.history, corpus.ParsedTurn{Sender: s.RespondAs, Body: reply})
	return reply, nil
}

// History returns a copy of the exchanges so far.
func (s *Session) History() []corpus.ParsedTurn {
	out := make([]corpus.ParsedTurn, len(s.history))
	copy(out, s.history)
	return out
}
