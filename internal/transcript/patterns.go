package transcript

import (
	"regexp"
	"strings"
)

// Kind classifies a single raw line of an export file.
type Kind int

const (
	KindNewMessage Kind = iota
	KindContinuation
	KindSystemNotice
	KindBlank
)

// prefixFormat is one known date/time/sender header convention. message must
// capture (timestamp, sender, content); notice matches the same date/time
// prefix with no "Sender: " part, which WhatsApp uses for group events and
// the encryption banner.
type prefixFormat struct {
	name    string
	message *regexp.Regexp
	notice  *regexp.Regexp
}

// formats is the table of supported export conventions. New locales are new
// table entries, not new classifier logic. Order matters only for lines that
// would match more than one entry; the 12h form is tried before the 24h form
// so an AM/PM suffix is never mistaken for content.
var formats = []prefixFormat{
	{
		name:    "us-12h",
		message: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}\s?[AaPp][Mm]) [-–] ([^:]+): (.*)$`),
		notice:  regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}\s?[AaPp][Mm] [-–] `),
	},
	{
		name:    "intl-24h",
		message: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}) [-–] ([^:]+): (.*)$`),
		notice:  regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2} [-–] `),
	},
	{
		name:    "ios-bracketed",
		message: regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{2,4},? \d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp][Mm])?)\] ([^:]+): (.*)$`),
		notice:  regexp.MustCompile(`^\[\d{1,2}/\d{1,2}/\d{2,4},? \d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp][Mm])?\] `),
	},
}

// Classification is the result of classifying one raw line.
type Classification struct {
	Kind      Kind
	Format    string // table entry that matched, set for NewMessage and SystemNotice
	Timestamp string // raw date/time text, never parsed
	Sender    string
	Content   string
}

// Classify decides whether a line starts a new message, is a prefixed system
// notice, or is blank. Anything else is a continuation of whatever message is
// open; a line that merely looks like a date mid-message is resolved by the
// pattern match deterministically, which is a documented limitation of the
// export format rather than something to second-guess.
func Classify(line string) Classification {
	if strings.TrimSpace(line) == "" {
		return Classification{Kind: KindBlank}
	}
	for _, f := range formats {
		if m := f.message.FindStringSubmatch(line); m != nil {
			return Classification{
				Kind:      KindNewMessage,
				Format:    f.name,
				Timestamp: m[1],
				Sender:    strings.TrimSpace(m[2]),
				Content:   m[3],
			}
		}
		if f.notice.MatchString(line) {
			return Classification{Kind: KindSystemNotice, Format: f.name}
		}
	}
	return Classification{Kind: KindContinuation, Content: line}
}
