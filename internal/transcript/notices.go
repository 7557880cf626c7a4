package transcript

// DefaultFilters returns the stock non-content lines WhatsApp puts into
// exports. The deletion stand-ins appear in both phrasings depending on who
// deleted; the media placeholder must be filtered before rendering because it
// carries tag delimiter characters.
func DefaultFilters() []string {
	return []string{
		"<Media omitted>",
		"Messages and calls are end-to-end encrypted",
		"You deleted this message",
		"This message was deleted",
	}
}
