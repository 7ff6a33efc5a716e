package discord

import (
	"fmt"
	"strings"

	"duba/internal/music/track"
)

// maxQueueLines caps the queue display at the first 20 tracks.
const maxQueueLines = 20

// FormatQueue renders queued tracks as a numbered preformatted block.
func FormatQueue(tracks []track.Track) string {
	if len(tracks) > maxQueueLines {
		tracks = tracks[:maxQueueLines]
	}

	lines := make([]string, 0, len(tracks))
	for i, t := range tracks {
		lines = append(lines, fmt.Sprintf("%d - %s", i+1, t.Title))
	}

	return fmt.Sprintf("**Queue**:\n```%s```", strings.Join(lines, "\n"))
}
