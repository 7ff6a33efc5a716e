package discord

import (
	"fmt"
	"strings"
	"testing"

	"duba/internal/music/track"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		content  string
		prefix   string
		wantName string
		wantArgs string
		wantOK   bool
	}{
		{"!play some song", "!", "play", "some song", true},
		{"!PLAY Some Song", "!", "play", "Some Song", true},
		{"!next", "!", "next", "", true},
		{"!goto  3 ", "!", "goto", "3", true},
		{"!pn https://youtu.be/abc", "!", "pn", "https://youtu.be/abc", true},
		{"play some song", "!", "", "", false},
		{"!", "!", "", "", false},
		{"", "!", "", "", false},
		{"hello there", "!", "", "", false},
		{"?play x", "!", "", "", false},
		{"?play x", "?", "play", "x", true},
	}

	for _, tt := range tests {
		name, args, ok := ParseCommand(tt.content, tt.prefix)
		if name != tt.wantName || args != tt.wantArgs || ok != tt.wantOK {
			t.Errorf("ParseCommand(%q, %q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.content, tt.prefix, name, args, ok, tt.wantName, tt.wantArgs, tt.wantOK)
		}
	}
}

func TestFormatQueue(t *testing.T) {
	out := FormatQueue([]track.Track{
		{Title: "First Song"},
		{Title: "Second Song"},
	})

	if !strings.HasPrefix(out, "**Queue**:\n```") || !strings.HasSuffix(out, "```") {
		t.Errorf("queue not wrapped in code block: %q", out)
	}
	if !strings.Contains(out, "1 - First Song") || !strings.Contains(out, "2 - Second Song") {
		t.Errorf("missing numbered entries: %q", out)
	}
}

func TestFormatQueueCapsAtTwenty(t *testing.T) {
	var tracks []track.Track
	for i := 0; i < 25; i++ {
		tracks = append(tracks, track.Track{Title: fmt.Sprintf("T%02d", i)})
	}

	out := FormatQueue(tracks)

	if !strings.Contains(out, "20 - T19") {
		t.Errorf("missing 20th entry: %q", out)
	}
	if strings.Contains(out, "21 - ") || strings.Contains(out, "T20") {
		t.Errorf("queue display not capped: %q", out)
	}
}

func TestHelpMessageListsCommands(t *testing.T) {
	for _, cmd := range []string{"play", "pause", "unpause", "stop", "pn", "next", "queue", "goto", "shuffle"} {
		if !strings.Contains(helpMessage, "**"+cmd) {
			t.Errorf("help message missing command %q", cmd)
		}
	}
}
