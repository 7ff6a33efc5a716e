package resolver

import (
	"strings"
	"testing"
	"time"

	"duba/internal/music/track"
)

func TestIsPlaylistURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://youtube.com/watch?v=1&list=PL123", true},
		{"https://youtube.com/playlist?list=PL123", true},
		{"https://youtube.com/watch?v=1", false},
		{"never gonna give you up &list=", false}, // not a URL
		{"some search query", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsPlaylistURL(tt.input); got != tt.want {
			t.Errorf("IsPlaylistURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSearchTarget(t *testing.T) {
	if got := searchTarget("https://youtu.be/abc"); got != "https://youtu.be/abc" {
		t.Errorf("URL input rewritten: %q", got)
	}
	if got := searchTarget("foo bar"); got != "ytsearch1:foo bar" {
		t.Errorf("search input = %q, want ytsearch1:foo bar", got)
	}
}

func TestParseTrackInfo(t *testing.T) {
	out := []byte(`{"title":"Some Song","webpage_url":"https://y/abc","duration":212}`)

	tr, err := parseTrackInfo(out)
	if err != nil {
		t.Fatalf("parseTrackInfo: %v", err)
	}
	if tr.Title != "Some Song" {
		t.Errorf("Title = %q", tr.Title)
	}
	if tr.URL != "https://y/abc" {
		t.Errorf("URL = %q", tr.URL)
	}
	if tr.Duration != 212*time.Second {
		t.Errorf("Duration = %v, want 3m32s", tr.Duration)
	}
}

func TestParseTrackInfoDefaultsTitle(t *testing.T) {
	tr, err := parseTrackInfo([]byte(`{"webpage_url":"https://y/abc"}`))
	if err != nil {
		t.Fatalf("parseTrackInfo: %v", err)
	}
	if tr.Title != track.UnknownTitle {
		t.Errorf("Title = %q, want %q", tr.Title, track.UnknownTitle)
	}
}

func TestParseTrackInfoErrors(t *testing.T) {
	if _, err := parseTrackInfo([]byte(`{"title":"no url"}`)); err == nil {
		t.Error("missing URL accepted")
	}
	if _, err := parseTrackInfo([]byte(`not json`)); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestParseFlatPlaylist(t *testing.T) {
	lines := []string{
		`{"title":"T1","url":"https://y/1","duration":60}`,
		`{"title":"T2","url":"https://y/2","duration":null}`,
		`{"title":"T3","url":"https://y/3"}`,
	}

	tracks := parseFlatPlaylist([]byte(strings.Join(lines, "\n") + "\n"))
	if len(tracks) != 3 {
		t.Fatalf("parsed %d tracks, want 3", len(tracks))
	}
	if tracks[0].Duration != time.Minute {
		t.Errorf("tracks[0].Duration = %v, want 1m0s (seconds, not nanoseconds)", tracks[0].Duration)
	}
	if tracks[1].Duration != 0 {
		t.Errorf("null duration parsed as %v", tracks[1].Duration)
	}
}

func TestParseFlatPlaylistSkipsBadLines(t *testing.T) {
	lines := []string{
		`{"title":"T1","url":"https://y/1","duration":60}`,
		`{{{ garbage`,
		`{"title":"no url entry"}`,
		`{"title":"T2","url":"https://y/2","duration":120}`,
	}

	tracks := parseFlatPlaylist([]byte(strings.Join(lines, "\n")))
	if len(tracks) != 2 {
		t.Fatalf("parsed %d tracks, want 2 (bad lines skipped)", len(tracks))
	}
	if tracks[0].Title != "T1" || tracks[1].Title != "T2" {
		t.Errorf("tracks = %q, %q", tracks[0].Title, tracks[1].Title)
	}
}

func TestParseFlatPlaylistEmpty(t *testing.T) {
	if got := parseFlatPlaylist(nil); len(got) != 0 {
		t.Fatalf("parsed %d tracks from empty output", len(got))
	}
}

func TestParseFlatPlaylistDefaultsTitle(t *testing.T) {
	tracks := parseFlatPlaylist([]byte(`{"url":"https://y/1"}`))
	if len(tracks) != 1 {
		t.Fatalf("parsed %d tracks, want 1", len(tracks))
	}
	if tracks[0].Title != track.UnknownTitle {
		t.Errorf("Title = %q, want %q", tracks[0].Title, track.UnknownTitle)
	}
}

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"https://youtu.be/abc", true},
		{"https://soundcloud.com/x/y", false},
		{"youtube.com/watch?v=abc", false}, // not a URL
	}
	for _, tt := range tests {
		if got := isYouTubeURL(tt.input); got != tt.want {
			t.Errorf("isYouTubeURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSecondsToDuration(t *testing.T) {
	if got := secondsToDuration(90); got != 90*time.Second {
		t.Errorf("secondsToDuration(90) = %v", got)
	}
	if got := secondsToDuration(0); got != 0 {
		t.Errorf("secondsToDuration(0) = %v", got)
	}
}
