package resolver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"duba/internal/music/track"
)

// trackInfo is the subset of yt-dlp's -j output the engine cares about.
type trackInfo struct {
	Title       string  `json:"title"`
	WebpageURL  string  `json:"webpage_url"`
	OriginalURL string  `json:"original_url"`
	URL         string  `json:"url"`
	Duration    float64 `json:"duration"` // seconds
}

// flatEntry is one JSON line of yt-dlp -j --flat-playlist output.
type flatEntry struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Duration *float64 `json:"duration"` // seconds, may be null
}

func (r *Resolver) runYTDLP(args ...string) (stdout []byte, stderr string, err error) {
	_ = r.limiter.Wait(context.Background())

	cmd := exec.Command(r.ytdlpPath, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	if runErr != nil {
		runErr = fmt.Errorf("yt-dlp error: %w", runErr)
	}
	return outBuf.Bytes(), errBuf.String(), runErr
}

func parseTrackInfo(out []byte) (track.Track, error) {
	var info trackInfo
	if err := json.Unmarshal(bytes.TrimSpace(out), &info); err != nil {
		return track.Track{}, fmt.Errorf("json unmarshal error: %w", err)
	}

	url := firstNonEmpty(info.WebpageURL, info.OriginalURL, info.URL)
	if url == "" {
		return track.Track{}, errors.New("empty source URL returned from yt-dlp")
	}

	title := info.Title
	if title == "" {
		title = track.UnknownTitle
	}

	return track.Track{
		Title:    title,
		URL:      url,
		Duration: secondsToDuration(info.Duration),
	}, nil
}

// parseFlatPlaylist parses JSON-lines flat-playlist output. Malformed lines
// and entries without a URL are skipped with a warning.
func parseFlatPlaylist(out []byte) []track.Track {
	var tracks []track.Track

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var entry flatEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			log.Printf("[Resolver] Skipping malformed playlist line: %v", err)
			continue
		}
		if entry.URL == "" {
			log.Printf("[Resolver] Skipping playlist entry without URL (title=%q)", entry.Title)
			continue
		}

		title := entry.Title
		if title == "" {
			title = track.UnknownTitle
		}

		var dur time.Duration
		if entry.Duration != nil {
			dur = secondsToDuration(*entry.Duration)
		}

		tracks = append(tracks, track.Track{Title: title, URL: entry.URL, Duration: dur})
	}

	return tracks
}

// mediaURL asks yt-dlp for the best-audio media URL of a track.
func (r *Resolver) mediaURL(url string) (string, error) {
	out, _, err := r.runYTDLP("-j", "-f", "bestaudio", "--no-playlist", url)
	if err != nil {
		return "", err
	}

	type format struct {
		URL string `json:"url"`
	}
	type info struct {
		URL     string   `json:"url"`
		Formats []format `json:"formats"`
	}

	var i info
	if err := json.Unmarshal(bytes.TrimSpace(out), &i); err != nil {
		return "", fmt.Errorf("json unmarshal error: %w", err)
	}

	link := strings.TrimSpace(i.URL)
	if link == "" && len(i.Formats) > 0 {
		link = strings.TrimSpace(i.Formats[0].URL)
	}
	if link == "" {
		return "", errors.New("empty media URL returned from yt-dlp")
	}
	return link, nil
}

// secondsToDuration converts the resolver's duration field to a Duration.
// yt-dlp reports seconds.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
