package resolver

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"duba/internal/music/track"
)

// Resolver turns user input into tracks and tracks into playable PCM
// streams, by shelling out to yt-dlp and ffmpeg. Streaming URLs expire, so
// metadata is resolved at enqueue time and the media URL again at play time.
type Resolver struct {
	ytdlpPath  string
	ffmpegPath string

	// limiter paces child process spawns so a burst of commands cannot fork
	// an unbounded number of yt-dlp processes.
	limiter *rate.Limiter

	yt youtubeClient
}

func New(ytdlpPath, ffmpegPath string) *Resolver {
	return &Resolver{
		ytdlpPath:  ytdlpPath,
		ffmpegPath: ffmpegPath,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 4),
		yt:         newYoutubeFallback(),
	}
}

// IsPlaylistURL reports whether the input is a URL carrying a playlist
// parameter and should be expanded rather than resolved as a single track.
func IsPlaylistURL(input string) bool {
	if !strings.HasPrefix(input, "http") {
		return false
	}
	return strings.Contains(input, "&list=") || strings.Contains(input, "?list=")
}

// searchTarget maps user input to a yt-dlp target: URLs pass through,
// anything else becomes a best-match search.
func searchTarget(input string) string {
	if strings.HasPrefix(input, "http") {
		return input
	}
	return "ytsearch1:" + input
}

// Track resolves a URL or search query into a single track.
func (r *Resolver) Track(input string) (track.Track, error) {
	out, _, err := r.runYTDLP("-j", "--no-playlist", searchTarget(input))
	if err == nil {
		t, perr := parseTrackInfo(out)
		if perr == nil {
			return t, nil
		}
		err = perr
	}

	if t, ferr := r.youtubeFallback(input); ferr == nil {
		log.Printf("[Resolver] yt-dlp failed (%v), youtube client fallback served %s", err, input)
		return t, nil
	}

	return track.Track{}, fmt.Errorf("could not load song for input %s: %w", input, err)
}

// Playlist expands a playlist URL into its tracks via flat-playlist
// enumeration. Lines that fail to parse are skipped; an empty result is an
// error carrying yt-dlp's stderr.
func (r *Resolver) Playlist(url string) ([]track.Track, error) {
	out, stderr, err := r.runYTDLP("-j", "--flat-playlist", url)

	tracks := parseFlatPlaylist(out)
	if len(tracks) == 0 {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return nil, fmt.Errorf("playlist expansion failed: %s", msg)
		}
		if err != nil {
			return nil, fmt.Errorf("playlist expansion failed: %w", err)
		}
		return nil, fmt.Errorf("playlist %s produced no playable entries", url)
	}

	log.Printf("[Resolver] Expanded playlist %s into %d track(s)", url, len(tracks))
	return tracks, nil
}

// Open materializes a playable PCM source for a track URL. The media URL is
// re-resolved every time because streaming URLs expire.
func (r *Resolver) Open(url string) (io.ReadCloser, error) {
	link, err := r.mediaURL(url)
	if err != nil {
		if flink, ferr := r.youtubeStreamFallback(url); ferr == nil {
			log.Printf("[Resolver] yt-dlp media-url failed (%v), youtube client fallback served %s", err, url)
			link = flink
		} else {
			return nil, err
		}
	}
	return r.openPCM(link)
}
