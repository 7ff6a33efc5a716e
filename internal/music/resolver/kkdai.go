package resolver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	youtube "github.com/kkdai/youtube/v2"

	"duba/internal/music/track"
)

// youtubeClient is the slice of kkdai/youtube the fallback path uses.
type youtubeClient interface {
	GetVideo(url string) (*youtube.Video, error)
	GetStreamURL(video *youtube.Video, format *youtube.Format) (string, error)
}

func newYoutubeFallback() youtubeClient {
	return &youtube.Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func isYouTubeURL(input string) bool {
	return strings.HasPrefix(input, "http") &&
		(strings.Contains(input, "youtube.com/") || strings.Contains(input, "youtu.be/"))
}

// youtubeFallback resolves track metadata for direct YouTube links without
// the yt-dlp child, used when the subprocess path fails.
func (r *Resolver) youtubeFallback(input string) (track.Track, error) {
	if !isYouTubeURL(input) {
		return track.Track{}, errors.New("fallback requires a YouTube link")
	}

	video, err := r.yt.GetVideo(input)
	if err != nil {
		return track.Track{}, err
	}

	title := video.Title
	if title == "" {
		title = track.UnknownTitle
	}

	return track.Track{Title: title, URL: input, Duration: video.Duration}, nil
}

// youtubeStreamFallback resolves a playable media URL for direct YouTube
// links without the yt-dlp child.
func (r *Resolver) youtubeStreamFallback(input string) (string, error) {
	if !isYouTubeURL(input) {
		return "", errors.New("fallback requires a YouTube link")
	}

	video, err := r.yt.GetVideo(input)
	if err != nil {
		return "", err
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", errors.New("no audio formats found for video")
	}

	return r.yt.GetStreamURL(video, &formats[0])
}
