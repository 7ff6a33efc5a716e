package voice

import (
	"fmt"
	"io"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Session is a live voice connection to one guild's channel.
type Session struct {
	mu      sync.Mutex
	dg      *discordgo.Session
	guildID string
	vc      *discordgo.VoiceConnection
	deaf    bool
	handle  *TrackHandle
}

func (s *Session) ChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vc.ChannelID
}

// Deafen toggles self-deafen. Discord only accepts the flag on the voice
// state update, so toggling re-issues the join for the same channel.
func (s *Session) Deafen(deaf bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deaf == deaf {
		return nil
	}
	vc, err := s.dg.ChannelVoiceJoin(s.guildID, s.vc.ChannelID, false, deaf)
	if err != nil {
		return fmt.Errorf("failed to update deafen state: %w", err)
	}
	s.vc = vc
	s.deaf = deaf
	return nil
}

// PlaySource starts rendering a PCM source on the session and returns its
// handle. onEnd fires exactly once, receiving the ending handle, when the
// track finishes or is stopped. The source is closed by the playback
// goroutine.
func (s *Session) PlaySource(src io.ReadCloser, onEnd func(*TrackHandle)) *TrackHandle {
	s.mu.Lock()
	h := newTrackHandle(src, s.vc, onEnd)
	s.handle = h
	s.mu.Unlock()

	go h.run()
	return h
}

// Stop stops whatever the session is currently rendering, if anything.
func (s *Session) Stop() {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.mu.Unlock()

	if h != nil {
		h.Stop()
	}
}
