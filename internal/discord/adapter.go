package discord

import (
	"io"
	"log"

	"github.com/bwmarrin/discordgo"

	"duba/internal/music/player"
	"duba/internal/music/voice"
)

// voiceTransport adapts voice.Manager to the engine's Transport interface.
type voiceTransport struct {
	m *voice.Manager
}

func (t *voiceTransport) Join(guildID, channelID string) (player.Session, error) {
	s, err := t.m.Join(guildID, channelID)
	if err != nil {
		return nil, err
	}
	return &voiceSession{s: s}, nil
}

func (t *voiceTransport) Get(guildID string) (player.Session, bool) {
	s := t.m.Get(guildID)
	if s == nil {
		return nil, false
	}
	return &voiceSession{s: s}, true
}

func (t *voiceTransport) Remove(guildID string) error {
	return t.m.Remove(guildID)
}

type voiceSession struct {
	s *voice.Session
}

func (vs *voiceSession) Deafen(deaf bool) error {
	return vs.s.Deafen(deaf)
}

func (vs *voiceSession) PlaySource(src io.ReadCloser, onEnd func(player.Handle)) player.Handle {
	return vs.s.PlaySource(src, func(h *voice.TrackHandle) { onEnd(h) })
}

func (vs *voiceSession) Stop() {
	vs.s.Stop()
}

// channelNotifier posts engine messages to text channels.
type channelNotifier struct {
	dg *discordgo.Session
}

func (n *channelNotifier) Say(channelID, message string) {
	if _, err := n.dg.ChannelMessageSend(channelID, message); err != nil {
		log.Printf("[ERR] Error sending message: %v", err)
	}
}
