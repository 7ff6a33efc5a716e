package voice

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrNoSession is returned when a guild has no live voice session.
var ErrNoSession = errors.New("not in a voice channel")

// Manager owns the per-guild voice sessions on top of a single discordgo
// session.
type Manager struct {
	mu       sync.Mutex
	dg       *discordgo.Session
	sessions map[string]*Session
}

func NewManager(dg *discordgo.Session) *Manager {
	return &Manager{
		dg:       dg,
		sessions: make(map[string]*Session),
	}
}

// Join connects to a voice channel, self-deafened, reusing the existing
// session when it already points at the same channel. A session left over
// from another channel is torn down first.
func (m *Manager) Join(guildID, channelID string) (*Session, error) {
	if s := m.Get(guildID); s != nil && s.ChannelID() == channelID {
		return s, nil
	}

	vc, err := m.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	log.Printf("[Voice] Joined voice channel %s on guild %s", channelID, guildID)

	s := &Session{dg: m.dg, guildID: guildID, vc: vc, deaf: true}

	m.mu.Lock()
	old := m.sessions[guildID]
	m.sessions[guildID] = s
	m.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	return s, nil
}

// Get returns the guild's session, or nil.
func (m *Manager) Get(guildID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[guildID]
}

// Remove stops playback and disconnects the guild's session.
func (m *Manager) Remove(guildID string) error {
	m.mu.Lock()
	s := m.sessions[guildID]
	delete(m.sessions, guildID)
	m.mu.Unlock()

	if s == nil {
		return ErrNoSession
	}

	s.Stop()
	if err := s.vc.Disconnect(); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	log.Printf("[Voice] Left voice channel on guild %s", guildID)
	return nil
}

// Drop forgets the guild's session without disconnecting, for when the
// transport already tore the connection down (bot kicked from the channel).
func (m *Manager) Drop(guildID string) {
	m.mu.Lock()
	s := m.sessions[guildID]
	delete(m.sessions, guildID)
	m.mu.Unlock()

	if s != nil {
		s.Stop()
	}
}
