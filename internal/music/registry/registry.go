package registry

import (
	"sync"

	"duba/internal/music/track"
)

// TrackHandle is the control surface of the currently rendering track on the
// voice transport.
type TrackHandle interface {
	Pause() error
	Play() error
	Stop() error
}

// GuildState is the per-guild playback state: the pending queue plus the
// active track handle. At most one of Active/Starting is meaningful at a
// time: Starting reserves the active slot while a track is being resolved,
// so that concurrent starts cannot both elect to play.
type GuildState struct {
	Queue    track.Queue
	Active   TrackHandle
	Starting bool

	// Gen is bumped whenever playback is torn down (stop, voice kick). An
	// in-flight start that observes a stale generation abandons its handle.
	Gen uint64
}

// Registry maps guild ids to their playback state. A single readers-writer
// lock serializes both map mutation and all GuildState mutation; callers
// must never perform I/O inside the passed closures.
type Registry struct {
	mu     sync.RWMutex
	guilds map[string]*GuildState
}

func New() *Registry {
	return &Registry{guilds: make(map[string]*GuildState)}
}

// WithWrite runs fn with exclusive access to the guild's state, creating the
// state on first use.
func (r *Registry) WithWrite(guildID string, fn func(*GuildState)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.guilds[guildID]
	if !ok {
		st = &GuildState{}
		r.guilds[guildID] = st
	}
	fn(st)
}

// WithRead runs fn with shared access to the guild's state. Returns false if
// the guild has no state yet.
func (r *Registry) WithRead(guildID string, fn func(*GuildState)) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.guilds[guildID]
	if !ok {
		return false
	}
	fn(st)
	return true
}
