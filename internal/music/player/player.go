package player

import (
	"errors"
	"fmt"
	"io"
	"log"

	"duba/internal/music/registry"
	"duba/internal/music/resolver"
	"duba/internal/music/track"
)

var (
	ErrNotPlaying   = errors.New("no track is currently playing")
	ErrInvalidIndex = errors.New("invalid song index")
)

// Handle is the active-track control surface stored in the registry.
type Handle = registry.TrackHandle

// Resolver turns user input into tracks and track URLs into playable
// sources.
type Resolver interface {
	Track(input string) (track.Track, error)
	Playlist(url string) ([]track.Track, error)
	Open(url string) (io.ReadCloser, error)
}

// Session is one guild's voice connection.
type Session interface {
	Deafen(deaf bool) error
	PlaySource(src io.ReadCloser, onEnd func(ended Handle)) Handle
	Stop()
}

// Transport manages per-guild voice sessions.
type Transport interface {
	Join(guildID, channelID string) (Session, error)
	Get(guildID string) (Session, bool)
	Remove(guildID string) error
}

// Notifier posts user-visible messages to a text channel. Failures are the
// notifier's problem; the engine never depends on delivery.
type Notifier interface {
	Say(channelID, message string)
}

// Engine is the per-guild playback engine: it couples the registry's queue
// state to the voice transport, starts tracks and advances on end-of-track.
type Engine struct {
	reg      *registry.Registry
	resolver Resolver
	voice    Transport
	notify   Notifier
}

func New(reg *registry.Registry, res Resolver, voice Transport, notify Notifier) *Engine {
	return &Engine{reg: reg, resolver: res, voice: voice, notify: notify}
}

// Play joins the user's voice channel, resolves the input (expanding
// playlist URLs unless front insertion was requested), enqueues the result
// and starts playback if nothing is active.
func (e *Engine) Play(guildID, voiceChannelID, textChannelID, input string, front bool) error {
	sess, err := e.voice.Join(guildID, voiceChannelID)
	if err != nil {
		return err
	}
	if err := sess.Deafen(true); err != nil {
		log.Printf("[Player] Deafen failed on guild %s: %v", guildID, err)
	}

	if !front && resolver.IsPlaylistURL(input) {
		log.Printf("[Player] Detected playlist in %q", input)
		tracks, err := e.resolver.Playlist(input)
		if err != nil {
			return err
		}
		e.reg.WithWrite(guildID, func(st *registry.GuildState) {
			st.Queue.Append(tracks)
			log.Printf("[Player] Added %d track(s) to queue | guild=%s queueLen=%d",
				len(tracks), guildID, st.Queue.Len())
		})
	} else {
		t, err := e.resolver.Track(input)
		if err != nil {
			return err
		}
		e.reg.WithWrite(guildID, func(st *registry.GuildState) {
			if front {
				st.Queue.PushFront(t)
			} else {
				st.Queue.PushBack(t)
			}
			log.Printf("[Player] Added track %q to queue | guild=%s front=%v queueLen=%d",
				t.Title, guildID, front, st.Queue.Len())
		})
	}

	e.StartNext(guildID, textChannelID)
	return nil
}

// StartNext moves the front of the queue into the active slot and begins
// rendering. It is a no-op when a track is active or another start is in
// flight: the decision to start and the reservation of the slot happen in
// one critical section. Failed tracks are reported and skipped until one
// starts or the queue empties.
func (e *Engine) StartNext(guildID, textChannelID string) {
	for {
		var (
			next track.Track
			gen  uint64
			ok   bool
		)
		e.reg.WithWrite(guildID, func(st *registry.GuildState) {
			if st.Active != nil || st.Starting {
				return
			}
			t, popped := st.Queue.PopFront()
			if !popped {
				return
			}
			st.Starting = true
			next, gen, ok = t, st.Gen, true
		})
		if !ok {
			return
		}

		log.Printf("[Player] Starting track %q (%s) | guild=%s", next.Title, next.URL, guildID)

		// No lock is held across resolver or transport I/O.
		src, err := e.resolver.Open(next.URL)
		if err != nil {
			log.Printf("[Player] Skipping track %q due to error: %v", next.Title, err)
			e.notify.Say(textChannelID, fmt.Sprintf("Could not play %s due to error %v", next.Title, err))
			e.clearStarting(guildID)
			continue
		}

		sess, found := e.voice.Get(guildID)
		if !found {
			src.Close()
			// Keep the track so a later play resumes from it.
			e.reg.WithWrite(guildID, func(st *registry.GuildState) {
				st.Queue.PushFront(next)
				st.Starting = false
			})
			e.notify.Say(textChannelID, "Not in a voice channel to play in")
			return
		}

		// Stop any stray handle before starting, just in case.
		sess.Stop()
		handle := sess.PlaySource(src, func(ended Handle) { e.onTrackEnd(guildID, textChannelID, ended) })

		stale := false
		e.reg.WithWrite(guildID, func(st *registry.GuildState) {
			st.Starting = false
			if st.Gen != gen {
				stale = true
				return
			}
			st.Active = handle
		})
		if stale {
			// Playback was torn down while this start was in flight.
			log.Printf("[Player] Discarding stale start of %q | guild=%s", next.Title, guildID)
			handle.Stop()
			return
		}

		e.notify.Say(textChannelID, fmt.Sprintf("Playing song [%s](%s)", next.Title, next.URL))
		return
	}
}

// onTrackEnd clears the active slot and pulls the next queued track. End
// callbacks fire asynchronously, so one from a discarded or replaced handle
// can arrive after its successor started; only the handle still stored in
// the active slot may clear it.
func (e *Engine) onTrackEnd(guildID, textChannelID string, ended Handle) {
	superseded := false
	e.reg.WithWrite(guildID, func(st *registry.GuildState) {
		if st.Active != ended {
			superseded = true
			return
		}
		st.Active = nil
	})
	if superseded {
		log.Printf("[Player] Ignoring end of superseded track | guild=%s", guildID)
		return
	}

	log.Printf("[Player] Track ended | guild=%s", guildID)
	e.StartNext(guildID, textChannelID)
}

func (e *Engine) clearStarting(guildID string) {
	e.reg.WithWrite(guildID, func(st *registry.GuildState) {
		st.Starting = false
	})
}

// Pause suspends the active track.
func (e *Engine) Pause(guildID string) error {
	h := e.activeHandle(guildID)
	if h == nil {
		return ErrNotPlaying
	}
	return h.Pause()
}

// Unpause resumes the active track.
func (e *Engine) Unpause(guildID string) error {
	h := e.activeHandle(guildID)
	if h == nil {
		return ErrNotPlaying
	}
	return h.Play()
}

func (e *Engine) activeHandle(guildID string) Handle {
	var h Handle
	e.reg.WithRead(guildID, func(st *registry.GuildState) {
		h = st.Active
	})
	return h
}

// Next skips to the next queued track. With an empty queue it is a no-op:
// stopping the last track would only silence the guild.
func (e *Engine) Next(guildID, textChannelID string) error {
	var (
		h     Handle
		empty = true
	)
	e.reg.WithRead(guildID, func(st *registry.GuildState) {
		h = st.Active
		empty = st.Queue.Len() == 0
	})
	if empty {
		return nil
	}
	if h != nil {
		// End-of-track will start the next one.
		return h.Stop()
	}
	e.StartNext(guildID, textChannelID)
	return nil
}

// Stop clears the queue, stops the active track and leaves the voice
// channel.
func (e *Engine) Stop(guildID string) error {
	var h Handle
	e.reg.WithWrite(guildID, func(st *registry.GuildState) {
		st.Queue.Clear()
		st.Gen++
		h = st.Active
		st.Active = nil
	})
	if h != nil {
		_ = h.Stop()
	}
	return e.voice.Remove(guildID)
}

// Goto discards everything before the k-th displayed track (one-based) and
// makes it the front; the active track is stopped so end-of-track starts
// the new front immediately.
func (e *Engine) Goto(guildID, textChannelID string, k int) error {
	var (
		h     Handle
		valid bool
	)
	e.reg.WithWrite(guildID, func(st *registry.GuildState) {
		if st.Queue.DropFront(k) {
			valid = true
			h = st.Active
		}
	})
	if !valid {
		return ErrInvalidIndex
	}
	if h != nil {
		return h.Stop()
	}
	e.StartNext(guildID, textChannelID)
	return nil
}

// Shuffle permutes the guild's queue uniformly.
func (e *Engine) Shuffle(guildID string) {
	e.reg.WithWrite(guildID, func(st *registry.GuildState) {
		st.Queue.Shuffle()
		log.Printf("[Player] Shuffled queue | guild=%s queueLen=%d", guildID, st.Queue.Len())
	})
}

// QueueSnapshot returns a copy of the first n queued tracks.
func (e *Engine) QueueSnapshot(guildID string, n int) []track.Track {
	var out []track.Track
	e.reg.WithRead(guildID, func(st *registry.GuildState) {
		out = st.Queue.Front(n)
	})
	return out
}

// ClearGuild tears down all playback state for a guild whose voice session
// is gone (the bot was disconnected from the channel). The queue survives a
// user's leave/rejoin, but not the bot's own removal.
func (e *Engine) ClearGuild(guildID string) {
	var h Handle
	e.reg.WithWrite(guildID, func(st *registry.GuildState) {
		st.Queue.Clear()
		st.Gen++
		h = st.Active
		st.Active = nil
	})
	if h != nil {
		_ = h.Stop()
	}
	log.Printf("[Player] Cleared playback state | guild=%s", guildID)
}
