package voice

import (
	"encoding/binary"
	"io"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// TrackHandle controls one rendering track: a goroutine reading PCM frames
// from the source, encoding them to opus and feeding the voice connection.
type TrackHandle struct {
	src   io.ReadCloser
	vc    *discordgo.VoiceConnection
	onEnd func(*TrackHandle)

	mu     sync.Mutex
	paused bool
	resume chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
	endOnce  sync.Once
}

func newTrackHandle(src io.ReadCloser, vc *discordgo.VoiceConnection, onEnd func(*TrackHandle)) *TrackHandle {
	return &TrackHandle{
		src:   src,
		vc:    vc,
		onEnd: onEnd,
		stop:  make(chan struct{}),
	}
}

// Pause suspends rendering. No-op when already paused.
func (h *TrackHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.paused {
		h.paused = true
		h.resume = make(chan struct{})
	}
	return nil
}

// Play resumes a paused track. No-op when not paused.
func (h *TrackHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.paused {
		h.paused = false
		close(h.resume)
	}
	return nil
}

// Stop ends the track. The end callback fires as if the track finished
// naturally. Safe to call more than once.
func (h *TrackHandle) Stop() error {
	h.stopOnce.Do(func() { close(h.stop) })
	return nil
}

func (h *TrackHandle) run() {
	defer h.fireEnd()
	defer h.src.Close()

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		log.Printf("[Voice] Encoder error: %v", err)
		return
	}

	_ = h.vc.Speaking(true)
	defer func() { _ = h.vc.Speaking(false) }()

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		if !h.waitWhilePaused() {
			return
		}

		if _, err := io.ReadFull(h.src, pcmBuf); err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				log.Printf("[Voice] Read error: %v", err)
			}
			return
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			log.Printf("[Voice] Encode error: %v", err)
			return
		}

		select {
		case h.vc.OpusSend <- opus:
		case <-h.stop:
			return
		}
	}
}

// waitWhilePaused blocks until the track is unpaused. Returns false when the
// track was stopped while paused.
func (h *TrackHandle) waitWhilePaused() bool {
	for {
		h.mu.Lock()
		paused := h.paused
		resume := h.resume
		h.mu.Unlock()

		if !paused {
			return true
		}
		select {
		case <-resume:
		case <-h.stop:
			return false
		}
	}
}

// fireEnd invokes the end-of-track callback once, on its own goroutine so a
// slow handler cannot block transport teardown. The callback receives the
// ending handle so listeners can tell it apart from a successor.
func (h *TrackHandle) fireEnd() {
	h.endOnce.Do(func() {
		if h.onEnd != nil {
			go h.onEnd(h)
		}
	})
}
