package resolver

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
)

const (
	channels   = 2
	sampleRate = 48000
)

// pcmStream is a running ffmpeg decode of a media URL into s16le PCM.
// Close kills the child process and reaps it.
type pcmStream struct {
	reader io.ReadCloser
	cmd    *exec.Cmd
	once   sync.Once
}

func (s *pcmStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *pcmStream) Close() error {
	s.once.Do(func() {
		s.reader.Close()
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
	})
	return nil
}

// openPCM spawns ffmpeg decoding the media URL to 48kHz stereo s16le on a
// pipe, the frame layout the voice transport expects.
func (r *Resolver) openPCM(link string) (io.ReadCloser, error) {
	ffmpeg := exec.Command(r.ffmpegPath,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", link,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := ffmpeg.Start(); err != nil {
		return nil, fmt.Errorf("command start error: %w", err)
	}

	return &pcmStream{reader: reader, cmd: ffmpeg}, nil
}
