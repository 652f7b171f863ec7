package audio

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// SampleRate is the speaker's output rate. Tracks at other rates are
// resampled.
const SampleRate beep.SampleRate = 44100

// Player loops one track at a time.
type Player struct {
	log    *slog.Logger
	tracks Tracklist

	mu       sync.Mutex
	current  string
	source   beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	speakers bool

	tap amplitudeTap
}

func NewPlayer(tracks Tracklist, log *slog.Logger) *Player {
	return &Player{tracks: tracks, log: log.With("component", "audio")}
}

func (p *Player) Tracks() []string { return p.tracks.Names() }

func (p *Player) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Select loads a track, paused. The previous track is closed.
func (p *Player) Select(name string) error {
	path, ok := p.tracks[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownTrack)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("track %q: %w", name, err)
	}
	source, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("track %q: %w", name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.speakers {
		if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
			source.Close()
			return fmt.Errorf("speaker: %w", err)
		}
		p.speakers = true
	}
	speaker.Clear()
	if p.source != nil {
		p.source.Close()
	}

	var s beep.Streamer = beep.Loop(-1, source)
	if format.SampleRate != SampleRate {
		s = beep.Resample(4, format.SampleRate, SampleRate, s)
	}
	p.source = source
	p.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	p.current = name
	p.tap.reset()
	speaker.Play(p.tap.wrap(p.ctrl))
	p.log.Info("track selected", "track", name, "rate", int(format.SampleRate))
	return nil
}

func (p *Player) Play()  { p.setPaused(false) }
func (p *Player) Pause() { p.setPaused(true) }

// Toggle flips between playing and paused.
func (p *Player) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = !p.ctrl.Paused
	speaker.Unlock()
}

func (p *Player) setPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return !p.ctrl.Paused
}

// Amplitude is the loudest sample of the most recently streamed block,
// scaled to int16. It is zero while paused or before a track is selected.
func (p *Player) Amplitude() int16 {
	return p.tap.amplitude()
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.speakers {
		speaker.Clear()
	}
	if p.source != nil {
		p.source.Close()
		p.source = nil
	}
	p.ctrl = nil
	p.current = ""
	p.tap.reset()
}

// amplitudeTap records the peak of each block passing through it. The
// speaker goroutine writes, the render thread reads.
type amplitudeTap struct {
	peak atomic.Int32
}

func (t *amplitudeTap) wrap(s beep.Streamer) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		var peak float64
		for _, smp := range samples[:n] {
			v := (smp[0] + smp[1]) / 2
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
		if peak > 1 {
			peak = 1
		}
		t.peak.Store(int32(peak * 32767))
		return n, ok
	})
}

func (t *amplitudeTap) amplitude() int16 {
	return int16(t.peak.Load())
}

func (t *amplitudeTap) reset() {
	t.peak.Store(0)
}
