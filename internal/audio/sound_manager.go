// Package audio plays short synthesized cues for countdown ticks and round
// outcomes. Audio is optional: every method is a no-op until Initialize
// succeeds.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/ayusman/janken/internal/game"
)

const (
	sampleRate = beep.SampleRate(48000)

	speakerBufferDurationMs = 100
	tickDurationMs          = 90
	noteDurationMs          = 140
	fadeDurationMs          = 8
)

// Cue names a sound.
type Cue int

const (
	CueTick Cue = iota
	CueWin
	CueLose
	CueDraw
)

func (c Cue) String() string {
	switch c {
	case CueTick:
		return "tick"
	case CueWin:
		return "win"
	case CueLose:
		return "lose"
	case CueDraw:
		return "draw"
	}
	return "unknown"
}

// Note frequencies in Hz.
const (
	noteA4 = 440.00
	noteC5 = 523.25
	noteE5 = 659.25
	noteG5 = 783.99
	noteA5 = 880.00
	noteC4 = 261.63
	noteE4 = 329.63
	noteG4 = 392.00
)

var cueNotes = map[Cue][]float64{
	CueWin:  {noteC5, noteE5, noteG5},
	CueLose: {noteG4, noteE4, noteC4},
	CueDraw: {noteA4, noteA4},
}

// SoundManager owns the speaker mixer. It implements game.Listener.
type SoundManager struct {
	game.NopListener

	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

// NewSoundManager creates a manager with the given volume in [0, 1].
func NewSoundManager(volume float64) *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: math.Max(0, math.Min(1, volume)),
	}
}

// Initialize opens the default output device.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*speakerBufferDurationMs))
	if err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences everything. beep has no speaker close, so the device
// stays open with an empty mixer.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// Play queues a cue on the mixer.
func (sm *SoundManager) Play(c Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.volume == 0 {
		return
	}

	s := Render(c, sm.volume)
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// Countdown ticks on every non-zero value.
func (sm *SoundManager) Countdown(remaining int) {
	if remaining > game.CountdownDone {
		sm.Play(CueTick)
	}
}

func (sm *SoundManager) Reveal(r game.Result) {
	switch r.Outcome {
	case game.Win:
		sm.Play(CueWin)
	case game.Lose:
		sm.Play(CueLose)
	case game.Draw:
		sm.Play(CueDraw)
	}
}

// Render builds the finite streamer for a cue at the given gain.
func Render(c Cue, gain float64) beep.Streamer {
	if c == CueTick {
		return beep.Take(sampleRate.N(time.Millisecond*tickDurationMs), NewToneGenerator(sampleRate, noteA5, gain))
	}

	notes := cueNotes[c]
	parts := make([]beep.Streamer, 0, len(notes))
	for _, f := range notes {
		parts = append(parts, beep.Take(sampleRate.N(time.Millisecond*noteDurationMs), NewToneGenerator(sampleRate, f, gain)))
	}
	return beep.Seq(parts...)
}

// ToneGenerator is a sine with a short linear fade-in and exponential tail.
type ToneGenerator struct {
	sr   beep.SampleRate
	freq float64
	gain float64
	pos  int
	fade int
}

// NewToneGenerator creates an endless tone; wrap it with beep.Take.
func NewToneGenerator(sr beep.SampleRate, freq, gain float64) *ToneGenerator {
	return &ToneGenerator{
		sr:   sr,
		freq: freq,
		gain: gain,
		fade: sr.N(time.Millisecond * fadeDurationMs),
	}
}

func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		envelope := math.Exp(-t * 6)
		if g.pos < g.fade {
			envelope *= float64(g.pos) / float64(g.fade)
		}

		sample := 0.3 * g.gain * envelope * math.Sin(2*math.Pi*g.freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ToneGenerator) Err() error {
	return nil
}
