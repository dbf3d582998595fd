// Package app wires the game session to its landmark sources and
// collaborators: the local camera pipeline, storage, metrics and sound.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ayusman/janken/internal/audio"
	"github.com/ayusman/janken/internal/capture"
	"github.com/ayusman/janken/internal/clock"
	"github.com/ayusman/janken/internal/config"
	"github.com/ayusman/janken/internal/detector"
	"github.com/ayusman/janken/internal/hook"
	"github.com/ayusman/janken/internal/logger"
	"github.com/ayusman/janken/internal/metrics"
	"github.com/ayusman/janken/internal/store"
)

// Options overrides collaborators, mainly for tests.
type Options struct {
	Clock    clock.Clock
	Rand     *rand.Rand
	Camera   capture.Camera
	Detector detector.Detector
}

// App is the running janken process minus its UIs and HTTP server.
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	store    *store.Store
	recorder *store.Recorder
	metrics  *metrics.Metrics
	sound    *audio.SoundManager
	hooks    *hook.Runner
	session  *Session
	frames   *capture.FrameBuffer
	pipeline *Pipeline
}

// New opens the store and builds the session. The camera pipeline is only
// created when camera.enabled is set.
func New(cfg *config.Config, opts Options) (*App, error) {
	a := &App{
		cfg:     cfg,
		log:     logger.With("component", "app"),
		metrics: metrics.New(),
		frames:  capture.NewFrameBuffer(),
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = st

	rec, err := store.NewRecorder(st)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("start session record: %w", err)
	}
	a.recorder = rec

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	a.session = NewSession(SessionConfig{
		Game:       cfg.GameSettings(),
		Thresholds: cfg.Thresholds(),
		Clock:      opts.Clock,
		Rand:       rng,
		Observer:   a.metrics,
	})
	a.session.AddListener(a.metrics)
	a.session.AddListener(a.recorder)

	if cfg.Audio.Enabled {
		a.sound = audio.NewSoundManager(cfg.Audio.Volume)
		a.session.AddListener(a.sound)
	}

	if cfg.Hooks.Enabled {
		m := hook.NewManager(cfg.HooksDir())
		if err := m.Discover(); err != nil {
			a.log.Warn("failed to discover hooks", "dir", m.Dir(), "error", err)
		} else if n := len(m.List()); n > 0 {
			a.log.Info("round hooks loaded", "dir", m.Dir(), "count", n)
		}
		a.hooks = hook.NewRunner(m, hook.NewExecutor(cfg.HookTimeout()), rec.SessionID)
		a.session.AddListener(a.hooks)
	}

	if cfg.Camera.Enabled {
		cam := opts.Camera
		if cam == nil {
			cam = capture.NewCamera(capture.Options{
				DeviceID: cfg.Camera.ID,
				FPS:      cfg.Camera.FPS,
				Mirror:   true,
			})
		}
		a.pipeline = NewPipeline(cam, a.detector(opts.Detector), a.session, a.frames)
	}

	return a, nil
}

// detector prefers the given detector, then MediaPipe, then a mock that
// never sees a hand.
func (a *App) detector(d detector.Detector) detector.Detector {
	if d != nil {
		return d
	}
	mp, err := detector.NewMediaPipeDetector(a.cfg.DetectorSettings())
	if err == nil {
		a.log.Info("using MediaPipe hand detection")
		return mp
	}
	a.log.Warn("MediaPipe not available, camera frames will show no hands", "error", err)
	return detector.NewMockDetector()
}

// Run starts sound, hooks and the camera pipeline, then runs the session until
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.sound != nil {
		if err := a.sound.Initialize(); err != nil {
			a.log.Warn("audio unavailable, continuing silently", "error", err)
		}
		defer a.sound.Cleanup()
	}

	if a.hooks != nil {
		hookCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			a.hooks.Run(hookCtx)
			close(done)
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	if a.pipeline != nil {
		if err := a.pipeline.Start(); err != nil {
			a.log.Error("camera unavailable, accepting browser landmarks only", "error", err)
		} else {
			defer a.pipeline.Stop()
		}
	}

	a.log.Info("session running", "session", a.recorder.SessionID())
	return a.session.Run(ctx)
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) Session() *Session            { return a.session }
func (a *App) Store() *store.Store          { return a.store }
func (a *App) Recorder() *store.Recorder    { return a.recorder }
func (a *App) Metrics() *metrics.Metrics    { return a.metrics }
func (a *App) Frames() *capture.FrameBuffer { return a.frames }
func (a *App) Pipeline() *Pipeline          { return a.pipeline }
func (a *App) Hooks() *hook.Runner          { return a.hooks }
