package app

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/janken/internal/capture"
	"github.com/ayusman/janken/internal/clock"
	"github.com/ayusman/janken/internal/config"
	"github.com/ayusman/janken/internal/detector"
	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
	"github.com/ayusman/janken/internal/hook"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	th := gesture.DefaultThresholds()
	return &config.Config{
		HTTP: config.HTTPConfig{Addr: ":0"},
		Data: config.DataConfig{Dir: t.TempDir()},
		Game: config.GameConfig{LockThreshold: 5, CountdownSeconds: 2},
		Classifier: config.ClassifierConfig{
			ExtendMargin: th.ExtendMargin,
			CurlMargin:   th.CurlMargin,
			FistDistance: th.FistDistance,
			WristRaise:   th.WristRaise,
		},
	}
}

func TestApp_BrowserFramesRecordRound(t *testing.T) {
	clk := clock.NewMock(time.Time{})
	a, err := New(testConfig(t), Options{Clock: clk, Rand: rand.New(rand.NewSource(7))})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Pipeline(), "camera disabled by default")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	s := a.Session()
	for i := 0; i < 5; i++ {
		require.True(t, s.SubmitFrame([]detector.HandLandmarks{detector.PaperLandmarks()}))
	}
	require.True(t, s.Sync())
	require.Equal(t, game.PhaseCountdown, s.Snapshot().Phase)

	for i := 0; i < 2; i++ {
		clk.Advance(time.Second)
		require.True(t, s.Sync())
	}

	snap := s.Snapshot()
	require.NotNil(t, snap.Last)

	rounds, err := a.Store().Rounds().ListBySession(a.Recorder().SessionID())
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, gesture.Paper, rounds[0].Player)
	assert.Equal(t, snap.Last.Computer, rounds[0].Computer)

	sess, err := a.Store().Sessions().GetByID(a.Recorder().SessionID())
	require.NoError(t, err)
	assert.Equal(t, snap.Score.Player, sess.PlayerScore)
	assert.Equal(t, snap.Score.Computer, sess.ComputerScore)

	cancel()
	assert.NoError(t, <-done)
}

func TestApp_CameraPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping camera pipeline test")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.ScissorsLandmarks()})

	cfg := testConfig(t)
	cfg.Camera = config.CameraConfig{Enabled: true, FPS: 100}
	cam.SetFPS(100)

	a, err := New(cfg, Options{Clock: clock.NewMock(time.Time{}), Camera: cam, Detector: det})
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Pipeline())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	waitFor(t, func() bool {
		return a.Session().Snapshot().Phase == game.PhaseCountdown
	})
	assert.Equal(t, gesture.Scissors, a.Session().Snapshot().State.PendingGesture)

	_, seq := a.Frames().Latest()
	assert.NotZero(t, seq)

	cancel()
	require.NoError(t, <-done)
	assert.False(t, cam.IsOpen(), "camera closed on shutdown")
}

func TestApp_RunsRoundHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks are not supported on Windows")
	}

	cfg := testConfig(t)
	cfg.Hooks = config.HooksConfig{Enabled: true, TimeoutMs: 5000}

	hookDir := filepath.Join(cfg.HooksDir(), "record")
	require.NoError(t, os.MkdirAll(hookDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(hookDir, hook.ManifestFile),
		[]byte(`{"name":"record","executable":"run.sh","events":["reveal"]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(hookDir, "run.sh"),
		[]byte("#!/bin/sh\ncat > last.json\necho '{\"success\":true}'\n"), 0755))

	clk := clock.NewMock(time.Time{})
	a, err := New(cfg, Options{Clock: clk, Rand: rand.New(rand.NewSource(3))})
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Hooks())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	s := a.Session()
	for i := 0; i < 5; i++ {
		require.True(t, s.SubmitFrame([]detector.HandLandmarks{detector.RockLandmarks()}))
	}
	require.True(t, s.Sync())
	for i := 0; i < 2; i++ {
		clk.Advance(time.Second)
		require.True(t, s.Sync())
	}
	require.NotNil(t, s.Snapshot().Last)

	a.Hooks().Wait()
	data, err := os.ReadFile(filepath.Join(hookDir, "last.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"player":"rock"`)
	assert.Contains(t, string(data), a.Recorder().SessionID())

	cancel()
	assert.NoError(t, <-done)
}
