package app

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/janken/internal/clock"
	"github.com/ayusman/janken/internal/detector"
	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
)

type eventLog struct {
	mu        sync.Mutex
	countdown []int
	reveals   []game.Result
	resets    []game.ResetReason
	presence  []bool
}

func (l *eventLog) Status(game.Status) {}

func (l *eventLog) HandPresence(v bool) {
	l.mu.Lock()
	l.presence = append(l.presence, v)
	l.mu.Unlock()
}

func (l *eventLog) Countdown(n int) {
	l.mu.Lock()
	l.countdown = append(l.countdown, n)
	l.mu.Unlock()
}

func (l *eventLog) Reveal(r game.Result) {
	l.mu.Lock()
	l.reveals = append(l.reveals, r)
	l.mu.Unlock()
}

func (l *eventLog) Reset(r game.ResetReason) {
	l.mu.Lock()
	l.resets = append(l.resets, r)
	l.mu.Unlock()
}

type frameCounter struct {
	mu     sync.Mutex
	counts map[gesture.Gesture]int
}

func (c *frameCounter) ObserveFrame(g gesture.Gesture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[gesture.Gesture]int{}
	}
	c.counts[g]++
}

type sessionFixture struct {
	clock   *clock.Mock
	session *Session
	events  *eventLog
	frames  *frameCounter
	cancel  context.CancelFunc
	stopped chan struct{}
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		clock:   clock.NewMock(time.Time{}),
		events:  &eventLog{},
		frames:  &frameCounter{},
		stopped: make(chan struct{}),
	}
	f.session = NewSession(SessionConfig{
		Clock:    f.clock,
		Rand:     rand.New(rand.NewSource(1)),
		Observer: f.frames,
	})
	f.session.AddListener(f.events)

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	go func() {
		f.session.Run(ctx)
		close(f.stopped)
	}()

	t.Cleanup(f.stop)
	return f
}

func (f *sessionFixture) stop() {
	f.cancel()
	<-f.stopped
}

// submit sends one frame and waits until it has been applied.
func (f *sessionFixture) submit(t *testing.T, hands ...detector.HandLandmarks) {
	t.Helper()
	require.True(t, f.session.SubmitFrame(hands))
	require.True(t, f.session.Sync())
}

func (f *sessionFixture) hold(t *testing.T, hand detector.HandLandmarks, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		f.submit(t, hand)
	}
}

func (f *sessionFixture) tick(t *testing.T) {
	t.Helper()
	f.clock.Advance(time.Second)
	require.True(t, f.session.Sync())
}

func TestSession_FullRound(t *testing.T) {
	f := newSessionFixture(t)

	f.hold(t, detector.RockLandmarks(), 14)
	snap := f.session.Snapshot()
	assert.Equal(t, game.PhaseTracking, snap.Phase)
	assert.Equal(t, 14, snap.State.StableFrameCount)
	assert.Equal(t, gesture.Rock, snap.State.PendingGesture)

	f.submit(t, detector.RockLandmarks())
	snap = f.session.Snapshot()
	assert.Equal(t, game.PhaseCountdown, snap.Phase)
	assert.True(t, snap.State.RoundInProgress)
	assert.Equal(t, 3, snap.Remaining)

	f.tick(t)
	f.tick(t)
	f.tick(t)

	snap = f.session.Snapshot()
	require.Equal(t, game.PhaseFinished, snap.Phase)
	require.NotNil(t, snap.Last)
	assert.Equal(t, gesture.Rock, snap.Last.Player)
	assert.Equal(t, game.Decide(gesture.Rock, snap.Last.Computer), snap.Last.Outcome)

	f.events.mu.Lock()
	assert.Equal(t, []int{3, 2, 1, 0}, f.events.countdown)
	assert.Len(t, f.events.reveals, 1)
	f.events.mu.Unlock()

	f.frames.mu.Lock()
	assert.Equal(t, 15, f.frames.counts[gesture.Rock])
	f.frames.mu.Unlock()
}

func TestSession_FramesIgnoredDuringRound(t *testing.T) {
	f := newSessionFixture(t)

	f.hold(t, detector.PaperLandmarks(), 15)
	f.hold(t, detector.ScissorsLandmarks(), 5)

	snap := f.session.Snapshot()
	assert.Equal(t, gesture.Paper, snap.State.PendingGesture)
	assert.Equal(t, 15, snap.State.StableFrameCount)
}

func TestSession_HandLostAborts(t *testing.T) {
	f := newSessionFixture(t)

	f.hold(t, detector.PaperLandmarks(), 15)
	f.tick(t)
	f.submit(t) // no hand
	f.tick(t)
	f.tick(t)

	snap := f.session.Snapshot()
	assert.Equal(t, game.PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Last)
	assert.False(t, snap.State.HandVisible)

	f.events.mu.Lock()
	assert.Equal(t, []game.ResetReason{game.ResetAborted}, f.events.resets)
	assert.Equal(t, []bool{true, false}, f.events.presence)
	f.events.mu.Unlock()
}

func TestSession_PlayAgainAndNewGame(t *testing.T) {
	f := newSessionFixture(t)

	for i := 0; i < 3; i++ {
		f.hold(t, detector.ScissorsLandmarks(), 15)
		f.tick(t)
		f.tick(t)
		f.tick(t)
		require.NotNil(t, f.session.Snapshot().Last)
		require.True(t, f.session.PlayAgain())
	}

	snap := f.session.Snapshot()
	assert.Equal(t, game.PhaseIdle, snap.Phase)
	assert.Equal(t, 0, snap.State.StableFrameCount)

	f.events.mu.Lock()
	total := 0
	for _, r := range f.events.reveals {
		if r.Outcome != game.Draw {
			total++
		}
	}
	f.events.mu.Unlock()
	assert.Equal(t, total, snap.Score.Player+snap.Score.Computer)

	require.True(t, f.session.NewGame())
	assert.Equal(t, game.Score{}, f.session.Snapshot().Score)
}

func TestSession_PlayAgainCancelsCountdown(t *testing.T) {
	f := newSessionFixture(t)

	f.hold(t, detector.RockLandmarks(), 15)
	require.True(t, f.session.PlayAgain())

	f.tick(t)
	f.tick(t)
	f.tick(t)

	f.events.mu.Lock()
	assert.Equal(t, []int{3}, f.events.countdown, "no tick after reset")
	assert.Empty(t, f.events.reveals)
	f.events.mu.Unlock()
	assert.Equal(t, 0, f.clock.Pending())
}

func TestSession_UsesFirstHandOnly(t *testing.T) {
	f := newSessionFixture(t)

	f.submit(t, detector.PaperLandmarks(), detector.RockLandmarks())
	assert.Equal(t, gesture.Paper, f.session.Snapshot().State.PendingGesture)
}

func TestSession_UnclassifiedPoseClearsStreak(t *testing.T) {
	f := newSessionFixture(t)

	f.hold(t, detector.RockLandmarks(), 10)
	f.submit(t, detector.ThumbsUpLandmarks())

	snap := f.session.Snapshot()
	assert.Equal(t, game.PhaseIdle, snap.Phase)
	assert.Equal(t, 0, snap.State.StableFrameCount)
	assert.True(t, snap.State.HandVisible)
}

func TestSession_DropsFramesWhenFull(t *testing.T) {
	s := NewSession(SessionConfig{QueueSize: 2})

	hand := []detector.HandLandmarks{detector.RockLandmarks()}
	assert.True(t, s.SubmitFrame(hand))
	assert.True(t, s.SubmitFrame(hand))
	assert.False(t, s.SubmitFrame(hand), "third frame must be dropped, not queued")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.True(t, s.Sync())
	assert.Equal(t, 2, s.Snapshot().State.StableFrameCount)

	cancel()
	<-done
}

func TestSession_StoppedSessionRejectsInput(t *testing.T) {
	f := newSessionFixture(t)
	f.stop()

	assert.False(t, f.session.SubmitFrame(nil))
	assert.False(t, f.session.PlayAgain())
	assert.False(t, f.session.NewGame())
	assert.False(t, f.session.Sync())
	assert.Equal(t, game.PhaseIdle, f.session.Snapshot().Phase)
}

func TestSession_StopCancelsCountdown(t *testing.T) {
	f := newSessionFixture(t)

	f.hold(t, detector.RockLandmarks(), 15)
	f.stop()

	assert.Equal(t, 0, f.clock.Pending())
	f.clock.Advance(5 * time.Second)
}

func TestListeners_AddWhileRunning(t *testing.T) {
	f := newSessionFixture(t)

	late := &eventLog{}
	f.session.AddListener(late)
	f.submit(t, detector.RockLandmarks())

	late.mu.Lock()
	defer late.mu.Unlock()
	assert.Equal(t, []bool{true}, late.presence)
}

func TestSession_ShortPointListIsVisibleButUnclassified(t *testing.T) {
	f := newSessionFixture(t)

	require.True(t, f.session.SubmitPoints([]detector.Point3D{{X: 0.5, Y: 0.5}}))
	require.True(t, f.session.Sync())

	snap := f.session.Snapshot()
	assert.True(t, snap.State.HandVisible)
	assert.Equal(t, gesture.None, snap.State.PendingGesture)

	require.True(t, f.session.SubmitPoints([]detector.Point3D{}))
	require.True(t, f.session.Sync())
	assert.True(t, f.session.Snapshot().State.HandVisible, "empty but non-nil list is still a hand")

	f.frames.mu.Lock()
	assert.Equal(t, 2, f.frames.counts[gesture.None])
	f.frames.mu.Unlock()
}
