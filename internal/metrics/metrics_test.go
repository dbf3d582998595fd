package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
)

func TestMetrics_Frames(t *testing.T) {
	m := New()

	m.ObserveFrame(gesture.Rock)
	m.ObserveFrame(gesture.Rock)
	m.ObserveFrame(gesture.None)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames.WithLabelValues("rock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frames.WithLabelValues("none")))
}

func TestMetrics_RoundLifecycle(t *testing.T) {
	m := New()

	m.HandPresence(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handShown))

	m.Status(game.Status{Phase: game.PhaseTracking})
	m.Status(game.Status{Phase: game.PhaseCountdown})
	m.Status(game.Status{Phase: game.PhaseCountdown})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.countdowns), "repeated countdown status counts once")

	m.Reveal(game.Result{Outcome: game.Win})
	m.Reset(game.ResetPlayAgain)
	m.Status(game.Status{Phase: game.PhaseIdle})
	m.Status(game.Status{Phase: game.PhaseCountdown})
	m.Reset(game.ResetAborted)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.countdowns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rounds.WithLabelValues("win")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aborted))

	m.HandPresence(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.handShown))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Reveal(game.Result{Outcome: game.Draw})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `janken_rounds_total{outcome="draw"} 1`))
}

func TestMetrics_IsListener(t *testing.T) {
	var _ game.Listener = New()
}
