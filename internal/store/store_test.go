package store

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/scene"
)

func newTestStore() *Store {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger)
}

func TestDefaults(t *testing.T) {
	s := newTestStore()
	st := s.GetState()

	assert.Equal(t, DefaultSpeed, st.Playback.Speed)
	assert.False(t, st.Playback.IsPlaying)
	assert.Nil(t, st.Algorithm)
}

func TestGetStateIsDeepCopy(t *testing.T) {
	s := newTestStore()
	s.LoadScene(&algorithms.Info{Slug: "x"}, []scene.Entity{{ID: "pillar-0", Props: map[string]any{"c": 1}}}, "Loaded: X")
	s.UpdateVisualState(VisualPatch{ActiveIndices: []int{0}})

	st := s.GetState()
	st.Visual.Entities[0].ID = "changed"
	st.Visual.Entities[0].Props["c"] = 2
	st.Visual.ActiveIndices[0] = 9
	st.Algorithm.Slug = "y"

	fresh := s.GetState()
	assert.Equal(t, "pillar-0", fresh.Visual.Entities[0].ID)
	assert.Equal(t, 1, fresh.Visual.Entities[0].Props["c"])
	assert.Equal(t, []int{0}, fresh.Visual.ActiveIndices)
	assert.Equal(t, "x", fresh.Algorithm.Slug)
}

func TestUpdateVisualStateMergesShallowly(t *testing.T) {
	s := newTestStore()
	s.UpdateVisualState(VisualPatch{Narrative: Ptr("a"), HighlightedCode: Ptr(3)})
	s.UpdateVisualState(VisualPatch{Narrative: Ptr("b")})

	st := s.GetState()
	assert.Equal(t, "b", st.Visual.Narrative)
	assert.Equal(t, 3, st.Visual.HighlightedCode)
}

func TestTransportFlags(t *testing.T) {
	s := newTestStore()

	s.Play()
	assert.Equal(t, Playback{IsPlaying: true, Speed: 1}, s.Playback())

	s.Pause()
	assert.Equal(t, Playback{IsPaused: true, Speed: 1}, s.Playback())

	s.Stop()
	assert.Equal(t, Playback{Speed: 1}, s.Playback())

	s.Play()
	s.SetComplete()
	pb := s.Playback()
	assert.True(t, pb.IsComplete)
	assert.False(t, pb.IsPlaying)
}

func TestNextStepClampsToTotal(t *testing.T) {
	s := newTestStore()

	s.NextStep()
	s.NextStep()
	assert.Equal(t, 2, s.Playback().CurrentStep, "no clamp without a total")

	s.SetTotalSteps(3)
	for range 5 {
		s.NextStep()
	}
	assert.Equal(t, 3, s.Playback().CurrentStep)
}

func TestSetSpeedValidation(t *testing.T) {
	s := newTestStore()

	require.NoError(t, s.SetSpeed(2))
	assert.Equal(t, 2.0, s.Playback().Speed)

	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, s.SetSpeed(bad), ErrInvalidSpeed)
	}
	assert.Equal(t, 2.0, s.Playback().Speed)
}

func TestResetAndLoadSceneKeepSpeed(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.SetSpeed(0.5))
	s.LoadScene(&algorithms.Info{Slug: "a"}, []scene.Entity{{ID: "pillar-0"}}, "Loaded: A")
	s.Play()
	s.SetTotalSteps(10)
	s.NextStep()

	s.Reset()
	st := s.GetState()
	assert.Equal(t, "Reset", st.Visual.Narrative)
	assert.Empty(t, st.Visual.Entities)
	assert.Equal(t, Playback{Speed: 0.5}, st.Playback)
	require.NotNil(t, st.Algorithm)

	s.LoadScene(&algorithms.Info{Slug: "b"}, []scene.Entity{{ID: "sphere-0"}}, "Loaded: B")
	st = s.GetState()
	assert.Equal(t, "b", st.Algorithm.Slug)
	assert.Equal(t, "Loaded: B", st.Visual.Narrative)
	assert.Equal(t, 0.5, st.Playback.Speed)
}

func TestVersionIncreases(t *testing.T) {
	s := newTestStore()
	v0 := s.GetState().Version
	s.Play()
	s.Mutate(func(v *VisualState) { v.Narrative = "x" })
	assert.Equal(t, v0+2, s.GetState().Version)
}

func TestSubscribeCoalescesAndCloses(t *testing.T) {
	s := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)

	s.Play()
	s.Pause()
	s.Stop()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal")
	}
	select {
	case <-ch:
		t.Fatal("signals should coalesce")
	default:
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Changes after unsubscribe must not panic on the closed channel
	s.Play()
}
