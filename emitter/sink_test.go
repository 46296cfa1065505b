package emitter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Nemiari/crowd-hydrodynamics/core"
	"github.com/Nemiari/crowd-hydrodynamics/emitter"
)

func TestSinkPointEligibility(t *testing.T) {
	s := &emitter.Sink{Position: core.Vector2{X: 10, Y: 10}, Range: 5, Rate: 10}
	assert.True(t, s.Eligible(core.Vector2{X: 12, Y: 10}))
	assert.False(t, s.Eligible(core.Vector2{X: 16, Y: 10}))
}

func TestSinkLineEligibility(t *testing.T) {
	s := &emitter.Sink{
		Position:  core.Vector2{X: 0, Y: 0},
		Direction: core.Vector2{X: 1, Y: 0},
		Range:     1,
		Length:    4,
		Rate:      10,
	}
	assert.True(t, s.Eligible(core.Vector2{X: 1.5, Y: 0.5}))
	assert.False(t, s.Eligible(core.Vector2{X: 1.5, Y: 2}), "perpendicular distance exceeds range")
	assert.False(t, s.Eligible(core.Vector2{X: 3, Y: 0}), "parallel distance exceeds half the length")
}

func TestSinkReadyGatesOnRateAndInterval(t *testing.T) {
	s := &emitter.Sink{Rate: 0}
	assert.False(t, s.Ready(time.Unix(0, 0)))

	s = &emitter.Sink{Rate: 100} // 10ms interval
	now := time.Unix(0, 0)
	assert.True(t, s.Ready(now))
	s.MarkDrained(now)
	assert.False(t, s.Ready(now.Add(5*time.Millisecond)))
	assert.True(t, s.Ready(now.Add(11*time.Millisecond)))
}
