package resttimer_test

import (
	"testing"
	"time"

	"alcyxob/overload/internal/resttimer"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTimer() (*resttimer.Timer, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	return resttimer.New(clk.now), clk
}

func TestTimer_CountsDownOncePerSecond(t *testing.T) {
	timer, clk := newTimer()
	assert.Equal(t, 0, timer.Remaining())

	timer.Start(0)
	assert.Equal(t, 90, timer.Remaining())

	clk.advance(500 * time.Millisecond)
	assert.Equal(t, 90, timer.Remaining())
	clk.advance(500 * time.Millisecond)
	assert.Equal(t, 89, timer.Remaining())

	clk.advance(89 * time.Second)
	assert.Equal(t, 0, timer.Remaining())
	assert.False(t, timer.Running())

	clk.advance(10 * time.Second)
	assert.Equal(t, 0, timer.Remaining(), "never goes negative")
}

func TestTimer_ExtendKeepsCadence(t *testing.T) {
	timer, clk := newTimer()
	timer.StartSeconds(60)

	clk.advance(1500 * time.Millisecond)
	assert.Equal(t, 59, timer.Remaining())

	timer.Extend(resttimer.ExtendStep)
	assert.Equal(t, 74, timer.Remaining())

	clk.advance(500 * time.Millisecond)
	assert.Equal(t, 73, timer.Remaining(), "tick lands on the original second boundary")
}

func TestTimer_ExtendIdleStartsFresh(t *testing.T) {
	timer, _ := newTimer()
	timer.Extend(resttimer.ExtendStep)
	assert.Equal(t, 15, timer.Remaining())
	assert.True(t, timer.Running())
}

func TestTimer_StopAndRestart(t *testing.T) {
	timer, clk := newTimer()
	timer.StartSeconds(120)
	clk.advance(10 * time.Second)

	timer.Stop()
	assert.Equal(t, 0, timer.Remaining())
	assert.False(t, timer.Running())

	timer.StartSeconds(45)
	assert.Equal(t, 45, timer.Remaining())
}
