// ABOUTME: Tests for Flash expiry and the request lifetime tracker
// ABOUTME: Uses a fake clock and blocking contexts instead of sleeping

package views

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlashExpiresAfterDelay(t *testing.T) {
	clock := newFakeClock()
	f := NewFlash(clock.Now, 3*time.Second)

	assert.Empty(t, f.Message())
	f.Show("Saved!")
	assert.Equal(t, "Saved!", f.Message())

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, "Saved!", f.Message())

	clock.Advance(time.Millisecond)
	assert.Empty(t, f.Message())
}

func TestFlashShowRestartsDelay(t *testing.T) {
	clock := newFakeClock()
	f := NewFlash(clock.Now, 3*time.Second)

	f.Show("first")
	clock.Advance(2 * time.Second)
	f.Show("second")
	clock.Advance(2 * time.Second)
	assert.Equal(t, "second", f.Message())
}

func TestFlashWithoutDelayStaysUntilCleared(t *testing.T) {
	clock := newFakeClock()
	f := NewFlash(clock.Now, 0)

	f.Show("sticky")
	clock.Advance(time.Hour)
	assert.Equal(t, "sticky", f.Message())

	f.Clear()
	assert.Empty(t, f.Message())
}

func TestInflightLoadCancelsPrevious(t *testing.T) {
	f := newInflight()
	defer f.close()

	first, seq1, cancel1 := f.load(context.Background())
	defer cancel1()
	second, seq2, cancel2 := f.load(context.Background())
	defer cancel2()

	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())
	assert.False(t, f.current(seq1))
	assert.True(t, f.current(seq2))
}

func TestInflightOpSurvivesLoadsButNotClose(t *testing.T) {
	f := newInflight()

	op, cancelOp := f.op(context.Background())
	defer cancelOp()
	_, seq, cancelLoad := f.load(context.Background())
	defer cancelLoad()

	assert.NoError(t, op.Err())
	assert.True(t, f.open())

	f.close()
	select {
	case <-op.Done():
	case <-time.After(time.Second):
		t.Fatal("op context not cancelled by close")
	}
	assert.False(t, f.open())
	assert.False(t, f.current(seq))
}
