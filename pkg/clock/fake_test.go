package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestGivenFakeClockThenTimeStandsStill(t *testing.T) {
	c := Fake(epoch)
	assert.Equal(t, epoch, c.Now())
	c.Advance(3 * time.Second)
	assert.Equal(t, epoch.Add(3*time.Second), c.Now())
}

func TestGivenPendingAfterThenFireOnlyPastDeadline(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(time.Second)
	assert.Equal(t, 1, c.Waiters())

	c.Advance(500 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("fired before deadline")
	default:
	}

	c.Advance(500 * time.Millisecond)
	select {
	case fired := <-ch:
		assert.Equal(t, epoch.Add(time.Second), fired)
	default:
		t.Fatal("did not fire at deadline")
	}
	assert.Equal(t, 0, c.Waiters())
}

func TestGivenNonPositiveDurationThenFireImmediately(t *testing.T) {
	c := Fake(epoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("zero duration should fire immediately")
	}
}

func TestGivenGoroutineParkedThenWaitForWaitersReturns(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-c.After(time.Minute)
		close(done)
	}()
	c.WaitForWaiters(1)
	c.Advance(time.Minute)
	<-done
}

func TestGivenRealClockThenAfterFires(t *testing.T) {
	c := Real()
	before := c.Now()
	<-c.After(time.Millisecond)
	assert.True(t, c.Now().After(before))
}
