package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleFiresOnce(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	m.Schedule(10*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})

	time.Sleep(300 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("A one-shot task fired %d times, expected 1", got)
	}
}

func TestScheduleRepeats(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	m.Schedule(10*time.Millisecond, 100*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	time.Sleep(450 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got < 2 {
		t.Errorf("A repeating task fired %d times, expected at least 2", got)
	}
}

func TestCancel(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	id := m.Schedule(200*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.Cancel(id)

	time.Sleep(400 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("A cancelled task fired %d times", got)
	}
}

func TestStopDropsPending(t *testing.T) {
	m := NewManager()

	var fired int32
	m.Schedule(150*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.Stop()

	time.Sleep(400 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("A task fired %d times after Stop", got)
	}
}
