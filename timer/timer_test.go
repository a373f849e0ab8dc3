package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func advance(fake *clockwork.FakeClock, d time.Duration) {
	// 以调度周期为步长推进, 保证每个 tick 都被消费
	for elapsed := time.Duration(0); elapsed < d; elapsed += 100 * time.Millisecond {
		fake.Advance(100 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
}

func TestManager_Schedule_Fires(t *testing.T) {
	fake := clockwork.NewFakeClock()
	m := NewManagerWithClock(fake)
	defer m.Stop()

	fired := make(chan struct{}, 1)
	m.Schedule(200*time.Millisecond, 0, func() {
		fired <- struct{}{}
	})

	fake.BlockUntil(1)
	advance(fake, 300*time.Millisecond)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the scheduled task to fire")
	}
}

func TestManager_Cancel(t *testing.T) {
	fake := clockwork.NewFakeClock()
	m := NewManagerWithClock(fake)
	defer m.Stop()

	fired := make(chan struct{}, 1)
	id := m.Schedule(200*time.Millisecond, 0, func() {
		fired <- struct{}{}
	})
	m.Cancel(id)

	fake.BlockUntil(1)
	advance(fake, 500*time.Millisecond)

	select {
	case <-fired:
		t.Fatal("Cancelled task must not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestManager_Interval_Repeats(t *testing.T) {
	fake := clockwork.NewFakeClock()
	m := NewManagerWithClock(fake)
	defer m.Stop()

	fired := make(chan struct{}, 10)
	m.Schedule(100*time.Millisecond, 100*time.Millisecond, func() {
		fired <- struct{}{}
	})

	fake.BlockUntil(1)
	advance(fake, 400*time.Millisecond)

	count := 0
	deadline := time.After(2 * time.Second)
	for count < 2 {
		select {
		case <-fired:
			count++
		case <-deadline:
			t.Fatalf("Expected at least 2 interval fires, got %d", count)
		}
	}
}

func TestManager_OrderOfExecution(t *testing.T) {
	fake := clockwork.NewFakeClock()
	m := NewManagerWithClock(fake)
	defer m.Stop()

	fired := make(chan string, 2)
	m.Schedule(300*time.Millisecond, 0, func() { fired <- "late" })
	m.Schedule(100*time.Millisecond, 0, func() { fired <- "early" })

	fake.BlockUntil(1)
	advance(fake, 200*time.Millisecond)

	select {
	case got := <-fired:
		if got != "early" {
			t.Fatalf("Expected the earlier task first, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the earlier task to fire")
	}

	advance(fake, 200*time.Millisecond)
	select {
	case got := <-fired:
		if got != "late" {
			t.Fatalf("Expected the later task second, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the later task to fire")
	}
}
