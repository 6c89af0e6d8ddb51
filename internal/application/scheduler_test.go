package application_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/undercover-social/backend/internal/application"
)

func TestTimerSchedulerFiresOnce(t *testing.T) {
	s := application.NewTimerScheduler()
	fired := make(chan struct{}, 2)

	s.Schedule(uuid.New(), time.Now().Add(20*time.Millisecond), func() {
		fired <- struct{}{}
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	select {
	case <-fired:
		t.Fatal("timer fired twice")
	case <-time.After(100 * time.Millisecond):
	}

	if s.Pending() != 0 {
		t.Fatalf("pending = %d after fire, want 0", s.Pending())
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	s := application.NewTimerScheduler()
	id := uuid.New()
	fired := make(chan struct{}, 1)

	s.Schedule(id, time.Now().Add(50*time.Millisecond), func() {
		fired <- struct{}{}
	})

	if !s.Cancel(id) {
		t.Fatal("Cancel returned false for a pending timer")
	}
	if s.Cancel(id) {
		t.Fatal("Cancel returned true for an already-cancelled timer")
	}

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(200 * time.Millisecond):
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d after cancel, want 0", s.Pending())
	}
}

func TestTimerSchedulerReplacesPendingTimer(t *testing.T) {
	s := application.NewTimerScheduler()
	id := uuid.New()
	which := make(chan string, 2)

	s.Schedule(id, time.Now().Add(time.Hour), func() { which <- "first" })
	s.Schedule(id, time.Now().Add(20*time.Millisecond), func() { which <- "second" })

	select {
	case got := <-which:
		if got != "second" {
			t.Fatalf("fired %q, want the replacement timer", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("replacement timer never fired")
	}

	if s.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", s.Pending())
	}
}

func TestTimerSchedulerPastDueFiresImmediately(t *testing.T) {
	s := application.NewTimerScheduler()
	fired := make(chan struct{}, 1)

	s.Schedule(uuid.New(), time.Now().Add(-time.Minute), func() {
		fired <- struct{}{}
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("past-due timer never fired")
	}
}
