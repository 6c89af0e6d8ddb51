package application

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Scheduler registers one-shot callbacks keyed by broadcast ID. Extracting
// the timer registry behind this interface keeps the broadcast state machine
// testable without real timers, and leaves room to swap in a durable job
// queue later.
type Scheduler interface {
	// Schedule arranges for fn to run once at the given instant. Scheduling
	// the same ID again replaces the previous timer.
	Schedule(id uuid.UUID, at time.Time, fn func())

	// Cancel stops a pending timer. Returns false if no timer was pending.
	Cancel(id uuid.UUID) bool
}

// TimerScheduler is the in-process Scheduler: a mutex-guarded map of
// broadcast ID → *time.Timer. State is volatile — timers do not survive a
// restart, and a second instance would hold its own registry. Both limits
// are accepted; BroadcastService.RearmScheduled covers the restart case.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

// NewTimerScheduler creates an empty TimerScheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[uuid.UUID]*time.Timer)}
}

// Schedule registers fn to fire at the given instant. The registry entry is
// removed before fn runs, so the callback itself never touches the map.
func (s *TimerScheduler) Schedule(id uuid.UUID, at time.Time, fn func()) {
	d := time.Until(at)
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[id]; ok {
		old.Stop()
		log.Warn().Str("id", id.String()).Msg("scheduler: replacing pending timer")
	}

	s.timers[id] = time.AfterFunc(d, func() {
		s.remove(id)
		fn()
	})

	log.Debug().Str("id", id.String()).Time("at", at).Msg("scheduler: timer registered")
}

// Cancel stops and removes a pending timer.
func (s *TimerScheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, id)
	return true
}

// Pending returns the number of registered timers.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *TimerScheduler) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, id)
}
