package vesync

import (
	"time"

	"github.com/vesync-go/vesync/internal/errors"
)

// TimerStatus is the lifecycle state of a local countdown timer.
type TimerStatus string

// Recognized timer states. TimerDone is terminal: once reached, no
// operation transitions the timer anywhere else.
const (
	TimerActive TimerStatus = "active"
	TimerPaused TimerStatus = "paused"
	TimerDone   TimerStatus = "done"
)

func validTimerStatus(s TimerStatus) bool {
	switch s {
	case TimerActive, TimerPaused, TimerDone:
		return true
	}
	return false
}

// Timer tracks the remaining seconds of a device countdown locally, without
// talking to the cloud. Elapsed wall-clock time is reconciled lazily on every
// read and write instead of by a background goroutine: Status and Remaining
// fold elapsed time into the timer before answering, so reads mutate state.
//
// A Timer assumes a single owner; callers sharing one across goroutines must
// provide their own locking.
type Timer struct {
	// Duration is the originally requested length in seconds.
	Duration int
	// Action describes what happens when the countdown completes, e.g. "off".
	Action string
	// ID identifies the timer on the device, defaults to 1.
	ID int

	status    TimerStatus
	remaining int
	// lastUpdate is the unix second when remaining was last known accurate,
	// 0 while paused or done.
	lastUpdate int64

	now func() time.Time
}

// NewTimer returns an active timer counting down from duration seconds.
func NewTimer(duration int, action string) *Timer {
	return NewTimerWithRemaining(duration, action, 1, duration)
}

// NewTimerWithRemaining returns an active timer with an explicit id and a
// starting point other than the full duration, as reported by a device.
func NewTimerWithRemaining(duration int, action string, id, remaining int) *Timer {
	t := &Timer{
		Duration:  duration,
		Action:    action,
		ID:        id,
		status:    TimerActive,
		remaining: remaining,
		now:       time.Now,
	}
	t.lastUpdate = t.now().Unix()
	return t
}

// reconcile folds wall-clock time elapsed since lastUpdate into remaining.
// The clock is sampled once so the whole adjustment is internally consistent.
// Paused timers accrue nothing; an active timer whose remaining time has run
// out transitions to done.
func (t *Timer) reconcile() {
	if t.status == TimerPaused {
		t.lastUpdate = 0
		return
	}

	now := t.now().Unix()
	var elapsed int64
	if t.lastUpdate != 0 {
		elapsed = now - t.lastUpdate
	}

	if t.status == TimerDone || (t.status == TimerActive && elapsed > int64(t.remaining)) {
		t.status = TimerDone
		t.lastUpdate = 0
		t.remaining = 0
	}
	if t.status == TimerActive {
		t.remaining -= int(elapsed)
		t.lastUpdate = now
	}
}

// Status reconciles elapsed time and returns the current state.
func (t *Timer) Status() TimerStatus {
	t.reconcile()
	return t.status
}

// SetStatus reconciles and then transitions the timer to status. Once a timer
// is done, or when done is requested, the terminal state wins regardless of
// the requested target. Unrecognized values return ErrInvalidStatus and leave
// the timer untouched.
func (t *Timer) SetStatus(status TimerStatus) error {
	if !validTimerStatus(status) {
		return errors.InvalidStatusf("timer status %q", status)
	}
	t.reconcile()
	if status == TimerDone || t.status == TimerDone {
		t.End()
		return nil
	}
	if t.status == TimerPaused && status == TimerActive {
		t.lastUpdate = t.now().Unix()
	}
	if t.status == TimerActive && status == TimerPaused {
		t.lastUpdate = 0
	}
	t.status = status
	return nil
}

// Remaining reconciles elapsed time and returns the seconds left.
func (t *Timer) Remaining() int {
	t.reconcile()
	return t.remaining
}

// SetRemaining sets the seconds left on the timer. Zero or negative values
// end the timer. A timer that is already done stays done with zero remaining;
// setting remaining time never revives it.
func (t *Timer) SetRemaining(seconds int) {
	if seconds <= 0 {
		t.End()
		return
	}
	t.reconcile()
	if t.status == TimerDone {
		t.remaining = 0
		return
	}
	t.remaining = seconds
}

// End unconditionally moves the timer to the terminal done state.
func (t *Timer) End() {
	t.status = TimerDone
	t.remaining = 0
	t.lastUpdate = 0
}

// Start resumes a paused timer. It is a no-op in any other state.
func (t *Timer) Start() {
	if t.status != TimerPaused {
		return
	}
	t.lastUpdate = t.now().Unix()
	t.SetStatus(TimerActive)
}

// Pause stops time from accruing. Done timers stay done.
func (t *Timer) Pause() {
	t.reconcile()
	if t.status == TimerDone {
		return
	}
	t.SetStatus(TimerPaused)
}

// Update applies the optional remaining and status values reported by a
// device, in that order. Nil pointers leave the corresponding field alone.
func (t *Timer) Update(remaining *int, status *TimerStatus) error {
	if remaining != nil {
		t.SetRemaining(*remaining)
	}
	if status != nil {
		return t.SetStatus(*status)
	}
	return nil
}

// IsRunning reports whether the timer is active with time left.
func (t *Timer) IsRunning() bool {
	return t.Remaining() > 0 && t.Status() == TimerActive
}

// IsPaused reports whether the timer is paused.
func (t *Timer) IsPaused() bool {
	return t.Status() == TimerPaused
}

// IsDone reports whether the timer has run out or was ended.
func (t *Timer) IsDone() bool {
	return t.Remaining() <= 0 || t.status == TimerDone
}
