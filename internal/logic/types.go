// Package logic contains pure scheduling state for the macerator.
// This package has NO external dependencies (no GPIO, I2C, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters.
package logic

import "time"

// RelayState represents what the mixing relay is currently doing.
type RelayState string

const (
	RelayMixing RelayState = "MIXING"
	RelayIdle   RelayState = "IDLE"
)

// Reading is the most recent temperature sample. A Reading with Err=true is
// the error sentinel: either no read has succeeded yet or the last one failed.
type Reading struct {
	Celsius float64
	Err     bool
}

// OK reports whether the reading holds a usable value.
func (r Reading) OK() bool {
	return !r.Err
}

// Schedule is the complete deadline set owned by the scheduler.
//
// RelayDeadline is tagged by Relay: while Mixing it is the mix-end time,
// while Idle it is the next activation time. Exactly one meaning is live
// at any moment.
type Schedule struct {
	Relay           RelayState
	RelayDeadline   time.Time
	NextTempUpdate  time.Time
	NextDisplayTick time.Time

	// End is the maceration end deadline. Zero means unbounded.
	End time.Time
}

// NewSchedule returns a Schedule with every recurring deadline set to start,
// so all three events fire on the first loop iteration. The relay begins
// Idle with its activation due immediately.
func NewSchedule(start time.Time, macerationFor time.Duration) Schedule {
	s := Schedule{
		Relay:           RelayIdle,
		RelayDeadline:   start,
		NextTempUpdate:  start,
		NextDisplayTick: start,
	}
	if macerationFor > 0 {
		s.End = start.Add(macerationFor)
	}
	return s
}

// NextWake returns the earliest of the three live deadlines.
func (s Schedule) NextWake() time.Time {
	wake := s.NextTempUpdate
	if s.RelayDeadline.Before(wake) {
		wake = s.RelayDeadline
	}
	if s.NextDisplayTick.Before(wake) {
		wake = s.NextDisplayTick
	}
	return wake
}

// SleepUntil returns how long to sleep from now until wake, clamped at zero.
func SleepUntil(now, wake time.Time) time.Duration {
	d := wake.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Finished reports whether the maceration end deadline has passed.
// Always false for unbounded schedules.
func (s Schedule) Finished(now time.Time) bool {
	return !s.End.IsZero() && !now.Before(s.End)
}

// DaysLeft returns the number of maceration days remaining, rounded up.
// Returns 0 for unbounded schedules or once the end has passed.
func (s Schedule) DaysLeft(now time.Time) int {
	if s.End.IsZero() || !now.Before(s.End) {
		return 0
	}
	remaining := s.End.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// Counts tracks scheduler activity since startup.
type Counts struct {
	MixCycles  int // completed mixing pulses
	TempReads  int // successful sensor reads
	TempErrors int // failed sensor reads
}
