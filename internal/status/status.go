// Package status provides a thread-safe status tracker for the macerator
// daemon. It is written by the scheduler each display tick and read by the
// HTTP status server.
package status

import (
	"sync"
	"time"

	"github.com/damiancyrana/wine-macerator/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	MixForMs     int64
	MixEveryMs   int64
	TempEveryMs  int64
	MacerationMs int64 // 0 = unbounded run
	Broker       string
	Device       string
	HTTPAddr     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type - safe to use after the lock is released.
type Snapshot struct {
	Relay          logic.RelayState
	LastTemp       logic.Reading
	Counts         logic.Counts
	RelayDeadline  time.Time // mix end while MIXING, next activation while IDLE
	NextTempUpdate time.Time
	MacerationEnd  time.Time // zero for unbounded runs
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Relay:     logic.RelayIdle,
			LastTemp:  logic.Reading{Err: true},
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the scheduler-owned fields. Called on every display tick.
func (t *Tracker) Update(sched logic.Schedule, last logic.Reading, counts logic.Counts) {
	t.mu.Lock()
	t.snap.Relay = sched.Relay
	t.snap.RelayDeadline = sched.RelayDeadline
	t.snap.NextTempUpdate = sched.NextTempUpdate
	t.snap.MacerationEnd = sched.End
	t.snap.LastTemp = last
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
