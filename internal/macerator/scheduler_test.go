package macerator

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/damiancyrana/wine-macerator/internal/lcd"
	"github.com/damiancyrana/wine-macerator/internal/logic"
	"github.com/damiancyrana/wine-macerator/internal/relay"
	"github.com/damiancyrana/wine-macerator/internal/sensor"
	"github.com/damiancyrana/wine-macerator/internal/telemetry"
)

var t0 = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is an injectable clock advanced explicitly by the test.
// Not safe for concurrent use (the scheduler is single-threaded).
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type rig struct {
	clock  *fakeClock
	sensor *sensor.FakeReader
	relay  *relay.FakeDriver
	disp   *lcd.FakeDisplay
	pub    *telemetry.FakePublisher
	sched  *Scheduler
}

func newRig(t *testing.T, cfg Config, withTelemetry bool) *rig {
	t.Helper()
	r := &rig{
		clock:  &fakeClock{t: t0},
		sensor: sensor.NewFakeReader([]float64{21.5}),
		relay:  relay.NewFakeDriver(),
		disp:   lcd.NewFakeDisplay(),
	}
	if withTelemetry {
		r.pub = telemetry.NewFakePublisher()
	}
	var pub telemetry.Publisher
	if r.pub != nil {
		pub = r.pub
	}
	r.sched = New(cfg, r.sensor, r.relay, r.disp, pub, nil, r.clock.Now)
	return r
}

func defaultConfig() Config {
	return Config{
		MixFor:    time.Minute,
		MixEvery:  time.Hour,
		TempEvery: time.Minute,
	}
}

func TestFirstStepFiresAllThreeEvents(t *testing.T) {
	r := newRig(t, defaultConfig(), true)

	sleep, done := r.sched.Step()
	if done {
		t.Fatal("unexpected done on first step")
	}

	// Temperature update fired.
	if r.sensor.Reads != 1 {
		t.Errorf("sensor reads: got %d, want 1", r.sensor.Reads)
	}
	if len(r.pub.Sends) != 1 {
		t.Fatalf("telemetry sends: got %d, want 1", len(r.pub.Sends))
	}
	if got := r.pub.Sends[0]["wine_temp"]; got != 21.5 {
		t.Errorf("wine_temp: got %v, want 21.5", got)
	}

	// Relay activation fired.
	if !r.relay.IsOn() {
		t.Error("relay should be on after first step")
	}
	sched := r.sched.Schedule()
	if sched.Relay != logic.RelayMixing {
		t.Errorf("relay state: got %q, want MIXING", sched.Relay)
	}
	if want := t0.Add(time.Minute); !sched.RelayDeadline.Equal(want) {
		t.Errorf("mix end: got %v, want start + mix duration", sched.RelayDeadline)
	}

	// Display refresh fired; the timer row shows the full mix countdown.
	if got := r.disp.Row(1); got != logic.TimerRow(logic.RelayMixing, time.Minute) {
		t.Errorf("row 1: got %q", got)
	}

	// Next wake is the one-second display tick.
	if sleep != time.Second {
		t.Errorf("sleep: got %v, want 1s", sleep)
	}
}

// step advances the fake clock by the returned sleep and runs the next
// iteration, mimicking Run without real time.
func (r *rig) step(t *testing.T) time.Duration {
	t.Helper()
	sleep, done := r.sched.Step()
	if done {
		t.Fatal("unexpected completion")
	}
	if sleep < 0 {
		t.Fatalf("negative sleep %v", sleep)
	}
	r.clock.Advance(sleep)
	return sleep
}

func TestRelayDutyCycleAlternatesExactly(t *testing.T) {
	cfg := Config{
		MixFor:      time.Minute,
		MixEvery:    10 * time.Minute,
		TempEvery:   time.Hour, // out of the way
		DisplayTick: time.Hour, // out of the way
	}
	r := newRig(t, cfg, false)

	type transition struct {
		on bool
		at time.Time
	}
	var transitions []transition
	wasOn := false

	// Walk simulated time across two and a half duty cycles.
	for i := 0; i < 500 && r.clock.t.Before(t0.Add(25*time.Minute)); i++ {
		before := r.clock.t
		r.step(t)
		if on := r.relay.IsOn(); on != wasOn {
			transitions = append(transitions, transition{on: on, at: before})
			wasOn = on
		}
	}

	want := []transition{
		{true, t0},
		{false, t0.Add(1 * time.Minute)},
		{true, t0.Add(11 * time.Minute)},
		{false, t0.Add(12 * time.Minute)},
		{true, t0.Add(22 * time.Minute)},
	}
	if len(transitions) < len(want) {
		t.Fatalf("got %d transitions, want at least %d: %+v", len(transitions), len(want), transitions)
	}
	for i, w := range want {
		got := transitions[i]
		if got.on != w.on || !got.at.Equal(w.at) {
			t.Errorf("transition %d: got (%v at %v), want (%v at %v)", i, got.on, got.at, w.on, w.at)
		}
	}

	// Strict alternation: never two consecutive commands in the same direction.
	for i := 1; i < len(r.relay.History); i++ {
		if r.relay.History[i] == r.relay.History[i-1] {
			t.Fatalf("relay command %d repeats %v", i, r.relay.History[i])
		}
	}

	// Mixes ended at +1m, +12m and +23m before the walk stopped.
	if got := r.sched.Counts().MixCycles; got != 3 {
		t.Errorf("mix cycles: got %d, want 3", got)
	}
}

func TestTempRescheduledFromReadStart(t *testing.T) {
	r := newRig(t, defaultConfig(), false)
	r.sensor.ReadError = errors.New("probe timeout")

	_, _ = r.sched.Step()

	sched := r.sched.Schedule()
	if want := t0.Add(time.Minute); !sched.NextTempUpdate.Equal(want) {
		t.Errorf("next temp update after failed read: got %v, want %v", sched.NextTempUpdate, want)
	}
	if got := r.sched.Counts().TempErrors; got != 1 {
		t.Errorf("temp errors: got %d, want 1", got)
	}
	if got := r.disp.Row(0); got != logic.PadRow("Sensor error") {
		t.Errorf("row 0: got %q", got)
	}

	// The failure does not disturb the schedule: the next attempt happens
	// at the originally computed time and recovers.
	r.sensor.ReadError = nil
	r.clock.t = t0.Add(time.Minute)
	_, _ = r.sched.Step()

	if r.sensor.Reads != 2 {
		t.Errorf("sensor reads: got %d, want 2", r.sensor.Reads)
	}
	sched = r.sched.Schedule()
	if want := t0.Add(2 * time.Minute); !sched.NextTempUpdate.Equal(want) {
		t.Errorf("next temp update: got %v, want %v", sched.NextTempUpdate, want)
	}
	if got := r.disp.Row(0); !strings.HasPrefix(got, "Wine T: 21.5 C") {
		t.Errorf("row 0 after recovery: got %q", got)
	}
}

func TestOverrunFiresImmediatelyAndNeverSleepsNegative(t *testing.T) {
	r := newRig(t, defaultConfig(), false)
	_, _ = r.sched.Step()

	// Simulate a long stall: jump far past every deadline.
	r.clock.Advance(90 * time.Second)
	sleep, done := r.sched.Step()
	if done {
		t.Fatal("unexpected done")
	}
	if sleep < 0 {
		t.Errorf("sleep must be clamped at zero, got %v", sleep)
	}

	// The mix that should have ended 29s ago ended on this iteration.
	if r.relay.IsOn() {
		t.Error("overdue mix end did not fire")
	}
	if r.sensor.Reads != 2 {
		t.Errorf("overdue temperature update did not fire: reads=%d", r.sensor.Reads)
	}
}

func TestTelemetrySendFailureIsSwallowed(t *testing.T) {
	r := newRig(t, defaultConfig(), true)
	r.pub.SendError = errors.New("broker unreachable")

	sleep, done := r.sched.Step()
	if done {
		t.Fatal("unexpected done")
	}
	if sleep != time.Second {
		t.Errorf("sleep: got %v, want 1s", sleep)
	}
	// The reading itself still landed.
	if got := r.sched.Counts().TempReads; got != 1 {
		t.Errorf("temp reads: got %d, want 1", got)
	}
}

func TestDisplayFailureDoesNotStopLoop(t *testing.T) {
	r := newRig(t, defaultConfig(), false)
	r.disp.WriteError = errors.New("bus stuck")

	if _, done := r.sched.Step(); done {
		t.Fatal("unexpected done")
	}
	if !r.relay.IsOn() {
		t.Error("relay action must run despite display errors")
	}
}

func TestRelayFailureDoesNotStopLoop(t *testing.T) {
	r := newRig(t, defaultConfig(), false)
	r.relay.OnError = errors.New("driver fault")

	if _, done := r.sched.Step(); done {
		t.Fatal("unexpected done")
	}
	// The state machine still advances so the duty cycle recovers on the
	// next transition.
	if got := r.sched.Schedule().Relay; got != logic.RelayMixing {
		t.Errorf("relay state: got %q, want MIXING", got)
	}
}

func TestMixStartRowBeforeFirstTick(t *testing.T) {
	cfg := Config{
		MixFor:      time.Minute,
		MixEvery:    30 * time.Second,
		TempEvery:   10 * time.Minute,
		DisplayTick: 10 * time.Minute,
	}
	r := newRig(t, cfg, false)

	_, _ = r.sched.Step() // everything fires, relay on, display renders
	r.clock.Advance(time.Minute)
	_, _ = r.sched.Step() // mix ends
	r.clock.Advance(30 * time.Second)
	_, _ = r.sched.Step() // mix starts again, display tick still far away

	if got := r.disp.Row(1); got != logic.MixStartRow() {
		t.Errorf("row 1 after activation: got %q, want %q", got, logic.MixStartRow())
	}
}

func TestDisplayCountdownWhileIdle(t *testing.T) {
	cfg := defaultConfig()
	r := newRig(t, cfg, false)

	_, _ = r.sched.Step()
	r.clock.Advance(time.Minute)
	_, _ = r.sched.Step() // mix ends, next mix in 1h

	r.clock.Advance(34 * time.Second)
	_, _ = r.sched.Step() // display tick

	remaining := time.Hour - 34*time.Second
	if got := r.disp.Row(1); got != logic.TimerRow(logic.RelayIdle, remaining) {
		t.Errorf("row 1: got %q, want countdown for %v", got, remaining)
	}
}

func TestCompletionTerminatesWithoutRelayCommand(t *testing.T) {
	cfg := defaultConfig()
	cfg.MacerationFor = 30 * time.Minute
	r := newRig(t, cfg, false)

	_, _ = r.sched.Step() // relay goes on at t0
	commandsBefore := len(r.relay.History)

	// Deadline passes mid-mix.
	r.clock.t = t0.Add(31 * time.Minute)
	sleep, done := r.sched.Step()
	if !done {
		t.Fatal("expected done past the maceration deadline")
	}
	if sleep != 0 {
		t.Errorf("sleep on completion: got %v, want 0", sleep)
	}

	// Step itself issues no relay command; the forced off belongs to Run.
	if len(r.relay.History) != commandsBefore {
		t.Errorf("relay commands during completion step: got %d, want %d", len(r.relay.History), commandsBefore)
	}

	row0, row1 := logic.CompletionRows()
	if r.disp.Row(0) != row0 || r.disp.Row(1) != row1 {
		t.Errorf("completion screen:\n%s", r.disp.Screen())
	}
}

func TestRunForcesRelayOffOnCompletion(t *testing.T) {
	cfg := defaultConfig()
	cfg.MacerationFor = time.Hour
	r := newRig(t, cfg, true)

	// Jump straight past the end so Run exits on its first step.
	r.clock.Advance(2 * time.Hour)

	sig := make(chan os.Signal)
	if err := r.sched.Run(sig); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if r.relay.IsOn() {
		t.Error("relay must be off after Run returns")
	}
	if n := len(r.pub.SystemEvents); n != 1 {
		t.Fatalf("system events: got %d, want 1", n)
	}
	if got := r.pub.SystemEvents[0].Event; got != "COMPLETED" {
		t.Errorf("system event: got %q, want COMPLETED", got)
	}
}

func TestRunStopsOnSignal(t *testing.T) {
	r := newRig(t, defaultConfig(), true)

	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM

	done := make(chan error, 1)
	go func() { done <- r.sched.Run(sig) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on signal")
	}

	if r.relay.IsOn() {
		t.Error("relay must be off after shutdown")
	}
	if n := len(r.pub.SystemEvents); n != 1 {
		t.Fatalf("system events: got %d, want 1", n)
	}
	ev := r.pub.SystemEvents[0]
	if ev.Event != "SHUTDOWN" || ev.Reason != "SIGTERM" {
		t.Errorf("system event: got %q/%q, want SHUTDOWN/SIGTERM", ev.Event, ev.Reason)
	}
}
