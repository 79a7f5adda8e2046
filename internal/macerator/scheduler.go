// Package macerator contains the scheduling core: the relay duty-cycle state
// machine and the wake-at-next-deadline control loop.
//
// The loop is single-threaded. Each iteration reads the clock exactly once,
// checks the three recurring deadlines against that snapshot in a fixed
// order (temperature, relay, display), and sleeps until the earliest
// remaining deadline. Deadlines already past when an iteration starts fire
// immediately, so an overrun in one action delays the others by at most the
// overrun itself.
package macerator

import (
	"log"
	"os"
	"syscall"
	"time"

	"github.com/damiancyrana/wine-macerator/internal/lcd"
	"github.com/damiancyrana/wine-macerator/internal/logic"
	"github.com/damiancyrana/wine-macerator/internal/relay"
	"github.com/damiancyrana/wine-macerator/internal/sensor"
	"github.com/damiancyrana/wine-macerator/internal/status"
	"github.com/damiancyrana/wine-macerator/internal/telemetry"
)

// Config holds the duty-cycle timing.
type Config struct {
	MixFor    time.Duration // relay on per mixing pulse
	MixEvery  time.Duration // idle gap between pulses
	TempEvery time.Duration // temperature sampling interval
	// DisplayTick is the display refresh cadence; defaults to one second.
	DisplayTick time.Duration
	// MacerationFor bounds the whole run. Zero runs until killed.
	MacerationFor time.Duration
}

// Scheduler owns all timing state. Peripherals are injected so the core runs
// against fakes in tests; the clock is injected for the same reason.
type Scheduler struct {
	cfg     Config
	sensor  sensor.Reader
	relay   relay.Driver
	disp    lcd.Display
	pub     telemetry.Publisher // nil when telemetry is disabled
	tracker *status.Tracker     // nil when the status server is disabled
	now     func() time.Time

	sched  logic.Schedule
	last   logic.Reading
	counts logic.Counts
}

// New creates a Scheduler with every deadline due immediately, so the first
// Step fires all three events at once.
func New(cfg Config, sens sensor.Reader, rel relay.Driver, disp lcd.Display, pub telemetry.Publisher, tracker *status.Tracker, now func() time.Time) *Scheduler {
	if cfg.DisplayTick <= 0 {
		cfg.DisplayTick = time.Second
	}
	if now == nil {
		now = time.Now
	}
	s := &Scheduler{
		cfg:     cfg,
		sensor:  sens,
		relay:   rel,
		disp:    disp,
		pub:     pub,
		tracker: tracker,
		now:     now,
		last:    logic.Reading{Err: true},
	}
	s.sched = logic.NewSchedule(now(), cfg.MacerationFor)
	return s
}

// Step runs one loop iteration against a single clock snapshot and returns
// how long to sleep before the next one. done is true once the maceration
// deadline has passed; the relay is left as-is here (Run forces it off on
// the way out).
func (s *Scheduler) Step() (sleep time.Duration, done bool) {
	now := s.now()

	if s.sched.Finished(now) {
		s.renderCompletion()
		return 0, true
	}

	if !now.Before(s.sched.NextTempUpdate) {
		s.updateTemperature(now)
	}

	// Exactly one transition direction is reachable given the current state.
	if s.sched.Relay == logic.RelayMixing {
		if !now.Before(s.sched.RelayDeadline) {
			s.stopMixing(now)
		}
	} else if !now.Before(s.sched.RelayDeadline) {
		s.startMixing(now)
	}

	if !now.Before(s.sched.NextDisplayTick) {
		s.refreshDisplay(now)
	}

	return logic.SleepUntil(now, s.sched.NextWake()), false
}

// updateTemperature samples the sensor and pushes the result to the display
// and telemetry. The next update is scheduled before the read so a slow or
// failing conversion cannot push the attempt after it.
func (s *Scheduler) updateTemperature(now time.Time) {
	s.sched.NextTempUpdate = now.Add(s.cfg.TempEvery)

	c, err := s.sensor.ReadTemperature()
	if err != nil {
		log.Printf("temperature read error: %v", err)
		s.last = logic.Reading{Err: true}
		s.counts.TempErrors++
		s.writeRow(0, s.tempRow(now))
		return
	}

	s.last = logic.Reading{Celsius: c}
	s.counts.TempReads++
	s.writeRow(0, s.tempRow(now))

	if s.pub != nil {
		if err := s.pub.Send(map[string]any{"wine_temp": c}); err != nil {
			// Fire and forget: log and move on, never retry.
			log.Printf("telemetry send error: %v", err)
		}
	}
}

func (s *Scheduler) startMixing(now time.Time) {
	if err := s.relay.On(); err != nil {
		log.Printf("relay on error: %v", err)
	}
	s.sched.Relay = logic.RelayMixing
	s.sched.RelayDeadline = now.Add(s.cfg.MixFor)
	s.writeRow(1, logic.MixStartRow())
}

func (s *Scheduler) stopMixing(now time.Time) {
	if err := s.relay.Off(); err != nil {
		log.Printf("relay off error: %v", err)
	}
	s.sched.Relay = logic.RelayIdle
	s.sched.RelayDeadline = now.Add(s.cfg.MixEvery)
	s.counts.MixCycles++
}

func (s *Scheduler) refreshDisplay(now time.Time) {
	s.sched.NextDisplayTick = now.Add(s.cfg.DisplayTick)

	s.writeRow(0, s.tempRow(now))
	s.writeRow(1, logic.TimerRow(s.sched.Relay, s.sched.RelayDeadline.Sub(now)))

	if s.tracker != nil {
		s.tracker.Update(s.sched, s.last, s.counts)
		if s.pub != nil {
			s.tracker.SetMQTTConnected(s.pub.IsConnected())
		}
	}
}

func (s *Scheduler) tempRow(now time.Time) string {
	connected := s.pub != nil && s.pub.IsConnected()
	return logic.TempRow(s.last, s.sched.DaysLeft(now), connected, s.pub != nil)
}

func (s *Scheduler) renderCompletion() {
	if err := s.disp.Clear(); err != nil {
		log.Printf("display clear error: %v", err)
	}
	row0, row1 := logic.CompletionRows()
	s.writeRow(0, row0)
	s.writeRow(1, row1)
}

// writeRow writes a pre-padded row. Display errors are logged and dropped;
// a dead panel must not stop the rig.
func (s *Scheduler) writeRow(row int, text string) {
	if err := s.disp.SetCursor(row, 0); err != nil {
		log.Printf("display cursor error: %v", err)
		return
	}
	if err := s.disp.Write(text); err != nil {
		log.Printf("display write error: %v", err)
	}
}

// Counts returns the activity counters.
func (s *Scheduler) Counts() logic.Counts {
	return s.counts
}

// Schedule returns a copy of the current deadline set.
func (s *Scheduler) Schedule() logic.Schedule {
	return s.sched
}

// Run drives Step until the maceration deadline passes or a signal arrives.
// The relay is forced off on every exit path.
func (s *Scheduler) Run(sig <-chan os.Signal) error {
	defer func() {
		if err := s.relay.Off(); err != nil {
			log.Printf("relay final off error: %v", err)
		}
	}()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		sleep, done := s.Step()
		if done {
			log.Printf("maceration complete after %d mix cycles", s.counts.MixCycles)
			s.publishSystem("COMPLETED", "")
			return nil
		}

		timer.Reset(sleep)
		select {
		case <-timer.C:
		case sg := <-sig:
			log.Printf("received %v, shutting down", sg)
			if !timer.Stop() {
				<-timer.C
			}
			s.publishSystem("SHUTDOWN", signalName(sg))
			return nil
		}
	}
}

// publishSystem sends a lifecycle event carrying a full status snapshot when
// a tracker is wired.
func (s *Scheduler) publishSystem(event, reason string) {
	if s.pub == nil {
		return
	}
	ev := telemetry.SystemEvent{
		Timestamp: s.now(),
		Event:     event,
		Reason:    reason,
		Retained:  true,
	}
	if s.tracker != nil {
		s.tracker.Update(s.sched, s.last, s.counts)
		s.tracker.SetMQTTConnected(s.pub.IsConnected())
		ev.RawPayload = status.FormatStatusEvent(s.tracker.Snapshot(), event, reason)
	}
	if err := s.pub.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
