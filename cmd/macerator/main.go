// Command macerator runs the wine-maceration rig: it samples a DS18B20
// probe, drives the mixing relay on a duty cycle, renders status to a 16x2
// LCD and publishes telemetry to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damiancyrana/wine-macerator/internal/config"
	"github.com/damiancyrana/wine-macerator/internal/lcd"
	"github.com/damiancyrana/wine-macerator/internal/logic"
	"github.com/damiancyrana/wine-macerator/internal/macerator"
	"github.com/damiancyrana/wine-macerator/internal/relay"
	"github.com/damiancyrana/wine-macerator/internal/sensor"
	"github.com/damiancyrana/wine-macerator/internal/status"
	"github.com/damiancyrana/wine-macerator/internal/telemetry"
	"github.com/damiancyrana/wine-macerator/internal/web"
)

func main() {
	mixFor := flag.Duration("mix-for", time.Minute, "Mixing pulse duration")
	mixEvery := flag.Duration("mix-every", time.Hour, "Idle gap between mixing pulses")
	tempEvery := flag.Duration("temp-every", time.Minute, "Temperature sampling interval")
	maceration := flag.Duration("maceration", 0, "Total maceration duration (0 runs until killed)")
	configPath := flag.String("config", "", "Broker config file (empty disables telemetry)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	relayPin := flag.Int("relay-pin", relay.DefaultPin, "BCM pin number for the mixing relay")
	lcdBus := flag.Int("lcd-bus", lcd.DefaultBus, "I2C bus number for the LCD backpack")
	lcdAddr := flag.Int("lcd-addr", lcd.DefaultAddr, "I2C address of the LCD backpack")
	w1Dir := flag.String("w1-dir", sensor.DefaultW1Dir, "1-Wire sysfs device directory")
	printTemp := flag.Bool("print-temp", false, "Read the temperature once and exit")

	flag.Parse()

	cfg := macerator.Config{
		MixFor:        *mixFor,
		MixEvery:      *mixEvery,
		TempEvery:     *tempEvery,
		MacerationFor: *maceration,
	}
	if err := run(cfg, *configPath, *httpAddr, *relayPin, *lcdBus, byte(*lcdAddr), *w1Dir, *printTemp); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg macerator.Config, configPath, httpAddr string, relayPin, lcdBus int, lcdAddr byte, w1Dir string, printTemp bool) error {
	// Initialize the sensor first: the bus scan binds the probe and an
	// empty bus is unrecoverable.
	sensorReader, err := sensor.NewRealReader(w1Dir)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensorReader.Close()

	// Print mode
	if printTemp {
		c, err := sensorReader.ReadTemperature()
		if err != nil {
			return fmt.Errorf("read temperature: %w", err)
		}
		fmt.Println(formatTempLine(c))
		return nil
	}

	// Telemetry is optional; when configured, a bad config file or an
	// unreachable broker aborts startup.
	var pub telemetry.Publisher
	var fileCfg *config.Config
	if configPath != "" {
		fileCfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		realPub, err := telemetry.NewRealPublisher(fileCfg.Broker, fileCfg.ClientID, fileCfg.TopicPrefix, fileCfg.Device)
		if err != nil {
			return fmt.Errorf("connect telemetry: %w", err)
		}
		defer realPub.Close()
		pub = realPub
		log.Printf("telemetry connected: broker=%s device=%s", fileCfg.Broker, fileCfg.Device)
	}

	display, err := lcd.NewRealDisplay(lcdBus, lcdAddr)
	if err != nil {
		return reportFatal(pub, fmt.Errorf("init lcd: %w", err))
	}
	defer display.Close()
	splash(display)

	relayDriver, err := relay.NewRealDriver(relayPin)
	if err != nil {
		return reportFatal(pub, fmt.Errorf("init relay: %w", err))
	}
	defer relayDriver.Close()

	startTime := time.Now()
	tracker := status.NewTracker(startTime, statusConfig(cfg, fileCfg, httpAddr))

	// Publish startup event with a full status snapshot.
	if pub != nil {
		event := telemetry.SystemEvent{
			Timestamp:  startTime,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
		}
		if err := pub.PublishSystem(event); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: mix-for=%v mix-every=%v temp-every=%v maceration=%v sensor=%s",
		cfg.MixFor, cfg.MixEvery, cfg.TempEvery, cfg.MacerationFor, sensorReader.DeviceID())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sched := macerator.New(cfg, sensorReader, relayDriver, display, pub, tracker, time.Now)
	return sched.Run(sigCh)
}

// reportFatal publishes a best-effort FATAL event when the telemetry channel
// is already up, then returns the error unchanged for the process boundary.
func reportFatal(pub telemetry.Publisher, err error) error {
	if pub != nil {
		event := telemetry.SystemEvent{
			Timestamp: time.Now(),
			Event:     "FATAL",
			Reason:    err.Error(),
			Retained:  true,
		}
		if pubErr := pub.PublishSystem(event); pubErr != nil {
			log.Printf("failed to publish fatal event: %v", pubErr)
		}
	}
	return err
}

// statusConfig flattens the flag and file configuration for the tracker.
func statusConfig(cfg macerator.Config, fileCfg *config.Config, httpAddr string) status.Config {
	sc := status.Config{
		MixForMs:     cfg.MixFor.Milliseconds(),
		MixEveryMs:   cfg.MixEvery.Milliseconds(),
		TempEveryMs:  cfg.TempEvery.Milliseconds(),
		MacerationMs: cfg.MacerationFor.Milliseconds(),
		HTTPAddr:     httpAddr,
	}
	if fileCfg != nil {
		sc.Broker = fileCfg.Broker
		sc.Device = fileCfg.Device
	}
	return sc
}

// splash paints the boot screen before the first loop iteration renders.
func splash(display lcd.Display) {
	if err := display.Clear(); err != nil {
		log.Printf("display clear error: %v", err)
		return
	}
	display.SetCursor(0, 0)
	display.Write(logic.PadRow("Wine Macerator"))
	display.SetCursor(1, 0)
	display.Write(logic.WaitingRow())
}

func formatTempLine(c float64) string {
	return fmt.Sprintf("Wine T: %.1f C", c)
}
