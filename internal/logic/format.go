package logic

import (
	"fmt"
	"strings"
	"time"
)

// DisplayCols is the width of the character LCD. Renderers always return
// rows of exactly this many characters.
const DisplayCols = 16

// DisplayRows is the height of the character LCD.
const DisplayRows = 2

// FormatMixCountdown renders a short mixing countdown as M:SS, e.g. "2:05".
// The remaining time is floored to whole seconds; negative durations render
// as "0:00".
func FormatMixCountdown(remaining time.Duration) string {
	secs := int(remaining / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// FormatIdleCountdown renders a long countdown as H:MM:SS, e.g. "1:02:05".
// Only minutes and seconds are zero-padded.
func FormatIdleCountdown(remaining time.Duration) string {
	secs := int(remaining / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// PadRow pads s with spaces (or truncates it) to exactly DisplayCols
// characters, so a rewrite fully covers the previous row content.
func PadRow(s string) string {
	if len(s) > DisplayCols {
		return s[:DisplayCols]
	}
	return s + strings.Repeat(" ", DisplayCols-len(s))
}

// TempRow renders row 0: the last temperature, and in telemetry mode the
// remaining maceration days and a connection marker ('*' connected,
// '!' disconnected).
//
//	"Wine T: 23.4 C  "   plain
//	"T:23.4C D:12   *"   telemetry, bounded run
func TempRow(r Reading, daysLeft int, connected, telemetry bool) string {
	if r.Err {
		return PadRow("Sensor error")
	}
	if !telemetry {
		return PadRow(fmt.Sprintf("Wine T: %.1f C", r.Celsius))
	}
	left := fmt.Sprintf("T:%.1fC", r.Celsius)
	if daysLeft > 0 {
		left += fmt.Sprintf(" D:%d", daysLeft)
	}
	mark := "!"
	if connected {
		mark = "*"
	}
	row := PadRow(left)
	return row[:DisplayCols-1] + mark
}

// WaitingRow is row 0 before the first read completes.
func WaitingRow() string {
	return PadRow("Waiting for temp")
}

// TimerRow renders row 1: the mixing countdown while the relay is on, or the
// time until the next mix while it is off.
func TimerRow(state RelayState, remaining time.Duration) string {
	if state == RelayMixing {
		return PadRow("Mixing: " + FormatMixCountdown(remaining))
	}
	return PadRow("Next mix " + FormatIdleCountdown(remaining))
}

// MixStartRow is row 1 right after relay activation, before the first
// display tick fills in the countdown.
func MixStartRow() string {
	return PadRow("Mixing: --:--")
}

// CompletionRows are shown when the maceration deadline is reached.
func CompletionRows() (row0, row1 string) {
	return PadRow("Maceration"), PadRow("complete!")
}
