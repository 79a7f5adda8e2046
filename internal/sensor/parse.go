package sensor

import (
	"fmt"
	"strconv"
	"strings"
)

// parseW1Payload parses the two-line w1_slave format:
//
//	53 01 4b 46 7f ff 0c 10 2d : crc=2d YES
//	53 01 4b 46 7f ff 0c 10 2d t=21187
//
// The first line ends in YES when the CRC matched; t= is millidegrees.
func parseW1Payload(data string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("sensor: short w1_slave payload (%d lines)", len(lines))
	}

	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, ErrCRC
	}

	idx := strings.LastIndex(lines[1], "t=")
	if idx < 0 {
		return 0, fmt.Errorf("sensor: no t= field in %q", lines[1])
	}
	milli, err := strconv.Atoi(strings.TrimSpace(lines[1][idx+2:]))
	if err != nil {
		return 0, fmt.Errorf("sensor: bad t= value: %w", err)
	}

	return float64(milli) / 1000.0, nil
}
