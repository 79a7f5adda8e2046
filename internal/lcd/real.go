//go:build linux

package lcd

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// I2C_SLAVE from linux/i2c-dev.h.
const i2cSlave = 0x0703

// PCF8574 pin mapping on the common HD44780 backpack:
// P0=RS, P1=RW, P2=EN, P3=backlight, P4..P7=data nibble.
const (
	bitRS        = 0x01
	bitEN        = 0x04
	bitBacklight = 0x08
)

// HD44780 commands.
const (
	cmdClear       = 0x01
	cmdEntryMode   = 0x06 // increment cursor, no shift
	cmdDisplayOn   = 0x0C // display on, cursor off, blink off
	cmdDisplayOff  = 0x08
	cmdFunctionSet = 0x28 // 4-bit, 2 lines, 5x8 dots
)

// DDRAM row base addresses for a 16x2 panel.
var rowOffsets = [2]byte{0x00, 0x40}

// RealDisplay drives the LCD through /dev/i2c-N.
type RealDisplay struct {
	f *os.File
}

// NewRealDisplay opens the I2C bus, binds the backpack address and runs the
// HD44780 4-bit initialization sequence.
func NewRealDisplay(bus int, addr byte) (*RealDisplay, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/i2c-%d", bus), os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %d: %w", bus, err)
	}
	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, int(addr)); err != nil {
		f.Close()
		return nil, fmt.Errorf("bind i2c address %#02x: %w", addr, err)
	}

	d := &RealDisplay{f: f}
	if err := d.initController(); err != nil {
		f.Close()
		return nil, fmt.Errorf("init lcd: %w", err)
	}
	return d, nil
}

// initController runs the datasheet power-on sequence for 4-bit mode.
func (d *RealDisplay) initController() error {
	time.Sleep(50 * time.Millisecond)

	// Three times 8-bit function set, then the switch to 4-bit.
	for _, n := range []byte{0x30, 0x30, 0x30, 0x20} {
		if err := d.writeNibble(n, 0); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}

	for _, c := range []byte{cmdFunctionSet, cmdDisplayOff, cmdClear, cmdEntryMode, cmdDisplayOn} {
		if err := d.command(c); err != nil {
			return err
		}
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

// SetCursor moves the write position to (row, col), zero-based.
func (d *RealDisplay) SetCursor(row, col int) error {
	if row < 0 || row >= len(rowOffsets) || col < 0 || col >= 40 {
		return fmt.Errorf("lcd: cursor (%d,%d) out of range", row, col)
	}
	return d.command(0x80 | (rowOffsets[row] + byte(col)))
}

// Write prints text at the current cursor position.
func (d *RealDisplay) Write(text string) error {
	for i := 0; i < len(text); i++ {
		if err := d.writeByte(text[i], bitRS); err != nil {
			return fmt.Errorf("lcd write: %w", err)
		}
	}
	return nil
}

// Clear blanks the display and homes the cursor.
func (d *RealDisplay) Clear() error {
	if err := d.command(cmdClear); err != nil {
		return err
	}
	// Clear is the one slow HD44780 instruction.
	time.Sleep(2 * time.Millisecond)
	return nil
}

// Close blanks the display, turns it off and releases the bus.
func (d *RealDisplay) Close() error {
	var errs []error
	if err := d.Clear(); err != nil {
		errs = append(errs, err)
	}
	if err := d.command(cmdDisplayOff); err != nil {
		errs = append(errs, err)
	}
	if err := d.f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close i2c: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (d *RealDisplay) command(c byte) error {
	if err := d.writeByte(c, 0); err != nil {
		return fmt.Errorf("lcd command %#02x: %w", c, err)
	}
	return nil
}

// writeByte sends one byte as two nibbles with the given control flags.
func (d *RealDisplay) writeByte(b, flags byte) error {
	if err := d.writeNibble(b&0xF0, flags); err != nil {
		return err
	}
	return d.writeNibble((b<<4)&0xF0, flags)
}

// writeNibble puts a nibble on P4..P7 and strobes EN. The backlight bit is
// kept high on every write.
func (d *RealDisplay) writeNibble(nibble, flags byte) error {
	out := nibble | flags | bitBacklight
	for _, v := range []byte{out | bitEN, out} {
		if _, err := d.f.Write([]byte{v}); err != nil {
			return err
		}
		time.Sleep(50 * time.Microsecond)
	}
	return nil
}
