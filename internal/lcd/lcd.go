// Package lcd renders fixed-width text to the rig's 16x2 character LCD.
// The real implementation drives an HD44780 behind a PCF8574 I2C backpack.
// The fake implementation keeps a text buffer for test assertions.
//
// Callers are responsible for padding/truncating rows to the display width;
// the driver writes exactly what it is given.
package lcd

// Display is cursor-addressed fixed-width text output.
type Display interface {
	// SetCursor moves the write position to (row, col), zero-based.
	SetCursor(row, col int) error

	// Write prints text at the current cursor position.
	Write(text string) error

	// Clear blanks the display and homes the cursor.
	Clear() error

	// Close releases the display, blanking it first.
	Close() error
}

// Default I2C addressing for the PCF8574 backpack.
const (
	DefaultBus  = 1
	DefaultAddr = 0x27
)
