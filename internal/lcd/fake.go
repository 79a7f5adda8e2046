package lcd

import "strings"

// FakeDisplay is a test double that keeps the rendered text in memory.
type FakeDisplay struct {
	rows [2][16]byte
	row  int
	col  int

	// Closed tracks if Close was called.
	Closed bool

	// WriteError, if set, will be returned by Write().
	WriteError error
}

// NewFakeDisplay creates a blank FakeDisplay.
func NewFakeDisplay() *FakeDisplay {
	f := &FakeDisplay{}
	f.blank()
	return f
}

func (f *FakeDisplay) blank() {
	for r := range f.rows {
		for c := range f.rows[r] {
			f.rows[r][c] = ' '
		}
	}
	f.row, f.col = 0, 0
}

// SetCursor moves the write position.
func (f *FakeDisplay) SetCursor(row, col int) error {
	f.row, f.col = row, col
	return nil
}

// Write stores text at the cursor. Writes past the row edge are dropped,
// matching what the 16-column panel actually shows.
func (f *FakeDisplay) Write(text string) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	for i := 0; i < len(text); i++ {
		if f.row >= 0 && f.row < len(f.rows) && f.col >= 0 && f.col < len(f.rows[0]) {
			f.rows[f.row][f.col] = text[i]
		}
		f.col++
	}
	return nil
}

// Clear blanks the display and homes the cursor.
func (f *FakeDisplay) Clear() error {
	f.blank()
	return nil
}

// Close marks the display as closed.
func (f *FakeDisplay) Close() error {
	f.Closed = true
	return nil
}

// Row returns the current contents of a row as a 16-character string.
func (f *FakeDisplay) Row(row int) string {
	if row < 0 || row >= len(f.rows) {
		return ""
	}
	return string(f.rows[row][:])
}

// Screen returns both rows joined by a newline, for test failure messages.
func (f *FakeDisplay) Screen() string {
	lines := make([]string, len(f.rows))
	for i := range f.rows {
		lines[i] = f.Row(i)
	}
	return strings.Join(lines, "\n")
}
