// Package terminal provides prompt helpers: secret input and clearing of
// echoed lines.
package terminal

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/term"
)

// ClearPreviousLines erases a prompt of textLength characters and the line
// left by the Enter key, on stderr. Wrapping is computed from the terminal
// width, 80 columns when unknown.
func ClearPreviousLines(textLength int) {
	// Get terminal width to calculate line wrapping
	termWidth := 80 // default fallback
	if width, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && width > 0 {
		termWidth = width
	}

	// Calculate total lines used by the text
	totalLines := int(math.Ceil(float64(textLength) / float64(termWidth)))
	if totalLines < 1 {
		totalLines = 1 // At minimum, we have 1 line
	}

	// After Enter, cursor is on a NEW line below the input.
	// Add +1 to clear the current empty line the cursor is on
	linesToClear := totalLines + 1

	// Move up and clear each line
	for i := 0; i < linesToClear; i++ {
		fmt.Fprint(os.Stderr, "\r\x1b[2K") // Move to start and clear entire line
		if i < linesToClear-1 {
			fmt.Fprint(os.Stderr, "\x1b[1A") // Move up one line (don't move up on last iteration)
		}
	}
}
