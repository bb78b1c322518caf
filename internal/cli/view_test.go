package cli

import (
	"strings"
	"testing"
)

func TestBrailleBufSetPixel(t *testing.T) {
	b := newBrailleBuf(2, 1)

	// One dot in the top-left micro position of cell (0,0).
	b.setPixel(0, 0)
	grid := b.toRunes()
	if grid[0][0] != rune(0x2801) {
		t.Errorf("cell = %U, want U+2801", grid[0][0])
	}
	if grid[0][1] != ' ' {
		t.Error("untouched cell should stay empty")
	}

	// Out-of-range pixels are dropped silently.
	b.setPixel(-1, 0)
	b.setPixel(100, 100)
}

func TestBrailleBufLineSpansCells(t *testing.T) {
	b := newBrailleBuf(4, 1)
	b.drawLine(0, 0, 7, 0)

	lit := 0
	for _, r := range b.toRunes()[0] {
		if r != ' ' {
			lit++
		}
	}
	if lit != 4 {
		t.Errorf("horizontal line should light all 4 cells, lit %d", lit)
	}
}

func TestOverlayText(t *testing.T) {
	line := strings.Repeat(" ", 10)

	if got := overlayText(line, 2, "abc"); got != "  abc     " {
		t.Errorf("overlay = %q", got)
	}
	// Clipped at both ends.
	if got := overlayText(line, -1, "abc"); got != "bc        " {
		t.Errorf("left clip = %q", got)
	}
	if got := overlayText(line, 8, "abc"); got != "        ab" {
		t.Errorf("right clip = %q", got)
	}
}

func TestClampCell(t *testing.T) {
	if clampCell(-3, 5) != 0 {
		t.Error("negative should clamp to 0")
	}
	if clampCell(9, 5) != 4 {
		t.Error("overflow should clamp to n-1")
	}
	if clampCell(2, 5) != 2 {
		t.Error("in-range value should pass through")
	}
}
