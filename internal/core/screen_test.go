package core

import (
	"strings"
	"testing"
)

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 5)

	s.Set(3, 2, 'X')
	if got := s.Get(3, 2); got != 'X' {
		t.Errorf("Get(3, 2) = %q, expected 'X'", got)
	}

	// Out of bounds set is ignored, get returns space
	s.Set(-1, 0, 'Y')
	s.Set(10, 0, 'Y')
	if got := s.Get(-1, 0); got != ' ' {
		t.Errorf("Out-of-bounds Get = %q, expected space", got)
	}
	if got := s.Get(99, 99); got != ' ' {
		t.Errorf("Out-of-bounds Get = %q, expected space", got)
	}
}

func TestScreenColoredCells(t *testing.T) {
	s := NewScreen(10, 5)

	s.SetColored(1, 1, '@', ColorBrightRed)

	cell := s.GetCell(1, 1)
	if cell.Rune != '@' || cell.Color != ColorBrightRed {
		t.Errorf("GetCell(1, 1) = %+v, expected '@' in bright red", cell)
	}

	// Plain Set uses the default color
	s.Set(2, 1, '#')
	if got := s.GetCell(2, 1).Color; got != ColorDefault {
		t.Errorf("Set() color = %v, expected default", got)
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(10, 3)

	s.DrawText(2, 1, "hello")
	if row := s.Row(1); row != "  hello   " {
		t.Errorf("Row(1) = %q", row)
	}

	// Clipped at the right edge
	s.DrawText(8, 0, "abc")
	if got := s.Get(9, 0); got != 'b' {
		t.Errorf("Get(9, 0) = %q, expected 'b'", got)
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 2)
	s.Fill('#')
	s.Clear()

	if strings.TrimSpace(s.String()) != "" {
		t.Errorf("Clear() left content: %q", s.String())
	}
}

func TestScreenResizePreservesContent(t *testing.T) {
	s := NewScreen(10, 5)
	s.Set(2, 2, 'A')
	s.Set(9, 4, 'B')

	s.Resize(5, 3)

	if got := s.Get(2, 2); got != 'A' {
		t.Errorf("Get(2, 2) after shrink = %q, expected 'A'", got)
	}
	if s.Width() != 5 || s.Height() != 3 {
		t.Errorf("Size after resize = %dx%d, expected 5x3", s.Width(), s.Height())
	}

	s.Resize(12, 6)
	if got := s.Get(2, 2); got != 'A' {
		t.Errorf("Get(2, 2) after grow = %q, expected 'A'", got)
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(10, 5)
	s.DrawBox(NewRect(0, 0, 5, 3))

	if s.Get(0, 0) != '┌' || s.Get(4, 0) != '┐' {
		t.Error("Top corners not drawn")
	}
	if s.Get(0, 2) != '└' || s.Get(4, 2) != '┘' {
		t.Error("Bottom corners not drawn")
	}
	if s.Get(2, 0) != '─' || s.Get(0, 1) != '│' {
		t.Error("Edges not drawn")
	}
}
