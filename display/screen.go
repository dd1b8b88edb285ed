// Package display shows diagnostics on the robot's screen.
package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// NumLines is how many text lines the screen has.
const NumLines = 8

// A Screen shows lines of text.
type Screen interface {
	// SetLine replaces the text on line n, counted from 0.
	SetLine(n int, text string) error
}

func checkLine(n int) error {
	if n < 0 || n >= NumLines {
		return errors.Errorf("line %d out of range [0, %d)", n, NumLines)
	}
	return nil
}

// MemoryScreen keeps the lines in memory.
type MemoryScreen struct {
	mu     sync.Mutex
	lines  [NumLines]string
	writes int
}

// NewMemoryScreen returns a blank memory screen.
func NewMemoryScreen() *MemoryScreen {
	return &MemoryScreen{}
}

// SetLine stores the text.
func (s *MemoryScreen) SetLine(n int, text string) error {
	if err := checkLine(n); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[n] = text
	s.writes++
	return nil
}

// Line returns the text of line n.
func (s *MemoryScreen) Line(n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if checkLine(n) != nil {
		return ""
	}
	return s.lines[n]
}

// Writes returns how many times SetLine succeeded.
func (s *MemoryScreen) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// ConsoleScreen prints lines to a writer as they change. A line set to the text it already shows
// is not printed again.
type ConsoleScreen struct {
	w     io.Writer
	label *color.Color

	mu    sync.Mutex
	lines [NumLines]string
}

// NewConsoleScreen returns a screen printing to w.
func NewConsoleScreen(w io.Writer) *ConsoleScreen {
	return &ConsoleScreen{w: w, label: color.New(color.FgCyan, color.Bold)}
}

// SetLine prints the line if it changed.
func (s *ConsoleScreen) SetLine(n int, text string) error {
	if err := checkLine(n); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lines[n] == text {
		return nil
	}
	s.lines[n] = text
	_, err := fmt.Fprintf(s.w, "%s %s\n", s.label.Sprintf("[screen %d]", n), text)
	return err
}
