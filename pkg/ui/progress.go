package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	barWidth  = 20
	barFilled = "━"
	barEmpty  = "─"
)

// Progress redraws a single line per fetch phase as batches land.
// Safe to call from concurrent batch workers. On a non-terminal it
// stays silent; the structured log already records progress there.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	drawing bool
	phase   string
	start   time.Time
}

// NewProgress creates a progress display on stdout.
func NewProgress() *Progress {
	return &Progress{
		out:     os.Stdout,
		drawing: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Update advances the display. A new phase label finishes the previous
// line and starts a fresh one.
func (p *Progress) Update(what string, fetched, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.drawing {
		return
	}
	if what != p.phase {
		if p.phase != "" {
			fmt.Fprintln(p.out)
		}
		p.phase = what
		p.start = time.Now()
	}
	fmt.Fprintf(p.out, "\r%s", p.line(what, fetched, total))
}

// Finish ends the current line so later prints start on a clean one.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.drawing && p.phase != "" {
		fmt.Fprintln(p.out)
		p.phase = ""
	}
}

func (p *Progress) line(what string, fetched, total int) string {
	filled := barWidth
	if total > 0 {
		filled = min(barWidth*fetched/total, barWidth)
	}
	bar := barFillStyle.Render(strings.Repeat(barFilled, filled)) +
		barEmptyStyle.Render(strings.Repeat(barEmpty, barWidth-filled))

	line := fmt.Sprintf("%s [%s] %d/%d", Heading(what), bar, fetched, total)
	if elapsed := time.Since(p.start).Seconds(); elapsed >= 1 {
		line += Detail(fmt.Sprintf(" %.0f/s", float64(fetched)/elapsed))
	}
	return line
}
