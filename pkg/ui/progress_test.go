package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressDrawsPhases(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{out: &buf, drawing: true}

	p.Update("tweets", 100, 250)
	p.Update("tweets", 250, 250)
	p.Update("followers", 50, 50)
	p.Finish()

	out := buf.String()
	for _, want := range []string{"tweets", "100/250", "250/250", "followers", "50/50"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected progress output to contain %q, got %q", want, out)
		}
	}
	if !strings.Contains(out, "\r") {
		t.Error("Expected in-place redraws")
	}
	// One newline between the phases, one from Finish.
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("Expected 2 newlines, got %d in %q", got, out)
	}
}

func TestProgressSilentOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{out: &buf, drawing: false}

	p.Update("tweets", 100, 250)
	p.Finish()

	if buf.Len() != 0 {
		t.Errorf("Expected no output off a terminal, got %q", buf.String())
	}
}

func TestProgressZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{out: &buf, drawing: true}

	p.Update("tweets", 0, 0)

	if !strings.Contains(buf.String(), "0/0") {
		t.Errorf("Expected a 0/0 line, got %q", buf.String())
	}
}

func TestProgressFinishWithoutUpdates(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{out: &buf, drawing: true}

	p.Finish()

	if buf.Len() != 0 {
		t.Errorf("Expected Finish alone to print nothing, got %q", buf.String())
	}
}
