package main

import (
	"io"

	"github.com/pterm/pterm"
)

// progress wraps a pterm progress bar. A disabled progress does nothing, so
// results written to stdout are never interleaved with bar redraws.
type progress struct {
	bar *pterm.ProgressbarPrinter
}

func newProgress(w io.Writer, title string, total int, enabled bool) *progress {
	if !enabled || total == 0 {
		return &progress{}
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithWriter(w).
		WithRemoveWhenDone(false).
		Start()
	if err != nil {
		return &progress{}
	}
	return &progress{bar: bar}
}

// update matches sequence.ProgressFunc.
func (p *progress) update(done, total int) {
	if p.bar == nil {
		return
	}
	if delta := done - p.bar.Current; delta > 0 {
		p.bar.Add(delta)
	}
}

func (p *progress) stop() {
	if p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
	p.bar = nil
}
