package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// progress draws a single updating percentage line. It stays silent when
// the output is not a terminal so logs and pipes remain clean.
type progress struct {
	w       io.Writer
	label   string
	enabled bool
	last    int
}

func newProgress(f *os.File, label string) *progress {
	return &progress{
		w:       f,
		label:   label,
		enabled: term.IsTerminal(int(f.Fd())),
		last:    -1,
	}
}

func (p *progress) update(done, total int) {
	if !p.enabled || total <= 0 {
		return
	}
	pct := done * 100 / total
	if pct == p.last {
		return
	}
	p.last = pct
	fmt.Fprintf(p.w, "\r%s %3d%%", p.label, pct)
}

func (p *progress) finish() {
	if p.enabled && p.last >= 0 {
		fmt.Fprintln(p.w)
	}
}
