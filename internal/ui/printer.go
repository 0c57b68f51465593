package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes styled components to a writer, sized to the terminal.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to w.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the width components are rendered at
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) {
	p.width = clampWidth(width)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(h *Header) {
	_, _ = fmt.Fprintln(p.out, h.SetWidth(p.width).Render())
}

// PrintResult prints a result box
func (p *Printer) PrintResult(r *Result) {
	_, _ = fmt.Fprintln(p.out, r.SetWidth(p.width).Render())
}
