// Package cli renders analytics results on the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/suggest"
)

// Format selects how a Printer writes.
type Format string

const (
	// FormatAuto writes text to a terminal and JSON anywhere else.
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a --output flag value. An empty value is FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatText, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown output format %q, want auto, text or json", s)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var (
	colorPrimary = lipgloss.Color("#64b5f6")
	colorMuted   = lipgloss.Color("#888888")
)

// Printer writes results as styled text or as JSON.
type Printer struct {
	w        io.Writer
	format   Format
	color    bool
	renderer *lipgloss.Renderer
}

// NewPrinter resolves FormatAuto against w. Colors are only used on a terminal.
func NewPrinter(w io.Writer, format Format) *Printer {
	terminal := IsTerminal(w)
	if format == FormatAuto || format == "" {
		format = FormatJSON
		if terminal {
			format = FormatText
		}
	}
	return &Printer{
		w:        w,
		format:   format,
		color:    terminal,
		renderer: lipgloss.NewRenderer(w),
	}
}

func (p *Printer) Format() Format {
	return p.format
}

func (p *Printer) writeJSON(v any) error {
	encoder := json.NewEncoder(p.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}

func (p *Printer) header(s string) string {
	return p.renderer.NewStyle().Bold(true).Foreground(colorPrimary).Render(s)
}

func (p *Printer) muted(s string) string {
	return p.renderer.NewStyle().Foreground(colorMuted).Render(s)
}

func (p *Printer) newColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (p *Printer) riskColor(level burnout.RiskLevel) *color.Color {
	switch level {
	case burnout.RiskHigh:
		return p.newColor(color.FgRed, color.Bold)
	case burnout.RiskMedium:
		return p.newColor(color.FgYellow)
	}
	return p.newColor(color.FgGreen)
}

func (p *Printer) priorityColor(priority suggest.Priority) *color.Color {
	switch priority {
	case suggest.PriorityHigh:
		return p.newColor(color.FgRed)
	case suggest.PriorityMedium:
		return p.newColor(color.FgYellow)
	}
	return p.newColor(color.FgCyan)
}
