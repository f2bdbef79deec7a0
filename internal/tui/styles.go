package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ANSI palette; terminals map these to their own scheme, which keeps the
// report readable on light and dark backgrounds alike.
var (
	black   = lipgloss.Color("0")
	red     = lipgloss.Color("1")
	green   = lipgloss.Color("2")
	yellow  = lipgloss.Color("3")
	blue    = lipgloss.Color("4")
	magenta = lipgloss.Color("5")
	cyan    = lipgloss.Color("6")
	gray    = lipgloss.Color("8")
)

// ColorMode selects when escape sequences are emitted.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// NewRenderer returns a lipgloss renderer for w honoring mode.
func NewRenderer(w io.Writer, mode ColorMode) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		// Force color output even when not a TTY (for piping)
		r.SetColorProfile(termenv.TrueColor)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// Theme holds one style per semantic role of the report.
type Theme struct {
	Package            lipgloss.Style
	MessageCode        lipgloss.Style
	File               lipgloss.Style
	OtherHeader        lipgloss.Style
	UnrecognizedHeader lipgloss.Style
	Rule               lipgloss.Style
	Title              lipgloss.Style

	// Interactive browser
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Match    lipgloss.Style
	Search   lipgloss.Style
	Help     lipgloss.Style
	Remark   lipgloss.Style
}

// NewTheme builds the styles on r.
func NewTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Package: r.NewStyle().
			Foreground(yellow).
			Background(black).
			Bold(true),
		MessageCode: r.NewStyle().Foreground(cyan),
		File:        r.NewStyle().Foreground(blue),
		OtherHeader: r.NewStyle().
			Foreground(yellow).
			Background(black),
		UnrecognizedHeader: r.NewStyle().
			Foreground(magenta).
			Background(black),
		Rule:  r.NewStyle().Foreground(green),
		Title: r.NewStyle().Foreground(yellow),

		Header: r.NewStyle().
			Bold(true).
			Foreground(yellow),
		Muted: r.NewStyle().Foreground(gray),
		Selected: r.NewStyle().
			Reverse(true).
			Bold(true),
		Match: r.NewStyle().
			Foreground(black).
			Background(green).
			Bold(true),
		Search: r.NewStyle().
			Foreground(cyan).
			Bold(true),
		Help: r.NewStyle().
			Foreground(gray).
			MarginTop(1),
		Remark: r.NewStyle().
			Foreground(red).
			Italic(true),
	}
}
