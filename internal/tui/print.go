package tui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/CaptShanks/repoprism/internal/parser"
)

const (
	// DefaultMaxWidth fits 130-column CI log viewers.
	DefaultMaxWidth = 129
	// DefaultPlaceholder marks a truncated line.
	DefaultPlaceholder = "..."

	indentPrefix = "  "
	bannerTitle  = "<<< Repoman results >>>"
)

// PrintOptions configures the non-interactive report.
type PrintOptions struct {
	Truncate    bool
	MaxWidth    int
	Placeholder string
	Color       ColorMode
}

// DefaultPrintOptions returns the report defaults.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{
		Truncate:    true,
		MaxWidth:    DefaultMaxWidth,
		Placeholder: DefaultPlaceholder,
		Color:       ColorAuto,
	}
}

// Printer renders a parsed result as an indented tree.
type Printer struct {
	w        io.Writer
	opts     PrintOptions
	renderer *lipgloss.Renderer
	theme    Theme
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, opts PrintOptions) *Printer {
	r := NewRenderer(w, opts.Color)
	return &Printer{
		w:        w,
		opts:     opts,
		renderer: r,
		theme:    NewTheme(r),
	}
}

// Print writes the report for res. res is only read.
func (p *Printer) Print(res *parser.Result) error {
	var b strings.Builder
	p.render(&b, res)
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) render(b *strings.Builder, res *parser.Result) {
	// Banner
	rule := strings.Repeat("=", max(p.opts.MaxWidth, 0))
	b.WriteString("\n")
	b.WriteString(p.theme.Rule.Render(rule) + "\n")
	title := p.renderer.PlaceHorizontal(p.opts.MaxWidth, lipgloss.Center, bannerTitle)
	b.WriteString(p.theme.Title.Render(title) + "\n")
	b.WriteString(p.theme.Rule.Render(rule) + "\n")
	b.WriteString("\n")

	if res.Packages.Len() > 0 {
		p.renderPackages(b, res.Packages, 0)
	}

	if res.Unaccountable.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(p.theme.OtherHeader.Render("Other messages") + ":\n")
		p.renderMessageCodes(b, res.Unaccountable, 1)
	}

	if len(res.Unrecognized) > 0 {
		b.WriteString("\n")
		b.WriteString(p.theme.UnrecognizedHeader.Render("Unrecognized lines") + ":\n")
		for _, line := range res.Unrecognized {
			b.WriteString(line + "\n")
		}
	}

	if res.RepomanSaid != "" {
		b.WriteString("\n")
		b.WriteString(res.RepomanSaid + "\n")
	}
}

func (p *Printer) renderPackages(b *strings.Builder, pkgs *parser.Packages, depth int) {
	for _, pkg := range pkgs.All() {
		p.writeLines(b, packageLines(p.theme, pkg, depth))
	}
}

func (p *Printer) renderMessageCodes(b *strings.Builder, codes *parser.MessageCodes, depth int) {
	p.writeLines(b, codeLines(p.theme, codes, depth))
}

func (p *Printer) writeLines(b *strings.Builder, lines []treeLine) {
	for _, l := range lines {
		p.writeLine(b, l.text, l.depth)
	}
}

// treeLine is one row of the report tree before indentation.
type treeLine struct {
	depth int
	text  string
}

// packageLines renders pkg: its own codes, then its files, then loose messages.
func packageLines(theme Theme, pkg *parser.Package, depth int) []treeLine {
	lines := []treeLine{{depth, theme.Package.Render(pkg.ID) + ":"}}
	lines = append(lines, codeLines(theme, pkg.MessageCodes(), depth+1)...)
	for _, f := range pkg.Files.All() {
		text := theme.File.Render(f.Name)
		if f.MessageCodes().Len() > 0 {
			text += ":"
		}
		lines = append(lines, treeLine{depth + 1, text})
		lines = append(lines, codeLines(theme, f.MessageCodes(), depth+2)...)
	}
	return append(lines, messageLines(pkg.Messages, depth+1)...)
}

// codeLines renders each code, with a colon only when messages follow.
func codeLines(theme Theme, codes *parser.MessageCodes, depth int) []treeLine {
	var lines []treeLine
	for _, code := range codes.All() {
		text := theme.MessageCode.Render(code.Name)
		if len(code.Messages) > 0 {
			text += ":"
		}
		lines = append(lines, treeLine{depth, text})
		lines = append(lines, messageLines(code.Messages, depth+1)...)
	}
	return lines
}

func messageLines(msgs []string, depth int) []treeLine {
	lines := make([]treeLine, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, treeLine{depth, msg})
	}
	return lines
}

// writeLine indents line by depth, then truncates it when enabled.
func (p *Printer) writeLine(b *strings.Builder, line string, depth int) {
	line = strings.Repeat(indentPrefix, depth) + line
	if p.opts.Truncate {
		line = Truncate(line, p.opts.MaxWidth, p.opts.Placeholder)
	}
	b.WriteString(line)
	b.WriteString("\n")
}

// Truncate clips line to maxWidth printable columns, ending it with
// placeholder. Escape sequences do not count towards the width. Lines that
// already fit are returned unchanged. A wide rune that would straddle the
// cut is dropped and its column padded with a space.
func Truncate(line string, maxWidth int, placeholder string) string {
	if ansi.PrintableRuneWidth(line) <= maxWidth {
		return line
	}
	keep := maxWidth - ansi.PrintableRuneWidth(placeholder)
	if keep < 0 {
		keep = 0
	}
	kept := truncate.String(line, uint(keep))
	if pad := keep - ansi.PrintableRuneWidth(kept); pad > 0 {
		kept += strings.Repeat(" ", pad)
	}
	return kept + placeholder
}
