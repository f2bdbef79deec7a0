package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaptShanks/repoprism/internal/parser"
)

func plainOptions() PrintOptions {
	opts := DefaultPrintOptions()
	opts.Color = ColorNever
	return opts
}

func render(t *testing.T, res *parser.Result, opts PrintOptions) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, opts).Print(res))
	return buf.String()
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"longer", strings.Repeat("x", 25), strings.Repeat("x", 17) + "..."},
		{"exact", strings.Repeat("x", 20), strings.Repeat("x", 20)},
		{"shorter", "short", "short"},
		{"one over", strings.Repeat("y", 21), strings.Repeat("y", 17) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.line, 20, "...")
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 20)
		})
	}
}

func TestTruncateIgnoresEscapes(t *testing.T) {
	colored := "\x1b[36m" + strings.Repeat("c", 10) + "\x1b[0m"
	assert.Equal(t, colored, Truncate(colored, 10, "..."))

	long := "\x1b[36m" + strings.Repeat("c", 30) + "\x1b[0m"
	got := Truncate(long, 20, "...")
	assert.Equal(t, 20, ansi.PrintableRuneWidth(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateWideRuneAtCut(t *testing.T) {
	line := strings.Repeat("a", 16) + strings.Repeat("日", 5)
	got := Truncate(line, 20, "...")

	assert.Equal(t, strings.Repeat("a", 16)+" ...", got)
	assert.Equal(t, 20, ansi.PrintableRuneWidth(got))
}

func TestTruncatePlaceholderWiderThanWidth(t *testing.T) {
	assert.Equal(t, "[cut]", Truncate("abcdefgh", 3, "[cut]"))
}

func TestPrintBanner(t *testing.T) {
	opts := plainOptions()
	opts.MaxWidth = 41
	out := render(t, parser.NewResult(), opts)

	rule := strings.Repeat("=", 41)
	title := strings.Repeat(" ", 9) + bannerTitle + strings.Repeat(" ", 9)
	assert.Equal(t, "\n"+rule+"\n"+title+"\n"+rule+"\n\n", out)
}

const scan = `QA.Syntax pkgcat/pkgname/some/file.ebuild: bad token
QA.Other pkgcat/pkgname: generic note
dependency.bad dev-util/bar
LIVEVCS.unmasked dev-util/bar/bar-9999.ebuild
QA.Foo some unrelated free text
this line means nothing to anyone
RepoMan sez: "You're only giving me a partial QA payment?"`

func TestPrintTree(t *testing.T) {
	res, err := parser.Parse(strings.NewReader(scan))
	require.NoError(t, err)

	out := render(t, res, plainOptions())
	_, body, found := strings.Cut(out, strings.Repeat("=", DefaultMaxWidth)+"\n\n")
	require.True(t, found)

	want := `dev-util/bar:
  dependency.bad
  bar-9999.ebuild:
    LIVEVCS.unmasked
pkgcat/pkgname:
  QA.Other:
    generic note
  some/file.ebuild:
    QA.Syntax:
      bad token

Other messages:
  QA.Foo:
    some unrelated free text

Unrecognized lines:
this line means nothing to anyone

You're only giving me a partial QA payment?
`
	assert.Equal(t, want, body)
}

func TestPrintSortsPackages(t *testing.T) {
	res := parser.New().ParseLines([]string{
		"QA.Other cat/b: second",
		"QA.Other cat/a: first",
	})
	out := render(t, res, plainOptions())
	assert.Less(t, strings.Index(out, "cat/a:"), strings.Index(out, "cat/b:"))
}

func TestPrintFlatPackageMessages(t *testing.T) {
	res := parser.NewResult()
	pkg := res.Packages.Get("cat/a")
	pkg.Messages = append(pkg.Messages, "loose note")
	pkg.Files.Get("empty.ebuild")

	out := render(t, res, plainOptions())
	assert.Contains(t, out, "cat/a:\n  empty.ebuild\n  loose note\n")
}

func TestPrintTruncatesTreeOnly(t *testing.T) {
	long := strings.Repeat("z", 60)
	res := parser.New().ParseLines([]string{
		"QA.Other cat/a: " + long,
		"QA.Wild " + long,
		long + " unrecognized",
		`RepoMan sez: "` + long + `"`,
	})

	opts := plainOptions()
	opts.MaxWidth = 30
	out := render(t, res, opts)

	assert.Contains(t, out, "    "+strings.Repeat("z", 23)+"...\n")
	assert.Contains(t, out, "\n"+long+" unrecognized\n")
	assert.True(t, strings.HasSuffix(out, "\n"+long+"\n"))

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "  ") {
			assert.LessOrEqual(t, len(line), 30, line)
		}
	}
}

func TestPrintNoTruncate(t *testing.T) {
	long := strings.Repeat("z", 60)
	res := parser.New().ParseLines([]string{"QA.Other cat/a: " + long})

	opts := plainOptions()
	opts.MaxWidth = 30
	opts.Truncate = false
	out := render(t, res, opts)
	assert.Contains(t, out, "    "+long+"\n")
}

func TestPrintDoesNotMutate(t *testing.T) {
	res, err := parser.Parse(strings.NewReader(scan))
	require.NoError(t, err)
	before := res.Stats()
	keys := res.Packages.Keys()

	render(t, res, plainOptions())

	assert.Equal(t, before, res.Stats())
	assert.Equal(t, keys, res.Packages.Keys())
}

func TestPrintColored(t *testing.T) {
	res := parser.New().ParseLines([]string{"QA.Other cat/a: note"})
	opts := DefaultPrintOptions()
	opts.Color = ColorAlways
	out := render(t, res, opts)

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "cat/a")
	assert.Contains(t, out, "QA.Other")
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{
		"":        ColorAuto,
		"auto":    ColorAuto,
		"ALWAYS":  ColorAlways,
		" never ": ColorNever,
	} {
		got, err := ParseColorMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
}
