package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
)

// Default skip rules for repoman's own chatter.
const (
	DefaultBannerMarker = "RepoMan scours the neighborhood"
	DefaultSkipPrefix   = "NumberOf"
)

var (
	// QA.Kind  <rest>
	genericCodeRegex = regexp.MustCompile(`^(?P<code>[A-Za-z_]+\.[A-Za-z_]+) +(?P<rest>.+)$`)
	// category/name[/path/to/file][: message]
	codeLocationRegex = regexp.MustCompile(`^(?P<pkgid>[A-Za-z0-9-]+/[A-Za-z0-9_-]+)(?:/(?P<file>[^ :]+))?(?::? +(?P<msg>.+))?$`)
	repomanSezRegex   = regexp.MustCompile(`^RepoMan sez: "(?P<msg>.+)"$`)
)

// Option configures a Parser.
type Option func(*Parser)

// WithBannerMarkers replaces the substrings that mark repoman's header lines.
func WithBannerMarkers(markers ...string) Option {
	return func(p *Parser) {
		p.bannerMarkers = markers
	}
}

// WithSkipPrefixes replaces the line prefixes that mark summary count lines.
func WithSkipPrefixes(prefixes ...string) Option {
	return func(p *Parser) {
		p.skipPrefixes = prefixes
	}
}

// WithStopAtBlank makes the first blank line after any classified line end
// the scan. By default blank lines are skipped and scanning continues.
func WithStopAtBlank(stop bool) Option {
	return func(p *Parser) {
		p.stopAtBlank = stop
	}
}

// WithLogger sets the logger used for classification tracing.
func WithLogger(logger *log.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Parser turns repoman output into a Result. A Parser holds only its
// configuration; every Parse call builds a fresh Result.
type Parser struct {
	bannerMarkers []string
	skipPrefixes  []string
	stopAtBlank   bool
	logger        *log.Logger
}

// New returns a Parser with the default skip rules.
func New(opts ...Option) *Parser {
	p := &Parser{
		bannerMarkers: []string{DefaultBannerMarker},
		skipPrefixes:  []string{DefaultSkipPrefix},
		logger:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses repoman output read from r with the default options.
func Parse(r io.Reader) (*Result, error) {
	return New().Parse(r)
}

// Parse reads r line by line and classifies every line. Lines of any
// length are accepted. The only error is a failure to read r.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	var lines []string
	reader := bufio.NewReader(r)

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read repoman output: %w", err)
		}
	}

	return p.ParseLines(lines), nil
}

// ParseLines classifies lines in order and returns the sorted result.
func (p *Parser) ParseLines(lines []string) *Result {
	res := NewResult()
	classified := 0

	for i, line := range lines {
		content := strings.TrimRight(line, "\r\n")

		if len(content) <= 2 {
			if p.stopAtBlank && classified > 0 {
				p.logger.Debug("blank line ends scan", "line", i+1)
				break
			}
			continue
		}
		if p.isSkipped(content) {
			p.logger.Debug("skipping line", "line", i+1)
			continue
		}

		res.RawInput = append(res.RawInput, line)
		classified++

		content = strings.TrimRightFunc(content, unicode.IsSpace)
		if !p.classify(res, content) {
			p.logger.Debug("unrecognized line", "line", i+1, "text", content)
			res.Unrecognized = append(res.Unrecognized, content)
		}
	}

	res.Sort()
	return res
}

func (p *Parser) isSkipped(line string) bool {
	for _, marker := range p.bannerMarkers {
		if marker != "" && strings.Contains(line, marker) {
			return true
		}
	}
	for _, prefix := range p.skipPrefixes {
		if prefix != "" && strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// classify files line into the result and reports whether any pattern matched.
func (p *Parser) classify(res *Result, line string) bool {
	if match := genericCodeRegex.FindStringSubmatch(line); match != nil {
		codeName := match[genericCodeRegex.SubexpIndex("code")]
		rest := match[genericCodeRegex.SubexpIndex("rest")]

		loc := codeLocationRegex.FindStringSubmatch(rest)
		if loc == nil {
			code := res.Unaccountable.Get(codeName)
			code.Messages = append(code.Messages, rest)
			p.logger.Debug("unaccountable message code", "code", codeName)
			return true
		}

		pkgID := loc[codeLocationRegex.SubexpIndex("pkgid")]
		file := loc[codeLocationRegex.SubexpIndex("file")]
		msg := loc[codeLocationRegex.SubexpIndex("msg")]

		pkg := res.Packages.Get(pkgID)
		var holder MessageCodeHolder = pkg
		if file != "" {
			holder = pkg.Files.Get(file)
		}
		code := holder.MessageCodes().Get(codeName)
		if msg != "" {
			code.Messages = append(code.Messages, msg)
		}
		p.logger.Debug("message code", "code", codeName, "package", pkgID, "file", file)
		return true
	}

	if res.RepomanSaid == "" {
		if match := repomanSezRegex.FindStringSubmatch(line); match != nil {
			res.RepomanSaid = match[repomanSezRegex.SubexpIndex("msg")]
			return true
		}
	}

	return false
}
