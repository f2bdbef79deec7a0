package parser

import "slices"

// MessageCode groups the messages repoman reported under one code,
// e.g. "QA.StaleVar".
type MessageCode struct {
	Name     string
	Messages []string
}

// NewMessageCode returns an empty message code.
func NewMessageCode(name string) *MessageCode {
	return &MessageCode{Name: name}
}

// Sort orders the messages lexicographically.
func (c *MessageCode) Sort() {
	slices.Sort(c.Messages)
}

// MessageCodes is a message code mapping keyed by code name.
type MessageCodes = OrderedMap[*MessageCode]

func newMessageCodes() *MessageCodes {
	return NewOrderedMap(NewMessageCode)
}

// MessageCodeHolder is implemented by entities that carry message codes
// directly: packages (codes without a file) and files.
type MessageCodeHolder interface {
	MessageCodes() *MessageCodes
}

// File is a file inside a package, relative to the package directory.
type File struct {
	Name  string
	codes *MessageCodes
}

// NewFile returns a file with no message codes.
func NewFile(name string) *File {
	return &File{Name: name, codes: newMessageCodes()}
}

// MessageCodes returns the codes reported against the file.
func (f *File) MessageCodes() *MessageCodes {
	return f.codes
}

// Sort sorts the file's message codes.
func (f *File) Sort() {
	f.codes.Sort()
}

// Files is a file mapping keyed by relative path.
type Files = OrderedMap[*File]

// Package is a "category/name" package and everything reported for it.
type Package struct {
	ID    string
	Files *Files
	// Messages are attributed to the package but to neither a file nor a code.
	Messages []string

	codes *MessageCodes
}

// NewPackage returns an empty package.
func NewPackage(id string) *Package {
	return &Package{
		ID:    id,
		Files: NewOrderedMap(NewFile),
		codes: newMessageCodes(),
	}
}

// MessageCodes returns the codes reported against the package itself.
func (p *Package) MessageCodes() *MessageCodes {
	return p.codes
}

// Sort sorts files, message codes and flat messages.
func (p *Package) Sort() {
	p.Files.Sort()
	p.codes.Sort()
	slices.Sort(p.Messages)
}

// Packages is a package mapping keyed by package id.
type Packages = OrderedMap[*Package]

// Result is the parsed repoman report.
type Result struct {
	// RawInput holds every line that survived the skip rules, verbatim,
	// including its line terminator when read through Parse.
	RawInput []string

	Packages *Packages
	// Unaccountable holds codes whose text could not be tied to a package.
	Unaccountable *MessageCodes
	// RepomanSaid is the closing remark from the `RepoMan sez: "..."` line.
	RepomanSaid string

	Unrecognized []string
}

// NewResult returns an empty result with freshly allocated containers.
func NewResult() *Result {
	return &Result{
		Packages:      NewOrderedMap(NewPackage),
		Unaccountable: newMessageCodes(),
	}
}

// Sort sorts packages by id and recurses into them.
func (r *Result) Sort() {
	r.Packages.Sort()
}

// Stats summarizes a result.
type Stats struct {
	Packages      int
	Files         int
	MessageCodes  int
	Messages      int
	Unaccountable int
	Unrecognized  int
}

// Stats counts the entities in the result. Reading never creates entries.
func (r *Result) Stats() Stats {
	var s Stats
	countCodes := func(codes *MessageCodes) {
		for _, c := range codes.All() {
			s.MessageCodes++
			s.Messages += len(c.Messages)
		}
	}
	for _, pkg := range r.Packages.All() {
		s.Packages++
		s.Messages += len(pkg.Messages)
		countCodes(pkg.MessageCodes())
		for _, f := range pkg.Files.All() {
			s.Files++
			countCodes(f.MessageCodes())
		}
	}
	s.Unaccountable = r.Unaccountable.Len()
	for _, c := range r.Unaccountable.All() {
		s.Messages += len(c.Messages)
	}
	s.Unrecognized = len(r.Unrecognized)
	return s
}

// Empty reports whether the result holds nothing worth printing.
func (r *Result) Empty() bool {
	return r.Packages.Len() == 0 && r.Unaccountable.Len() == 0 &&
		len(r.Unrecognized) == 0 && r.RepomanSaid == ""
}
