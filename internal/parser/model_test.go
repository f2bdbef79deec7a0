package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedMapGetCreatesOnce(t *testing.T) {
	codes := NewOrderedMap(NewMessageCode)

	_, ok := codes.Lookup("QA.StaleVar")
	require.False(t, ok)

	first := codes.Get("QA.StaleVar")
	second := codes.Get("QA.StaleVar")

	assert.Same(t, first, second)
	assert.Equal(t, 1, codes.Len())
	assert.Equal(t, "QA.StaleVar", first.Name)
	assert.Empty(t, first.Messages)

	first.Messages = append(first.Messages, "stale")
	assert.Equal(t, []string{"stale"}, codes.Get("QA.StaleVar").Messages)
}

func TestOrderedMapKeepsInsertionOrder(t *testing.T) {
	pkgs := NewOrderedMap(NewPackage)
	for _, id := range []string{"cat/c", "cat/a", "cat/b"} {
		pkgs.Get(id)
	}
	assert.Equal(t, []string{"cat/c", "cat/a", "cat/b"}, pkgs.Keys())

	var ids []string
	for _, pkg := range pkgs.Values() {
		ids = append(ids, pkg.ID)
	}
	assert.Equal(t, []string{"cat/c", "cat/a", "cat/b"}, ids)
}

func TestOrderedMapAllStopsEarly(t *testing.T) {
	files := NewOrderedMap(NewFile)
	files.Get("a.ebuild")
	files.Get("b.ebuild")

	seen := 0
	for range files.All() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestOrderedMapKeysIsCopy(t *testing.T) {
	files := NewOrderedMap(NewFile)
	files.Get("b.ebuild")
	files.Get("a.ebuild")

	keys := files.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"b.ebuild", "a.ebuild"}, files.Keys())
}

func populated() *Result {
	res := NewResult()
	pkg := res.Packages.Get("cat/b")
	pkg.Messages = append(pkg.Messages, "zeta", "alpha")
	code := pkg.MessageCodes().Get("QA.Z")
	code.Messages = append(code.Messages, "2", "1")
	pkg.MessageCodes().Get("QA.A")
	file := pkg.Files.Get("z.ebuild")
	file.MessageCodes().Get("QA.Y").Messages = []string{"y2", "y1"}
	pkg.Files.Get("a.ebuild")

	res.Packages.Get("cat/a")
	res.Unaccountable.Get("QA.U").Messages = []string{"u"}
	return res
}

func TestResultSortRecurses(t *testing.T) {
	res := populated()
	res.Sort()

	assert.Equal(t, []string{"cat/a", "cat/b"}, res.Packages.Keys())

	pkg, _ := res.Packages.Lookup("cat/b")
	assert.Equal(t, []string{"alpha", "zeta"}, pkg.Messages)
	assert.Equal(t, []string{"QA.A", "QA.Z"}, pkg.MessageCodes().Keys())
	assert.Equal(t, []string{"a.ebuild", "z.ebuild"}, pkg.Files.Keys())

	code, _ := pkg.MessageCodes().Lookup("QA.Z")
	assert.Equal(t, []string{"1", "2"}, code.Messages)

	file, _ := pkg.Files.Lookup("z.ebuild")
	y, _ := file.MessageCodes().Lookup("QA.Y")
	assert.Equal(t, []string{"y1", "y2"}, y.Messages)
}

func TestResultSortIdempotent(t *testing.T) {
	once := populated()
	once.Sort()

	twice := populated()
	twice.Sort()
	twice.Sort()

	assert.Equal(t, flatten(once), flatten(twice))
}

// flatten lists every key and message in traversal order.
func flatten(res *Result) []string {
	var out []string
	codes := func(prefix string, codes *MessageCodes) {
		for name, c := range codes.All() {
			out = append(out, prefix+name)
			for _, m := range c.Messages {
				out = append(out, prefix+name+" "+m)
			}
		}
	}
	for id, pkg := range res.Packages.All() {
		out = append(out, id)
		codes(id+" ", pkg.MessageCodes())
		for name, f := range pkg.Files.All() {
			out = append(out, id+"/"+name)
			codes(id+"/"+name+" ", f.MessageCodes())
		}
		for _, m := range pkg.Messages {
			out = append(out, id+": "+m)
		}
	}
	codes("? ", res.Unaccountable)
	return out
}

func TestHoldersShareInterface(t *testing.T) {
	holders := []MessageCodeHolder{NewPackage("cat/a"), NewFile("a.ebuild")}
	for _, h := range holders {
		h.MessageCodes().Get("QA.X")
		_, ok := h.MessageCodes().Lookup("QA.X")
		assert.True(t, ok)
	}
}

func TestNewResultIsFresh(t *testing.T) {
	a := NewResult()
	a.Packages.Get("cat/a")
	a.Unaccountable.Get("QA.X")

	b := NewResult()
	assert.Zero(t, b.Packages.Len())
	assert.Zero(t, b.Unaccountable.Len())
}

func TestStatsDoesNotCreateEntries(t *testing.T) {
	res := populated()
	before := res.Packages.Keys()
	res.Stats()
	assert.Equal(t, before, res.Packages.Keys())
}
