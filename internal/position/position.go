package position

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/rivo/uniseg"
)

// Position is a 1-based, human-facing location in a text.
type Position struct {
	Line   int
	Column int
}

// String renders the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Source is the unbuilt state of a line index: it holds the text only.
// Build scans the text at most once and hands out the same Table afterwards.
type Source struct {
	text string

	once  sync.Once
	table *Table
}

// NewSource wraps text for later indexing. No scanning happens here.
func NewSource(text string) *Source {
	return &Source{text: text}
}

// Text returns the indexed text.
func (s *Source) Text() string {
	return s.text
}

// Build returns the line table for the source, computing it on first call.
func (s *Source) Build() *Table {
	s.once.Do(func() {
		s.table = NewTable(s.text)
	})
	return s.table
}

// Table is the built, immutable line-start table for one text.
// It is safe for concurrent use.
type Table struct {
	text string
	// starts holds the byte offset of every line head, ascending.
	// starts[0] is always 0.
	starts []int
}

// NewTable scans text once and records the start offset of every line.
// A line starts at offset 0 and right after each '\n'.
func NewTable(text string) *Table {
	starts := make([]int, 1, 16)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Table{text: text, starts: starts}
}

// Len returns the byte length of the indexed text.
func (t *Table) Len() int {
	return len(t.text)
}

// Lines returns the number of lines. Text ending in a newline has an empty
// last line.
func (t *Table) Lines() int {
	return len(t.starts)
}

// LineStart returns the byte offset at which the 1-based line begins.
// It panics if line is out of range.
func (t *Table) LineStart(line int) int {
	if line < 1 || line > len(t.starts) {
		panic(fmt.Sprintf("position: line %d out of range [1, %d]", line, len(t.starts)))
	}
	return t.starts[line-1]
}

// Lookup returns the line and column of byte offset idx, where
// 0 <= idx <= Len(). The column counts grapheme clusters, so a character
// built from several code points advances it by one.
//
// Lookup panics if idx is out of range; callers only pass offsets they
// have already bounds-checked.
func (t *Table) Lookup(idx int) Position {
	return t.Cursor().Lookup(idx)
}

// lineOf returns the 0-based line containing idx.
func (t *Table) lineOf(idx int) int {
	// First line head strictly after idx, minus one, is the line containing idx.
	return sort.Search(len(t.starts), func(i int) bool {
		return t.starts[i] > idx
	}) - 1
}

func (t *Table) checkOffset(idx int) {
	if idx < 0 || idx > len(t.text) {
		panic(fmt.Sprintf("position: offset %d out of range [0, %d]", idx, len(t.text)))
	}
}

// Cursor returns a fresh Cursor over t.
func (t *Table) Cursor() *Cursor {
	return &Cursor{table: t, line: -1}
}

// Cursor answers the same queries as Table.Lookup but keeps the last
// grapheme boundary it reached, so a sequence of non-decreasing offsets on
// one line costs time linear in the line length overall. An offset behind
// the previous one is still answered correctly by rescanning its line.
//
// A Cursor is not safe for concurrent use; take one per scan.
type Cursor struct {
	table *Table

	line    int // 0-based, -1 before the first lookup
	lineEnd int // exclusive upper bound of offsets on line
	segEnd  int // end of the line's text

	// pos is a cluster boundary of the whole line and clusters counts the
	// clusters between the line head and pos.
	pos      int
	clusters int
	state    int

	// next is the boundary after pos, or pos when the line is exhausted.
	next      int
	nextState int
}

// Lookup returns the position of byte offset idx. It panics if idx is out
// of range.
func (c *Cursor) Lookup(idx int) Position {
	t := c.table
	t.checkOffset(idx)

	if c.line < 0 || idx < c.pos || idx >= c.lineEnd {
		c.seek(idx)
	}
	for c.next > c.pos && c.next <= idx {
		c.pos, c.state = c.next, c.nextState
		c.clusters++
		c.step()
	}

	col := c.clusters + 1
	if idx > c.pos {
		// idx splits the cluster starting at pos; the truncated prefix
		// still counts as one cluster.
		col++
	}
	return Position{Line: c.line + 1, Column: col}
}

func (c *Cursor) seek(idx int) {
	t := c.table
	c.line = t.lineOf(idx)
	c.segEnd = len(t.text)
	c.lineEnd = len(t.text) + 1
	if c.line+1 < len(t.starts) {
		c.segEnd = t.starts[c.line+1]
		c.lineEnd = c.segEnd
	}
	c.pos = t.starts[c.line]
	c.clusters = 0
	c.state = -1
	c.step()
}

func (c *Cursor) step() {
	if c.pos >= c.segEnd {
		c.next = c.pos
		return
	}
	cluster, _, _, state := uniseg.FirstGraphemeClusterInString(c.table.text[c.pos:c.segEnd], c.state)
	c.next = c.pos + len(cluster)
	c.nextState = state
}
