// Package scrape pulls links out of unparsed result pages by chasing
// literal marker strings through the document.
//
// Nothing here parses HTML. A page whose layout has drifted from the
// configured markers yields empty entries, never an error.
package scrape

import "strings"

// Cursor is a forward-only position in a document.
// A failed Seek, Skip or Take leaves the position where it was.
type Cursor struct {
	doc string
	pos int
}

// NewCursor returns a cursor at the start of doc.
func NewCursor(doc string) *Cursor {
	return &Cursor{doc: doc}
}

// Pos returns the current offset into the document.
func (c *Cursor) Pos() int { return c.pos }

// Rest returns the unread part of the document.
func (c *Cursor) Rest() string { return c.doc[c.pos:] }

// Seek moves to the start of the next occurrence of marker.
func (c *Cursor) Seek(marker string) bool {
	i := strings.Index(c.doc[c.pos:], marker)
	if i < 0 {
		return false
	}
	c.pos += i
	return true
}

// Skip moves just past the next occurrence of marker.
func (c *Cursor) Skip(marker string) bool {
	if !c.Seek(marker) {
		return false
	}
	c.pos += len(marker)
	return true
}

// Take returns the text up to the next delim and moves past delim.
func (c *Cursor) Take(delim string) (string, bool) {
	i := strings.Index(c.doc[c.pos:], delim)
	if i < 0 {
		return "", false
	}
	s := c.doc[c.pos : c.pos+i]
	c.pos += i + len(delim)
	return s, true
}

// Advance moves n bytes forward, stopping at the end of the document.
func (c *Cursor) Advance(n int) {
	c.pos = min(c.pos+n, len(c.doc))
}
