package spicy

import (
	"gluec/internal/source"
)

// cursor is a byte-level scanner over one file. It understands `#` line
// comments and tracks offsets for spans.
type cursor struct {
	file *source.File
	pos  uint32
}

func newCursor(f *source.File) *cursor {
	return &cursor{file: f}
}

func (c *cursor) eof() bool {
	return int(c.pos) >= len(c.file.Content)
}

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.file.Content[c.pos]
}

func (c *cursor) next() byte {
	b := c.peek()
	if !c.eof() {
		c.pos++
	}
	return b
}

// skipSpace advances past whitespace and `#` comments.
func (c *cursor) skipSpace() {
	for !c.eof() {
		switch b := c.peek(); {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			c.pos++
		case b == '#':
			for !c.eof() && c.peek() != '\n' {
				c.pos++
			}
		default:
			return
		}
	}
}

func (c *cursor) span(start uint32) source.Span {
	return source.Span{File: c.file.ID, Start: start, End: c.pos}
}

func (c *cursor) here() source.Span {
	end := c.pos
	if int(end) < len(c.file.Content) {
		end++
	}
	return source.Span{File: c.file.ID, Start: c.pos, End: end}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// ident scans a plain identifier; empty when the cursor is not on one.
func (c *cursor) ident() (string, source.Span) {
	start := c.pos
	if c.eof() || !isIdentStart(c.peek()) {
		return "", c.here()
	}
	for !c.eof() && isIdentPart(c.peek()) {
		c.pos++
	}
	return string(c.file.Content[start:c.pos]), c.span(start)
}

// scopedIdent scans `A::B::C` style identifiers.
func (c *cursor) scopedIdent() (string, source.Span) {
	start := c.pos
	id, sp := c.ident()
	if id == "" {
		return "", sp
	}
	for {
		if int(c.pos)+1 >= len(c.file.Content) || c.peek() != ':' || c.file.Content[c.pos+1] != ':' {
			break
		}
		c.pos += 2
		part, _ := c.ident()
		if part == "" {
			c.pos -= 2
			break
		}
	}
	return string(c.file.Content[start:c.pos]), c.span(start)
}

// eat consumes the expected byte, reporting success.
func (c *cursor) eat(b byte) bool {
	if c.peek() == b {
		c.pos++
		return true
	}
	return false
}
