package glue

import (
	"gluec/internal/source"
)

// scanner is a byte-level cursor over one EVT file. EVT is line-friendly
// but not line-oriented; declarations end with ';'.
type scanner struct {
	file *source.File
	pos  uint32
}

func newScanner(f *source.File) *scanner {
	return &scanner{file: f}
}

func (s *scanner) eof() bool {
	return int(s.pos) >= len(s.file.Content)
}

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.file.Content[s.pos]
}

func (s *scanner) peekAt(n uint32) byte {
	if int(s.pos+n) >= len(s.file.Content) {
		return 0
	}
	return s.file.Content[s.pos+n]
}

func (s *scanner) next() byte {
	b := s.peek()
	if !s.eof() {
		s.pos++
	}
	return b
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		switch b := s.peek(); {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			s.pos++
		case b == '#':
			for !s.eof() && s.peek() != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *scanner) span(start uint32) source.Span {
	return source.Span{File: s.file.ID, Start: start, End: s.pos}
}

func (s *scanner) here() source.Span {
	end := s.pos
	if int(end) < len(s.file.Content) {
		end++
	}
	return source.Span{File: s.file.ID, Start: s.pos, End: end}
}

func (s *scanner) eat(b byte) bool {
	if s.peek() == b {
		s.pos++
		return true
	}
	return false
}

func identStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func identPart(b byte) bool {
	return identStart(b) || (b >= '0' && b <= '9')
}

func (s *scanner) ident() (string, source.Span) {
	start := s.pos
	if !identStart(s.peek()) {
		return "", s.here()
	}
	for !s.eof() && identPart(s.peek()) {
		s.pos++
	}
	return string(s.file.Content[start:s.pos]), s.span(start)
}

// scopedIdent scans `A::B::C`. It stops before a `::%hook` suffix so the
// caller can inspect it.
func (s *scanner) scopedIdent() (string, source.Span) {
	start := s.pos
	id, sp := s.ident()
	if id == "" {
		return "", sp
	}
	for s.peek() == ':' && s.peekAt(1) == ':' && identStart(s.peekAt(2)) {
		s.pos += 2
		s.ident()
	}
	return string(s.file.Content[start:s.pos]), s.span(start)
}

// rawToken scans a non-space run up to one of the given stop bytes; used
// for values like MIME types that are not identifiers.
func (s *scanner) rawToken(stops string) (string, source.Span) {
	start := s.pos
	for !s.eof() {
		b := s.peek()
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '#' {
			break
		}
		stopped := false
		for i := 0; i < len(stops); i++ {
			if b == stops[i] {
				stopped = true
				break
			}
		}
		if stopped {
			break
		}
		s.pos++
	}
	return string(s.file.Content[start:s.pos]), s.span(start)
}

// stringLit scans a double-quoted string with backslash escapes. The
// cursor must sit on the opening quote.
func (s *scanner) stringLit() (string, source.Span, bool) {
	start := s.pos
	if !s.eat('"') {
		return "", s.here(), false
	}
	var out []byte
	for !s.eof() {
		switch b := s.next(); b {
		case '\\':
			out = append(out, s.next())
		case '"':
			return string(out), s.span(start), true
		default:
			out = append(out, b)
		}
	}
	return string(out), s.span(start), false
}

func (s *scanner) number() (string, source.Span) {
	start := s.pos
	if s.peek() == '-' {
		s.pos++
	}
	for !s.eof() && s.peek() >= '0' && s.peek() <= '9' {
		s.pos++
	}
	if s.pos == start || (s.file.Content[start] == '-' && s.pos == start+1) {
		return "", s.here()
	}
	return string(s.file.Content[start:s.pos]), s.span(start)
}
