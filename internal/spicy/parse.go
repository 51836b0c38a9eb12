package spicy

import (
	"fmt"
	"strconv"

	"gluec/internal/ast"
	"gluec/internal/diag"
	"gluec/internal/source"
)

// parser extracts the declaration surface of one module: the module header,
// imports, and top-level type declarations. Anything else at the top level
// (functions, hooks, globals) is skipped over; the glue layer never needs it.
type parser struct {
	cur *cursor
	rep diag.Reporter
}

func parseModule(f *source.File, rep diag.Reporter) *ast.Module {
	p := &parser{cur: newCursor(f), rep: rep}
	return p.module()
}

func (p *parser) errorf(sp source.Span, code diag.Code, format string, args ...any) {
	p.rep.Report(code, diag.SevError, sp, fmt.Sprintf(format, args...), nil)
}

func (p *parser) module() *ast.Module {
	mod := &ast.Module{}
	p.cur.skipSpace()

	start := p.cur.pos
	kw, sp := p.cur.ident()
	if kw != "module" {
		p.errorf(sp, diag.CompileExpectModule, "expected 'module' declaration at top of file")
		return mod
	}
	p.cur.skipSpace()
	name, nameSp := p.cur.ident()
	if name == "" {
		p.errorf(nameSp, diag.CompileExpectModule, "expected module name")
		return mod
	}
	mod.ID = name
	p.cur.skipSpace()
	if !p.cur.eat(';') {
		p.errorf(p.cur.here(), diag.CompileExpectSemicolon, "expected ';' after module declaration")
	}
	mod.Span = p.cur.span(start)

	for {
		p.cur.skipSpace()
		if p.cur.eof() {
			break
		}
		p.topLevel(mod)
	}
	return mod
}

func (p *parser) topLevel(mod *ast.Module) {
	declStart := p.cur.pos
	word, sp := p.cur.ident()

	linkage := ast.LinkagePrivate
	if word == "public" || word == "private" {
		if word == "public" {
			linkage = ast.LinkagePublic
		}
		p.cur.skipSpace()
		word, sp = p.cur.ident()
	}

	switch word {
	case "import":
		p.cur.skipSpace()
		name, nameSp := p.cur.scopedIdent()
		if name == "" {
			p.errorf(nameSp, diag.CompileExpectIdentifier, "expected module name after 'import'")
			p.skipStatement()
			return
		}
		p.skipStatement() // optional version constraint, then ';'
		mod.Imports = append(mod.Imports, ast.Import{Module: name, Span: nameSp})

	case "type":
		p.typeDecl(mod, linkage, declStart)

	case "":
		p.errorf(sp, diag.CompileUnexpectedToken, "unexpected character %q", string(p.cur.peek()))
		p.cur.next()

	default:
		// function/hook/global declarations are outside the declaration
		// surface this front end extracts
		p.skipStatement()
	}
}

func (p *parser) typeDecl(mod *ast.Module, linkage ast.Linkage, declStart uint32) {
	p.cur.skipSpace()
	name, nameSp := p.cur.ident()
	if name == "" {
		p.errorf(nameSp, diag.CompileExpectIdentifier, "expected type name")
		p.skipStatement()
		return
	}
	p.cur.skipSpace()
	if !p.cur.eat('=') {
		p.errorf(p.cur.here(), diag.CompileExpectType, "expected '=' in type declaration of %s", name)
		p.skipStatement()
		return
	}
	p.cur.skipSpace()

	typ := p.typeBody()
	if typ == nil {
		p.skipStatement()
		return
	}
	p.cur.skipSpace()
	if !p.cur.eat(';') && p.cur.peek() == '&' {
		p.skipStatement() // trailing type attributes
	}

	for _, d := range mod.Decls {
		if d.ID == name {
			p.errorf(nameSp, diag.CompileDuplicateDecl, "type %s already declared", ast.Qualified(mod.ID, name))
			return
		}
	}

	mod.Decls = append(mod.Decls, &ast.TypeDecl{
		ID:      name,
		Linkage: linkage,
		Type:    typ,
		Span:    p.cur.span(declStart),
	})
}

func (p *parser) typeBody() ast.Type {
	word, sp := p.cur.ident()
	switch word {
	case "unit":
		return p.unitBody()
	case "enum":
		return p.enumBody()
	case "":
		p.errorf(sp, diag.CompileExpectType, "expected type definition")
		return nil
	default:
		// alias to a scalar or another declared type
		return refOrScalar(word, sp)
	}
}

func (p *parser) unitBody() ast.Type {
	unit := &ast.UnitType{}
	p.cur.skipSpace()

	// unit parameters are accepted and skipped
	if p.cur.peek() == '(' {
		p.skipBalanced('(', ')')
		p.cur.skipSpace()
	}
	if !p.cur.eat('{') {
		p.errorf(p.cur.here(), diag.CompileExpectType, "expected '{' after 'unit'")
		return nil
	}

	for {
		p.cur.skipSpace()
		if p.cur.eof() {
			p.errorf(p.cur.here(), diag.CompileUnexpectedToken, "unterminated unit body")
			return unit
		}
		if p.cur.eat('}') {
			return unit
		}
		p.unitField(unit)
	}
}

// unitField parses one `name : type attrs ;` entry. Fields without a name
// and embedded `on`/`%property` items are consumed without being recorded.
func (p *parser) unitField(unit *ast.UnitType) {
	start := p.cur.pos

	switch p.cur.peek() {
	case '%': // unit property
		p.skipStatement()
		return
	case ':': // anonymous field
		p.cur.next()
		p.cur.skipSpace()
		typ := p.fieldType()
		p.skipFieldTail()
		if typ != nil {
			unit.Fields = append(unit.Fields, ast.Field{Type: typ, Anonymous: true, Span: p.cur.span(start)})
		}
		return
	}

	name, nameSp := p.cur.ident()
	if name == "" {
		p.errorf(nameSp, diag.CompileExpectFieldName, "expected field name in unit body")
		p.skipStatement()
		return
	}
	if name == "on" || name == "var" || name == "sink" {
		// hooks and variables do not take part in event binding
		p.skipStatement()
		return
	}

	p.cur.skipSpace()
	if !p.cur.eat(':') {
		p.errorf(p.cur.here(), diag.CompileExpectFieldName, "expected ':' after field name %s", name)
		p.skipStatement()
		return
	}
	p.cur.skipSpace()
	typ := p.fieldType()
	p.skipFieldTail()
	if typ == nil {
		return
	}
	unit.Fields = append(unit.Fields, ast.Field{Name: name, Type: typ, Span: p.cur.span(start)})
}

// fieldType parses the type position of a field: a regex or bytes literal
// (both parse to bytes), vector<T>, a scalar, or a reference to a declared
// type.
func (p *parser) fieldType() ast.Type {
	switch p.cur.peek() {
	case '/':
		p.skipRegex()
		return &ast.ScalarType{Name: "bytes"}
	case 'b':
		if int(p.cur.pos)+1 < len(p.cur.file.Content) && p.cur.file.Content[p.cur.pos+1] == '"' {
			p.cur.next()
			p.skipString()
			return &ast.ScalarType{Name: "bytes"}
		}
	case '"':
		p.skipString()
		return &ast.ScalarType{Name: "bytes"}
	}

	name, sp := p.cur.scopedIdent()
	if name == "" {
		p.errorf(sp, diag.CompileExpectType, "expected field type")
		return nil
	}
	if name == "vector" {
		p.cur.skipSpace()
		if !p.cur.eat('<') {
			p.errorf(p.cur.here(), diag.CompileExpectType, "expected '<' after 'vector'")
			return nil
		}
		p.cur.skipSpace()
		elem := p.fieldType()
		p.cur.skipSpace()
		p.cur.eat('>')
		if elem == nil {
			return nil
		}
		return &ast.VectorType{Elem: elem}
	}
	return refOrScalar(name, sp)
}

var scalarNames = map[string]struct{}{
	"bytes": {}, "string": {}, "bool": {}, "real": {}, "void": {},
	"time": {}, "interval": {}, "addr": {}, "port": {},
	"uint8": {}, "uint16": {}, "uint32": {}, "uint64": {},
	"int8": {}, "int16": {}, "int32": {}, "int64": {},
}

func refOrScalar(name string, sp source.Span) ast.Type {
	if _, ok := scalarNames[name]; ok {
		return &ast.ScalarType{Name: name}
	}
	return &ast.RefType{Target: name, Span: sp}
}

func (p *parser) enumBody() ast.Type {
	enum := &ast.EnumType{}
	p.cur.skipSpace()
	if !p.cur.eat('{') {
		p.errorf(p.cur.here(), diag.CompileExpectType, "expected '{' after 'enum'")
		return nil
	}

	next := int64(0)
	for {
		p.cur.skipSpace()
		if p.cur.eof() {
			p.errorf(p.cur.here(), diag.CompileUnexpectedToken, "unterminated enum body")
			return enum
		}
		if p.cur.eat('}') {
			return enum
		}

		name, nameSp := p.cur.ident()
		if name == "" {
			p.errorf(nameSp, diag.CompileBadEnumLabel, "expected enum label")
			p.cur.next()
			continue
		}
		value := next
		p.cur.skipSpace()
		if p.cur.eat('=') {
			p.cur.skipSpace()
			lit, litSp := p.number()
			if lit == "" {
				p.errorf(litSp, diag.CompileBadEnumLabel, "expected numeric value for enum label %s", name)
			} else {
				v, err := strconv.ParseInt(lit, 0, 64)
				if err != nil {
					p.errorf(litSp, diag.CompileBadEnumLabel, "bad enum value %q: %v", lit, err)
				} else {
					value = v
				}
			}
		}
		next = value + 1
		enum.Labels = append(enum.Labels, ast.EnumLabel{Name: name, Value: value, Span: nameSp})

		p.cur.skipSpace()
		p.cur.eat(',')
	}
}

func (p *parser) number() (string, source.Span) {
	start := p.cur.pos
	if p.cur.peek() == '-' {
		p.cur.next()
	}
	for !p.eofOrNonNumeric() {
		p.cur.next()
	}
	if p.cur.pos == start || (p.cur.pos == start+1 && p.cur.file.Content[start] == '-') {
		return "", p.cur.here()
	}
	return string(p.cur.file.Content[start:p.cur.pos]), p.cur.span(start)
}

func (p *parser) eofOrNonNumeric() bool {
	if p.cur.eof() {
		return true
	}
	b := p.cur.peek()
	return !(b >= '0' && b <= '9') && b != 'x' && !(b >= 'a' && b <= 'f') && !(b >= 'A' && b <= 'F')
}

// skipStatement consumes input through the terminating ';', balancing
// braces and parentheses on the way. Brace-bodied items without a trailing
// semicolon (`on %done { ... }`) end at their closing brace.
func (p *parser) skipStatement() {
	depth := 0
	for !p.cur.eof() {
		switch b := p.cur.next(); b {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			if depth == 0 {
				// step back out of an enclosing body
				p.cur.pos--
				return
			}
			depth--
			if depth == 0 && b == '}' {
				p.cur.skipSpace()
				p.cur.eat(';')
				return
			}
		case ';':
			if depth == 0 {
				return
			}
		case '"':
			p.skipStringTail()
		case '/':
			p.skipRegexTail()
		case '#':
			for !p.cur.eof() && p.cur.peek() != '\n' {
				p.cur.next()
			}
		}
	}
}

// skipFieldTail consumes attributes, conditions, and inline hooks up to the
// field's ';'.
func (p *parser) skipFieldTail() {
	p.skipStatement()
}

func (p *parser) skipBalanced(open, close byte) {
	if !p.cur.eat(open) {
		return
	}
	depth := 1
	for !p.cur.eof() && depth > 0 {
		switch b := p.cur.next(); b {
		case open:
			depth++
		case close:
			depth--
		case '"':
			p.skipStringTail()
		}
	}
}

func (p *parser) skipString() {
	if p.cur.eat('"') {
		p.skipStringTail()
	}
}

// skipStringTail assumes the opening quote was consumed.
func (p *parser) skipStringTail() {
	for !p.cur.eof() {
		switch p.cur.next() {
		case '\\':
			p.cur.next()
		case '"':
			return
		}
	}
}

func (p *parser) skipRegex() {
	if p.cur.eat('/') {
		p.skipRegexTail()
	}
}

// skipRegexTail assumes the opening slash was consumed.
func (p *parser) skipRegexTail() {
	for !p.cur.eof() {
		switch p.cur.next() {
		case '\\':
			p.cur.next()
		case '/':
			return
		}
	}
}
