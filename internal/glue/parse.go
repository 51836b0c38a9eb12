package glue

import (
	"fmt"
	"strconv"
	"strings"

	"gluec/internal/diag"
	"gluec/internal/source"
)

// evtParser turns one EVT file into its declaration list.
type evtParser struct {
	s   *scanner
	rep diag.Reporter
	out *File
}

func parseEvt(f *source.File, rep diag.Reporter) *File {
	p := &evtParser{
		s:   newScanner(f),
		rep: rep,
		out: &File{Path: f.Path},
	}
	p.run()
	return p.out
}

func (p *evtParser) errorf(sp source.Span, code diag.Code, format string, args ...any) {
	p.rep.Report(code, diag.SevError, sp, fmt.Sprintf(format, args...), nil)
}

func (p *evtParser) run() {
	for {
		p.s.skipSpace()
		if p.s.eof() {
			return
		}
		word, sp := p.s.ident()
		switch word {
		case "import":
			p.importDecl()
		case "protocol":
			p.analyzerDecl(AnalyzerProtocol, sp)
		case "file":
			p.analyzerDecl(AnalyzerFile, sp)
		case "packet":
			// packet analyzers share the protocol shape
			p.analyzerDecl(AnalyzerProtocol, sp)
		case "on":
			p.eventDecl(sp)
		case "export":
			p.exportDecl()
		case "":
			p.errorf(sp, diag.EvtUnexpectedToken, "unexpected character %q", string(p.s.peek()))
			p.s.next()
		default:
			p.errorf(sp, diag.EvtUnexpectedToken, "unexpected keyword %q", word)
			p.skipToSemicolon()
		}
	}
}

func (p *evtParser) skipToSemicolon() {
	for !p.s.eof() {
		if p.s.next() == ';' {
			return
		}
	}
}

func (p *evtParser) expectSemicolon() {
	p.s.skipSpace()
	if !p.s.eat(';') {
		p.errorf(p.s.here(), diag.EvtExpectSemicolon, "expected ';'")
		p.skipToSemicolon()
	}
}

func (p *evtParser) importDecl() {
	p.s.skipSpace()
	name, sp := p.s.scopedIdent()
	if name == "" {
		p.errorf(sp, diag.EvtExpectIdentifier, "expected module name after 'import'")
		p.skipToSemicolon()
		return
	}
	p.out.Imports = append(p.out.Imports, name)
	// an optional version constraint follows the name
	p.skipToSemicolon()
}

func (p *evtParser) analyzerDecl(kind AnalyzerKind, start source.Span) {
	p.s.skipSpace()
	if kw, sp := p.s.ident(); kw != "analyzer" {
		p.errorf(sp, diag.EvtBadAnalyzerKind, "expected 'analyzer', got %q", kw)
		p.skipToSemicolon()
		return
	}
	p.s.skipSpace()
	name, nameSp := p.s.scopedIdent()
	if name == "" {
		p.errorf(nameSp, diag.EvtExpectIdentifier, "expected analyzer name")
		p.skipToSemicolon()
		return
	}

	a := &AnalyzerDecl{Name: name, Kind: kind, Span: start.Cover(nameSp)}

	if kind == AnalyzerProtocol {
		p.s.skipSpace()
		if kw, sp := p.s.ident(); kw != "over" {
			p.errorf(sp, diag.EvtBadAnalyzerKind, "expected 'over <transport>' for protocol analyzer %s", name)
			p.skipToSemicolon()
			return
		}
		p.s.skipSpace()
		transport, tsp := p.s.ident()
		switch strings.ToLower(transport) {
		case "tcp", "udp":
			a.Transport = strings.ToLower(transport)
		default:
			p.errorf(tsp, diag.EvtBadAnalyzerKind, "unsupported transport %q (want TCP or UDP)", transport)
		}
	}

	p.s.skipSpace()
	if !p.s.eat(':') {
		p.errorf(p.s.here(), diag.EvtUnexpectedToken, "expected ':' after analyzer head")
		p.skipToSemicolon()
		return
	}

	for {
		p.s.skipSpace()
		p.analyzerProperty(a)
		p.s.skipSpace()
		if p.s.eat(',') {
			continue
		}
		if p.s.eat(';') {
			break
		}
		if p.s.eof() {
			p.errorf(p.s.here(), diag.EvtExpectSemicolon, "unterminated analyzer declaration %s", a.Name)
			break
		}
		p.errorf(p.s.here(), diag.EvtUnexpectedToken, "expected ',' or ';' in analyzer declaration %s", a.Name)
		p.skipToSemicolon()
		break
	}

	for _, other := range p.out.Analyzers {
		if other.Name == a.Name {
			p.errorf(a.Span, diag.EvtDuplicateAnalyzer, "analyzer %s declared twice", a.Name)
			return
		}
	}
	p.out.Analyzers = append(p.out.Analyzers, a)
}

func (p *evtParser) analyzerProperty(a *AnalyzerDecl) {
	word, sp := p.s.ident()
	switch word {
	case "parse":
		p.s.skipSpace()
		role, _ := p.s.ident()
		side := ""
		switch role {
		case "with":
			// both sides
		case "originator", "responder":
			side = role
			p.s.skipSpace()
			if kw, ksp := p.s.ident(); kw != "with" {
				p.errorf(ksp, diag.EvtUnexpectedToken, "expected 'with' after 'parse %s'", role)
				return
			}
		default:
			p.errorf(sp, diag.EvtUnexpectedToken, "expected 'parse [originator|responder] with'")
			return
		}
		p.s.skipSpace()
		unit, usp := p.s.scopedIdent()
		if unit == "" {
			p.errorf(usp, diag.EvtExpectIdentifier, "expected unit type after 'with'")
			return
		}
		switch side {
		case "originator":
			a.ParseOrig = unit
		case "responder":
			a.ParseResp = unit
		default:
			a.ParseOrig = unit
			a.ParseResp = unit
		}

	case "port", "ports":
		p.s.skipSpace()
		if word == "ports" {
			if !p.s.eat('{') {
				p.errorf(p.s.here(), diag.EvtBadPort, "expected '{' after 'ports'")
				return
			}
			for {
				p.s.skipSpace()
				pr, ok := p.portRange()
				if !ok {
					return
				}
				a.Ports = append(a.Ports, pr)
				p.s.skipSpace()
				if p.s.eat(',') {
					continue
				}
				if p.s.eat('}') {
					return
				}
				p.errorf(p.s.here(), diag.EvtBadPort, "expected ',' or '}' in port list")
				return
			}
		}
		pr, ok := p.portRange()
		if ok {
			a.Ports = append(a.Ports, pr)
		}

	case "mime-type", "mime":
		if word == "mime" {
			// accept `mime-type` written with the dash scanned separately
			p.s.eat('-')
			p.s.ident()
		}
		p.s.skipSpace()
		mt, msp := p.s.rawToken(",;")
		if mt == "" {
			p.errorf(msp, diag.EvtExpectIdentifier, "expected MIME type")
			return
		}
		a.MIMETypes = append(a.MIMETypes, mt)

	case "replaces":
		p.s.skipSpace()
		name, nsp := p.s.scopedIdent()
		if name == "" {
			p.errorf(nsp, diag.EvtExpectIdentifier, "expected analyzer name after 'replaces'")
			return
		}
		a.Replaces = name

	default:
		p.errorf(sp, diag.EvtUnexpectedToken, "unknown analyzer property %q", word)
		// resynchronize at the next property separator
		for !p.s.eof() && p.s.peek() != ',' && p.s.peek() != ';' {
			p.s.next()
		}
	}
}

// portRange parses `22/tcp` or `1000/udp-1010/udp`.
func (p *evtParser) portRange() (PortRange, bool) {
	start := p.s.pos
	lo, proto, ok := p.onePort()
	if !ok {
		return PortRange{}, false
	}
	pr := PortRange{Begin: lo, End: lo, Proto: proto}
	if p.s.eat('-') {
		hi, proto2, ok := p.onePort()
		if !ok {
			return PortRange{}, false
		}
		if proto2 != proto {
			p.errorf(p.s.span(start), diag.EvtBadPort, "port range mixes transports %s and %s", proto, proto2)
			return PortRange{}, false
		}
		if hi < lo {
			p.errorf(p.s.span(start), diag.EvtBadPort, "descending port range %d-%d", lo, hi)
			return PortRange{}, false
		}
		pr.End = hi
	}
	pr.Span = p.s.span(start)
	return pr, true
}

func (p *evtParser) onePort() (uint16, string, bool) {
	num, nsp := p.s.number()
	if num == "" {
		p.errorf(nsp, diag.EvtBadPort, "expected port number")
		return 0, "", false
	}
	v, err := strconv.ParseUint(num, 10, 16)
	if err != nil {
		p.errorf(nsp, diag.EvtBadPort, "bad port %q: %v", num, err)
		return 0, "", false
	}
	if !p.s.eat('/') {
		p.errorf(p.s.here(), diag.EvtBadPort, "expected '/tcp' or '/udp' after port number")
		return 0, "", false
	}
	proto, psp := p.s.ident()
	switch strings.ToLower(proto) {
	case "tcp", "udp":
		return uint16(v), strings.ToLower(proto), true
	default:
		p.errorf(psp, diag.EvtBadPort, "unsupported port transport %q", proto)
		return 0, "", false
	}
}

// eventDecl parses `on <unit>[::field|::%hook] -> event <name>(<args>);`.
func (p *evtParser) eventDecl(start source.Span) {
	p.s.skipSpace()
	unit, usp := p.s.scopedIdent()
	if unit == "" {
		p.errorf(usp, diag.EvtExpectIdentifier, "expected unit type after 'on'")
		p.skipToSemicolon()
		return
	}

	hook := HookDone
	if p.s.peek() == ':' && p.s.peekAt(1) == ':' && p.s.peekAt(2) == '%' {
		p.s.pos += 3
		name, hsp := p.s.ident()
		switch name {
		case "done":
			hook = HookDone
		case "error":
			hook = HookError
		default:
			p.errorf(hsp, diag.EvtUnexpectedToken, "unknown hook %%%s (want %%done or %%error)", name)
			p.skipToSemicolon()
			return
		}
	} else if i := strings.LastIndex(unit, "::"); i > 0 {
		// `on SSH::Banner::software` names a field hook when the last
		// segment does not resolve as part of the type ID; the binding
		// resolver decides. Here we only split the candidate.
		// Units are referenced with at least Module::Type, so a two-part
		// ID stays a unit reference.
		if strings.Count(unit, "::") >= 2 {
			unit, hook = unit[:i], unit[i+2:]
		}
	}

	p.s.skipSpace()
	if !(p.s.eat('-') && p.s.eat('>')) {
		p.errorf(p.s.here(), diag.EvtUnexpectedToken, "expected '->' in event binding for %s", unit)
		p.skipToSemicolon()
		return
	}
	p.s.skipSpace()
	if kw, ksp := p.s.ident(); kw != "event" {
		p.errorf(ksp, diag.EvtUnexpectedToken, "expected 'event', got %q", kw)
		p.skipToSemicolon()
		return
	}
	p.s.skipSpace()
	name, nsp := p.s.scopedIdent()
	if name == "" {
		p.errorf(nsp, diag.EvtExpectIdentifier, "expected event name")
		p.skipToSemicolon()
		return
	}

	ev := &EventDecl{Unit: unit, Hook: hook, Event: name, Span: start.Cover(nsp)}

	p.s.skipSpace()
	if p.s.eat('(') {
		for {
			p.s.skipSpace()
			if p.s.eat(')') {
				break
			}
			arg, ok := p.argExpr()
			if !ok {
				p.skipToSemicolon()
				return
			}
			ev.Args = append(ev.Args, arg)
			p.s.skipSpace()
			if p.s.eat(',') {
				continue
			}
			if p.s.eat(')') {
				break
			}
			p.errorf(p.s.here(), diag.EvtBadArgument, "expected ',' or ')' in event arguments")
			p.skipToSemicolon()
			return
		}
	}

	p.expectSemicolon()
	p.out.Events = append(p.out.Events, ev)
}

func (p *evtParser) argExpr() (ArgExpr, bool) {
	start := p.s.pos

	switch b := p.s.peek(); {
	case b == '$':
		p.s.next()
		name, sp := p.s.ident()
		switch name {
		case "conn":
			return ArgExpr{Kind: ArgConn, Span: p.s.span(start)}, true
		case "is_orig":
			return ArgExpr{Kind: ArgIsOrig, Span: p.s.span(start)}, true
		case "file":
			return ArgExpr{Kind: ArgFile, Span: p.s.span(start)}, true
		case "error":
			return ArgExpr{Kind: ArgError, Span: p.s.span(start)}, true
		default:
			p.errorf(sp, diag.EvtBadArgument, "unknown argument $%s", name)
			return ArgExpr{}, false
		}

	case b == '"':
		str, sp, ok := p.s.stringLit()
		if !ok {
			p.errorf(sp, diag.EvtUnterminatedString, "unterminated string literal")
			return ArgExpr{}, false
		}
		return ArgExpr{Kind: ArgString, Str: str, Span: sp}, true

	case b == '-' || (b >= '0' && b <= '9'):
		num, sp := p.s.number()
		v, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			p.errorf(sp, diag.EvtBadArgument, "bad integer literal %q", num)
			return ArgExpr{}, false
		}
		return ArgExpr{Kind: ArgInt, Int: v, Span: sp}, true

	case identStart(b):
		name, sp := p.s.ident()
		if name != "self" {
			p.errorf(sp, diag.EvtBadArgument, "expected 'self', '$conn', '$is_orig', '$file', '$error', or a literal; got %q", name)
			return ArgExpr{}, false
		}
		var path []string
		for p.s.peek() == '.' {
			p.s.next()
			part, psp := p.s.ident()
			if part == "" {
				p.errorf(psp, diag.EvtBadArgument, "expected field name after '.'")
				return ArgExpr{}, false
			}
			path = append(path, part)
		}
		if len(path) == 0 {
			return ArgExpr{Kind: ArgSelf, Span: p.s.span(start)}, true
		}
		return ArgExpr{Kind: ArgField, Path: path, Span: p.s.span(start)}, true
	}

	p.errorf(p.s.here(), diag.EvtBadArgument, "expected event argument")
	return ArgExpr{}, false
}

func (p *evtParser) exportDecl() {
	p.s.skipSpace()
	spicyID, sp := p.s.scopedIdent()
	if spicyID == "" {
		p.errorf(sp, diag.EvtExpectIdentifier, "expected type ID after 'export'")
		p.skipToSemicolon()
		return
	}
	hostID := spicyID
	p.s.skipSpace()
	if word, _ := p.s.ident(); word == "as" {
		p.s.skipSpace()
		alias, asp := p.s.scopedIdent()
		if alias == "" {
			p.errorf(asp, diag.EvtExpectIdentifier, "expected external name after 'as'")
			p.skipToSemicolon()
			return
		}
		hostID = alias
	} else if word != "" {
		p.errorf(sp, diag.EvtUnexpectedToken, "expected 'as' or ';' after export of %s", spicyID)
		p.skipToSemicolon()
		return
	}
	p.expectSemicolon()
	p.out.Exports = append(p.out.Exports, &ExportDecl{SpicyID: spicyID, HostID: hostID, Span: sp})
}
