package logsim

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/dlsim/logsim/internal/scan"
)

// A parser consumes the token stream against the netlist grammar, builds
// devices, connections and monitors, and collects every diagnostic it
// finds. One method per nonterminal; on a malformed construct it reports
// one diagnostic and skips to the next statement terminator.
type parser struct {
	sc    *scan.Scanner
	tbl   *Table
	net   *Network
	mons  *Monitors
	tok   scan.Token
	diags []Diagnostic
	// definition site of each device, for end-of-parse reporting
	defs map[ID]scan.Token
}

// Parse runs the netlist front end over src, populating net and mons.
// The returned diagnostics are in source order; the parse succeeded only
// when there are none.
func Parse(src string, net *Network, mons *Monitors) []Diagnostic {
	p := &parser{
		sc:   scan.New(src),
		tbl:  net.Table(),
		net:  net,
		mons: mons,
		defs: make(map[ID]scan.Token),
	}
	p.next()
	p.file()
	return p.diags
}

// next advances to the next token, reporting and skipping over illegal
// characters so the grammar only ever sees well-formed tokens.
func (p *parser) next() {
	for {
		p.tok = p.sc.Next()
		if p.tok.Type != scan.Illegal {
			return
		}
		p.errorf(Lexical, p.tok, "unrecognized character %q", p.tok.Text)
	}
}

func (p *parser) errorf(class Class, tok scan.Token, format string, args ...interface{}) {
	p.diags = append(p.diags, Diagnostic{
		Class: class,
		Line:  tok.Line,
		Col:   tok.Col,
		Msg:   errors.Errorf(format, args...).Error(),
		Src:   p.sc.SourceLine(tok.Line),
	})
}

// atKeyword reports whether the current token is the given keyword.
func (p *parser) atKeyword(kw string) bool {
	return p.tok.Type == scan.Keyword && p.tok.Text == kw
}

// skipStatement discards tokens up to and including the next ";", or up
// to "END"/EOF, which it leaves in place.
func (p *parser) skipStatement() {
	for {
		switch {
		case p.tok.Type == scan.Semicolon:
			p.next()
			return
		case p.tok.Type == scan.EOF, p.atKeyword("END"):
			return
		}
		p.next()
	}
}

// semicolon closes a statement, recovering if the terminator is missing.
func (p *parser) semicolon() {
	if p.tok.Type == scan.Semicolon {
		p.next()
		return
	}
	p.errorf(Syntax, p.tok, "expected ';' to end statement, got %s", describe(p.tok))
	p.skipStatement()
}

func describe(tok scan.Token) string {
	switch tok.Type {
	case scan.Name, scan.Number:
		return strconv.Quote(tok.Text)
	case scan.Keyword:
		return "keyword " + strconv.Quote(tok.Text)
	case scan.EOF:
		return "end of file"
	default:
		return strconv.Quote(tok.Text)
	}
}

// file = { definition | connection | monitor } "END"
func (p *parser) file() {
	for {
		switch {
		case p.atKeyword("END"):
			p.checkFloatingInputs()
			return
		case p.atKeyword("define"):
			p.definition()
		case p.atKeyword("connect"):
			p.connection()
		case p.atKeyword("monitor"):
			p.monitor()
		case p.tok.Type == scan.EOF:
			p.errorf(Syntax, p.tok, "expected END before end of file")
			p.checkFloatingInputs()
			return
		default:
			p.errorf(Syntax, p.tok, "invalid symbol %s at start of statement", describe(p.tok))
			p.skipStatement()
		}
	}
}

// name returns the current token as a device name. Keywords are reserved.
func (p *parser) name() (scan.Token, bool) {
	if p.tok.Type == scan.Name {
		tok := p.tok
		p.next()
		return tok, true
	}
	if p.tok.Type == scan.Keyword {
		p.errorf(Syntax, p.tok, "invalid name %q: reserved keyword", p.tok.Text)
	} else {
		p.errorf(Syntax, p.tok, "expected a name, got %s", describe(p.tok))
	}
	return scan.Token{}, false
}

// definition = "define" name {[","] name} "as" kindclause ";"
//
// A definition naming several identifiers creates that many devices
// sharing one kind and qualifier, each validated on its own.
func (p *parser) definition() {
	p.next() // "define"
	var names []scan.Token
	for {
		tok, ok := p.name()
		if !ok {
			p.skipStatement()
			return
		}
		names = append(names, tok)
		if p.tok.Type == scan.Comma {
			p.next()
			continue
		}
		if p.atKeyword("as") {
			p.next()
			break
		}
		if p.tok.Type != scan.Name {
			p.errorf(Syntax, p.tok, "expected keyword 'as', got %s", describe(p.tok))
			p.skipStatement()
			return
		}
	}
	kind, qual, ok := p.kindClause()
	if !ok {
		p.skipStatement()
		return
	}
	p.semicolon()
	for _, tok := range names {
		id := p.tbl.Lookup(tok.Text)
		if _, err := p.net.AddDevice(id, kind, qual); err != nil {
			p.deviceError(tok, kind, err)
			continue
		}
		p.defs[id] = tok
	}
}

func (p *parser) deviceError(tok scan.Token, kind Kind, err error) {
	switch errors.Cause(err) {
	case ErrDevicePresent:
		p.errorf(Semantic, tok, "device %q is already defined", tok.Text)
	case ErrInvalidQualifier:
		switch kind {
		case KindAnd, KindOr, KindNand, KindNor:
			p.errorf(Semantic, tok, "number of inputs for %q must be between %d and %d", tok.Text, MinGateInputs, MaxGateInputs)
		case KindSwitch:
			p.errorf(Semantic, tok, "initial state for %q must be 0 or 1", tok.Text)
		case KindClock:
			p.errorf(Semantic, tok, "clock half-period for %q must be at least 1", tok.Text)
		case KindSigGen:
			p.errorf(Semantic, tok, "waveform for %q must not contain zero-length segments", tok.Text)
		default:
			p.errorf(Semantic, tok, "invalid qualifier for %q", tok.Text)
		}
	default:
		p.errorf(Semantic, tok, "cannot create device %q: %v", tok.Text, err)
	}
}

// kindClause = switch | gate | clock | "DTYPE" | "XOR" | generator
func (p *parser) kindClause() (Kind, Qualifier, bool) {
	if p.tok.Type != scan.Keyword {
		p.errorf(Syntax, p.tok, "expected a device kind, got %s", describe(p.tok))
		return 0, NoQualifier, false
	}
	kind, ok := KindByName(p.tok.Text)
	if !ok {
		p.errorf(Syntax, p.tok, "expected a device kind, got keyword %q", p.tok.Text)
		return 0, NoQualifier, false
	}
	p.next()
	switch kind {
	case KindSwitch:
		// "SWITCH" ("0"|"1") "state"
		v, ok := p.number("expected 0 or 1 for the switch state")
		if !ok {
			return 0, NoQualifier, false
		}
		if !p.keyword("state") {
			return 0, NoQualifier, false
		}
		return kind, IntQualifier(v), true
	case KindAnd, KindOr, KindNand, KindNor:
		v, ok := p.number("expected the number of inputs")
		if !ok {
			return 0, NoQualifier, false
		}
		if !p.keyword("inputs") {
			return 0, NoQualifier, false
		}
		return kind, IntQualifier(v), true
	case KindClock:
		// "CLOCK" "period" number
		if !p.keyword("period") {
			return 0, NoQualifier, false
		}
		v, ok := p.number("expected the clock half-period")
		if !ok {
			return 0, NoQualifier, false
		}
		return kind, IntQualifier(v), true
	case KindSigGen:
		return p.generator()
	default: // DTYPE, XOR take no qualifier
		if p.tok.Type == scan.Number {
			p.errorf(Semantic, p.tok, "%s takes no qualifier", kind)
			return 0, NoQualifier, false
		}
		return kind, NoQualifier, true
	}
}

// generator = "SIGGEN" ("0"|"1") number {("0"|"1") number} "waveform"
func (p *parser) generator() (Kind, Qualifier, bool) {
	var segs []Segment
	for {
		if p.atKeyword("waveform") {
			if len(segs) == 0 {
				p.errorf(Syntax, p.tok, "waveform must contain at least one segment")
				return 0, NoQualifier, false
			}
			p.next()
			return KindSigGen, WaveformQualifier(segs), true
		}
		if p.tok.Type != scan.Number || (p.tok.Text != "0" && p.tok.Text != "1") {
			p.errorf(Syntax, p.tok, "expected 0 or 1 or keyword 'waveform', got %s", describe(p.tok))
			return 0, NoQualifier, false
		}
		level := Low
		if p.tok.Text == "1" {
			level = High
		}
		p.next()
		dur, ok := p.number("expected a segment duration")
		if !ok {
			return 0, NoQualifier, false
		}
		segs = append(segs, Segment{Level: level, Duration: dur})
	}
}

func (p *parser) number(want string) (int, bool) {
	if p.tok.Type != scan.Number {
		p.errorf(Syntax, p.tok, "%s, got %s", want, describe(p.tok))
		return 0, false
	}
	v, err := strconv.Atoi(p.tok.Text)
	if err != nil {
		p.errorf(Syntax, p.tok, "number %q out of range", p.tok.Text)
		return 0, false
	}
	p.next()
	return v, true
}

func (p *parser) keyword(kw string) bool {
	if p.atKeyword(kw) {
		p.next()
		return true
	}
	p.errorf(Syntax, p.tok, "expected keyword %q, got %s", kw, describe(p.tok))
	return false
}

// connection = "connect" output "to" input ";"
func (p *parser) connection() {
	p.next() // "connect"
	src, srcTok, ok := p.output()
	if !ok {
		p.skipStatement()
		return
	}
	if !p.keyword("to") {
		p.skipStatement()
		return
	}
	dstDev, dstPort, dstTok, ok := p.input()
	if !ok {
		p.skipStatement()
		return
	}
	p.semicolon()
	if err := p.net.Connect(src, dstDev, dstPort); err != nil {
		p.connectError(srcTok, dstTok, src, err)
	}
}

func (p *parser) connectError(srcTok, dstTok scan.Token, src Point, err error) {
	srcDev := p.net.Device(src.Device)
	switch errors.Cause(err) {
	case ErrDeviceAbsent:
		if srcDev == nil {
			p.errorf(Semantic, srcTok, "undefined device %q", srcTok.Text)
		} else {
			p.errorf(Semantic, dstTok, "undefined device %q", dstTok.Text)
		}
	case ErrPortAbsent:
		if srcDev != nil && !srcDev.HasOutput(src.Port) {
			p.errorf(Semantic, srcTok, "device %q has no such output port", srcTok.Text)
		} else {
			p.errorf(Semantic, dstTok, "device %q has no such input port", dstTok.Text)
		}
	case ErrInputDriven:
		p.errorf(Semantic, dstTok, "input of %q is already driven", dstTok.Text)
	default:
		p.errorf(Semantic, dstTok, "cannot connect: %v", err)
	}
}

// output = name ["." ("Q"|"QBAR")]
func (p *parser) output() (Point, scan.Token, bool) {
	tok, ok := p.name()
	if !ok {
		return Point{}, tok, false
	}
	pt := Point{Device: p.tbl.Lookup(tok.Text), Port: NoID}
	if p.tok.Type != scan.Dot {
		return pt, tok, true
	}
	p.next()
	if !p.atKeyword("Q") && !p.atKeyword("QBAR") {
		p.errorf(Syntax, p.tok, "expected Q or QBAR after '.', got %s", describe(p.tok))
		return Point{}, tok, false
	}
	pt.Port = p.tbl.Lookup(p.tok.Text)
	p.next()
	return pt, tok, true
}

// input = name "." ("DATA"|"CLK"|"SET"|"CLEAR"|"I"digits)
func (p *parser) input() (dev, port ID, tok scan.Token, ok bool) {
	tok, ok = p.name()
	if !ok {
		return NoID, NoID, tok, false
	}
	dev = p.tbl.Lookup(tok.Text)
	if p.tok.Type != scan.Dot {
		p.errorf(Syntax, p.tok, "expected '.' before an input port, got %s", describe(p.tok))
		return NoID, NoID, tok, false
	}
	p.next()
	switch {
	case p.atKeyword("DATA"), p.atKeyword("CLK"), p.atKeyword("SET"), p.atKeyword("CLEAR"):
		port = p.tbl.Lookup(p.tok.Text)
	case p.tok.Type == scan.Name && validInputPort(p.tok.Text):
		port = p.tbl.Lookup(p.tok.Text)
	default:
		p.errorf(Syntax, p.tok, "expected an input port name after '.', got %s", describe(p.tok))
		return NoID, NoID, tok, false
	}
	p.next()
	return dev, port, tok, true
}

// validInputPort matches gate input names: "I" followed by digits.
func validInputPort(s string) bool {
	if len(s) < 2 || s[0] != 'I' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// monitor = "monitor" output {[","] output} ";"
func (p *parser) monitor() {
	p.next() // "monitor"
	for {
		pt, tok, ok := p.output()
		if !ok {
			p.skipStatement()
			return
		}
		if err := p.mons.Add(pt); err != nil {
			switch errors.Cause(err) {
			case ErrDeviceAbsent:
				p.errorf(Semantic, tok, "undefined device %q", tok.Text)
			case ErrPortAbsent:
				p.errorf(Semantic, tok, "device %q has no such output port", tok.Text)
			case ErrMonitorPresent:
				p.errorf(Semantic, tok, "output of %q is already monitored", tok.Text)
			default:
				p.errorf(Semantic, tok, "cannot monitor %q: %v", tok.Text, err)
			}
		}
		if p.tok.Type == scan.Comma {
			p.next()
			continue
		}
		if p.tok.Type == scan.Semicolon {
			p.next()
			return
		}
		if p.tok.Type == scan.EOF || p.atKeyword("END") {
			p.errorf(Syntax, p.tok, "expected ';' to end statement, got %s", describe(p.tok))
			return
		}
	}
}

// checkFloatingInputs reports every required input left undriven, one
// diagnostic per device, anchored at the definition site.
func (p *parser) checkFloatingInputs() {
	byDev := make(map[ID][]ID)
	var order []ID
	for _, pt := range p.net.FloatingInputs() {
		if _, ok := byDev[pt.Device]; !ok {
			order = append(order, pt.Device)
		}
		byDev[pt.Device] = append(byDev[pt.Device], pt.Port)
	}
	for _, dev := range order {
		tok, ok := p.defs[dev]
		if !ok {
			continue
		}
		names := ""
		for i, port := range byDev[dev] {
			if i > 0 {
				names += ", "
			}
			names += p.tbl.Name(dev) + "." + p.tbl.Name(port)
		}
		p.errorf(Semantic, tok, "the following inputs are floating: %s", names)
	}
}
