// Package scan turns netlist source text into a lazy stream of tokens.
//
// The scanner strips whitespace, line comments ("#" to end of line) and
// block comments (text bracketed by two "**" markers). Unrecognized
// characters are returned as Illegal tokens so the parser can report them
// and keep going.
package scan

// A Type classifies a token.
type Type uint8

// Token types.
const (
	EOF Type = iota
	Name
	Keyword
	Number
	Dot
	Comma
	Semicolon
	Illegal
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "EOF"
	case Name:
		return "NAME"
	case Keyword:
		return "KEYWORD"
	case Number:
		return "NUMBER"
	case Dot:
		return "."
	case Comma:
		return ","
	case Semicolon:
		return ";"
	default:
		return "ILLEGAL"
	}
}

// A Token is one lexical element of a netlist, with its position in the
// source (1-based line and column).
type Token struct {
	Type Type
	Text string
	Line int
	Col  int
}

// keywords of the netlist language. Device kinds and D-type port names are
// keywords too: they may not be used as device names.
var keywords = map[string]bool{
	"define": true, "connect": true, "monitor": true, "END": true,
	"as": true, "to": true, "state": true, "inputs": true,
	"period": true, "waveform": true,
	"AND": true, "OR": true, "NAND": true, "NOR": true, "XOR": true,
	"DTYPE": true, "SWITCH": true, "CLOCK": true, "SIGGEN": true,
	"Q": true, "QBAR": true, "DATA": true, "CLK": true,
	"SET": true, "CLEAR": true,
}

// IsKeyword reports whether s is a reserved word of the netlist language.
func IsKeyword(s string) bool { return keywords[s] }

// A Scanner reads tokens from a source buffer. It never backtracks past
// the previous Next call and is not safe for concurrent use.
type Scanner struct {
	src  string
	pos  int
	line int
	col  int
}

// New returns a Scanner over src.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1, col: 1}
}

func (s *Scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *Scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// skipBlanks consumes whitespace and both comment forms. It returns false
// when a lone "*" is found, leaving it as the current character.
func (s *Scanner) skipBlanks() bool {
	for s.pos < len(s.src) {
		c := s.peek()
		switch {
		case isSpace(c):
			s.advance()
		case c == '#':
			for s.pos < len(s.src) && s.peek() != '\n' {
				s.advance()
			}
		case c == '*':
			if s.pos+1 >= len(s.src) || s.src[s.pos+1] != '*' {
				return false
			}
			s.advance()
			s.advance()
			// discard until the closing marker; an unterminated
			// comment swallows the rest of the source
			for s.pos < len(s.src) {
				if s.peek() == '*' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*' {
					s.advance()
					s.advance()
					break
				}
				s.advance()
			}
		default:
			return true
		}
	}
	return true
}

// Next returns the next token, or an EOF token once the source is
// exhausted.
func (s *Scanner) Next() Token {
	_ = s.skipBlanks()
	tok := Token{Line: s.line, Col: s.col}
	if s.pos >= len(s.src) {
		tok.Type = EOF
		return tok
	}
	c := s.peek()
	switch {
	case isLetter(c):
		start := s.pos
		for s.pos < len(s.src) && (isLetter(s.peek()) || isDigit(s.peek())) {
			s.advance()
		}
		tok.Text = s.src[start:s.pos]
		if keywords[tok.Text] {
			tok.Type = Keyword
		} else {
			tok.Type = Name
		}
	case isDigit(c):
		start := s.pos
		for s.pos < len(s.src) && isDigit(s.peek()) {
			s.advance()
		}
		tok.Type = Number
		tok.Text = s.src[start:s.pos]
	case c == '.':
		s.advance()
		tok.Type = Dot
		tok.Text = "."
	case c == ',':
		s.advance()
		tok.Type = Comma
		tok.Text = ","
	case c == ';':
		s.advance()
		tok.Type = Semicolon
		tok.Text = ";"
	default:
		// bad character: report it and resume after it
		s.advance()
		tok.Type = Illegal
		tok.Text = string(c)
	}
	return tok
}

// SourceLine returns the text of the 1-based line n of the source, without
// its trailing newline. Used for diagnostic rendering.
func (s *Scanner) SourceLine(n int) string {
	line := 1
	start := 0
	for i := 0; i < len(s.src); i++ {
		if line == n {
			start = i
			for i < len(s.src) && s.src[i] != '\n' {
				i++
			}
			return s.src[start:i]
		}
		if s.src[i] == '\n' {
			line++
		}
	}
	return ""
}
