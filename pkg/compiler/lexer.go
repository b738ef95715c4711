package compiler

import (
	"fmt"
	"os"
)

type punct struct {
	str  string
	kind TokenKind
}

// puncts is ordered longest-prefix-first so that, e.g., "<<=" is tried
// before "<<" and "<<" before "<".
var puncts = []punct{
	{"?", QUESTION},
	{"{", LBRACE},
	{"}", RBRACE},
	{"(", LPAREN},
	{")", RPAREN},
	{"[", LBRACKET},
	{"]", RBRACKET},
	{";", SEMICOLON},
	{":", COLON},
	{",", COMMA},
	{"&&", AND_LOGICAL},
	{"||", OR_LOGICAL},
	{"--", MINUS_MINUS},
	{"-=", MINUS_ASSIGN},
	{"-", MINUS},
	{"++", PLUS_PLUS},
	{"+=", PLUS_ASSIGN},
	{"+", PLUS},
	{"*=", STAR_ASSIGN},
	{"*", STAR},
	{"%=", MOD_ASSIGN},
	{"%", PERCENT},
	{"/=", SLASH_ASSIGN},
	{"/", SLASH},
	{"|=", OR_ASSIGN},
	{"|", OR},
	{"&=", AND_ASSIGN},
	{"&", AND},
	{"==", EQUALS},
	{"=", ASSIGN},
	{"!=", NOT_EQ},
	{"!", NOT},
	{"<<=", SHL_ASSIGN},
	{"<<", SHL},
	{"<=", LESS_EQ},
	{"<", LESS},
	{">>=", SHR_ASSIGN},
	{">>", SHR},
	{">=", GREATER_EQ},
	{">", GREATER},
}

// Lexer scans raw bytes of a single B source file into Tokens, one at a
// time, via GetToken. Its parse-point can be snapshotted and restored so
// the parser gets one-token lookahead without a queue.
type Lexer struct {
	path string
	src  []byte
	pp   ParsePoint

	// Fields set by the most recent successful GetToken call.
	Kind        TokenKind
	StringValue string
	IntValue    uint64
	Loc         Location
}

func NewLexer(path string, src []byte) *Lexer {
	return &Lexer{
		path: path,
		src:  src,
		pp:   ParsePoint{Offset: 0, LineStart: 0, Line: 1},
	}
}

// Snapshot returns the current parse-point for later restoration.
func (l *Lexer) Snapshot() ParsePoint {
	return l.pp
}

// Restore rewinds the lexer to a previously snapshotted parse-point.
func (l *Lexer) Restore(pp ParsePoint) {
	l.pp = pp
}

func (l *Lexer) isEOF() bool {
	return l.pp.Offset >= len(l.src)
}

func (l *Lexer) peekByte() (byte, bool) {
	if l.isEOF() {
		return 0, false
	}
	return l.src[l.pp.Offset], true
}

func (l *Lexer) skipByte() {
	if l.isEOF() {
		return
	}
	b := l.src[l.pp.Offset]
	l.pp.Offset++
	if b == '\n' {
		l.pp.LineStart = l.pp.Offset
		l.pp.Line++
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

func (l *Lexer) skipWhitespace() {
	for {
		b, ok := l.peekByte()
		if !ok || !isSpace(b) {
			return
		}
		l.skipByte()
	}
}

// skipPrefix consumes prefix if it matches at the current position,
// restoring the parse-point and returning false otherwise.
func (l *Lexer) skipPrefix(prefix string) bool {
	saved := l.pp
	for i := 0; i < len(prefix); i++ {
		b, ok := l.peekByte()
		if !ok || b != prefix[i] {
			l.pp = saved
			return false
		}
		l.skipByte()
	}
	return true
}

func (l *Lexer) skipUntil(prefix string) {
	for !l.isEOF() && !l.skipPrefix(prefix) {
		l.skipByte()
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdent(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func (l *Lexer) curLoc() Location {
	return Location{
		Path:   l.path,
		Line:   l.pp.Line,
		Column: l.pp.Offset - l.pp.LineStart + 1,
	}
}

func (l *Lexer) errorf(loc Location, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: LEXER ERROR: %s\n", loc, fmt.Sprintf(format, args...))
}

// parseQuoted scans the body of a string/char literal up to (not including)
// the closing delim, decoding \0 \n \t \\ and \<delim> escapes into buf.
// Returns false (having already reported) on an unterminated escape or an
// escape it doesn't recognize.
func (l *Lexer) parseQuoted(delim byte) (string, bool) {
	var buf []byte
	for {
		b, ok := l.peekByte()
		if !ok || b == delim {
			return string(buf), true
		}
		if b == '\\' {
			loc := l.curLoc()
			l.skipByte()
			esc, ok := l.peekByte()
			if !ok {
				l.errorf(loc, "Unfinished escape sequence")
				return "", false
			}
			var decoded byte
			switch esc {
			case '0':
				decoded = 0
			case 'n':
				decoded = '\n'
			case 't':
				decoded = '\t'
			case '\\':
				decoded = '\\'
			default:
				if esc == delim {
					decoded = delim
				} else {
					l.errorf(loc, "Unknown escape sequence starting with `%c`", esc)
					return "", false
				}
			}
			buf = append(buf, decoded)
			l.skipByte()
			continue
		}
		buf = append(buf, b)
		l.skipByte()
	}
}

// GetToken advances past one token, populating Kind/StringValue/IntValue/Loc.
// It returns false on a hard lexical error, having already reported it to
// stderr and set Kind to ParseErrorToken.
func (l *Lexer) GetToken() bool {
	for {
		l.skipWhitespace()
		if l.skipPrefix("//") {
			l.skipUntil("\n")
			continue
		}
		if l.skipPrefix("/*") {
			l.skipUntil("*/")
			continue
		}
		break
	}
	l.Loc = l.curLoc()
	l.StringValue = ""
	l.IntValue = 0

	b, ok := l.peekByte()
	if !ok {
		l.Kind = EOF
		return true
	}

	for _, p := range puncts {
		if l.skipPrefix(p.str) {
			l.Kind = p.kind
			return true
		}
	}

	if isIdentStart(b) {
		start := l.pp.Offset
		for {
			c, ok := l.peekByte()
			if !ok || !isIdent(c) {
				break
			}
			l.skipByte()
		}
		word := string(l.src[start:l.pp.Offset])
		l.StringValue = word
		if kw, ok := keywords[word]; ok {
			l.Kind = kw
			return true
		}
		l.Kind = IDENT
		return true
	}

	if l.skipPrefix("0x") || l.skipPrefix("0X") {
		l.Kind = INTLIT
		var v uint64
		for {
			c, ok := l.peekByte()
			if !ok {
				break
			}
			switch {
			case c >= '0' && c <= '9':
				v = v*16 + uint64(c-'0')
			case c >= 'a' && c <= 'f':
				v = v*16 + uint64(c-'a'+10)
			case c >= 'A' && c <= 'F':
				v = v*16 + uint64(c-'A'+10)
			default:
				l.IntValue = v
				return true
			}
			l.skipByte()
		}
		l.IntValue = v
		return true
	}

	if b == '0' {
		l.skipByte()
		l.Kind = INTLIT
		var v uint64
		for {
			c, ok := l.peekByte()
			if !ok || c < '0' || c > '7' {
				break
			}
			v = v*8 + uint64(c-'0')
			l.skipByte()
		}
		l.IntValue = v
		return true
	}

	if isDigit(b) {
		l.Kind = INTLIT
		var v uint64
		for {
			c, ok := l.peekByte()
			if !ok || !isDigit(c) {
				break
			}
			v = v*10 + uint64(c-'0')
			l.skipByte()
		}
		l.IntValue = v
		return true
	}

	if b == '"' {
		l.skipByte()
		s, ok := l.parseQuoted('"')
		if !ok {
			l.Kind = ParseErrorToken
			return false
		}
		if l.isEOF() {
			l.errorf(l.Loc, "Unfinished string literal")
			l.Kind = ParseErrorToken
			return false
		}
		l.skipByte() // closing quote
		l.Kind = STRING
		l.StringValue = s
		return true
	}

	if b == '\'' {
		l.skipByte()
		s, ok := l.parseQuoted('\'')
		if !ok {
			l.Kind = ParseErrorToken
			return false
		}
		if l.isEOF() {
			l.errorf(l.Loc, "Unfinished character literal")
			l.Kind = ParseErrorToken
			return false
		}
		l.skipByte() // closing quote
		if len(s) == 0 {
			l.errorf(l.Loc, "Empty character literal")
			l.Kind = ParseErrorToken
			return false
		}
		if len(s) > 2 {
			l.errorf(l.Loc, "Character literal contains more than two characters")
			l.Kind = ParseErrorToken
			return false
		}
		var v uint64
		for i := 0; i < len(s); i++ {
			v = v*0x100 + uint64(s[i])
		}
		l.Kind = CHARLIT
		l.IntValue = v
		return true
	}

	l.errorf(l.Loc, "Unknown token %c", b)
	l.Kind = ParseErrorToken
	return false
}
