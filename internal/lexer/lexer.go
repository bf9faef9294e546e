// Package lexer turns source text into a spanned token sequence through a
// small mode-switched state machine, in the style of the teacher's own
// internal/lexer scanner but generalised to carry a (line, column) Span
// per token and to support the richer token set catastrophic needs
// (strings, comments, multi-character operators).
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/samuelsleight/catastrophic-go/internal/span"
	"github.com/samuelsleight/catastrophic-go/internal/token"
)

// Error is returned for unrecoverable lexical failures.
type Error struct {
	Kind string // "FileOpen", "FileRead", "UnterminatedString"
	At   span.Location
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s at %s", e.Kind, e.At)
}

func (e *Error) Unwrap() error { return e.Err }

// Span implements diag.Spanned with a one-column extent at the point
// of failure.
func (e *Error) Span() span.Span[struct{}] {
	return span.Span[struct{}]{Start: e.At, End: span.Location{Line: e.At.Line, Column: e.At.Column + 1}}
}

type mode int

const (
	modeMain mode = iota
	modeComment
	modeIdent
	modeString
	modeNumber
	modeMinus
	modeLParen
)

// Lexer is the char-stream state machine described in §4.1. It is built
// over the whole source buffer (already read into memory by the caller)
// rather than a live io.Reader, matching the reference implementation's
// approach of holding the file open only for later diagnostic re-reads.
type Lexer struct {
	src []byte
	pos int
	loc span.Location

	mode   mode
	start  span.Location
	buffer []byte
	number int64
}

// New constructs a Lexer over src. Line/column numbering starts at 0 per
// §3.
func New(src []byte) *Lexer {
	return &Lexer{src: src, loc: span.Location{Line: 0, Column: 0}}
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || isEmoji(r)
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// isEmoji approximates "any code point classified as emoji" using the
// unicode.So (other symbol) category plus the U+1F300..U+1FAFF range; a
// full Unicode emoji database is out of scope for this lexer.
func isEmoji(r rune) bool {
	return unicode.Is(unicode.So, r) || (r >= 0x1F300 && r <= 0x1FAFF)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Tokenize runs the state machine to completion and returns every token
// it produced, in order, plus any unrecoverable lexical error. The
// source's own newlines pass through the state machine like any other
// character (no synthetic newline is added), and a final flush happens
// once the input is exhausted.
func (l *Lexer) Tokenize() ([]span.Span[token.Token], error) {
	var out []span.Span[token.Token]

	for l.pos < len(l.src) {
		r, size := l.decodeAt(l.pos)
		tok, cont := l.step(r)
		if tok != nil {
			out = append(out, *tok)
		}
		if cont == consume {
			l.pos += size
			l.loc = l.loc.Advance(r)
		}
	}

	tok, err := l.flush()
	if err != nil {
		return out, err
	}
	if tok != nil {
		out = append(out, *tok)
	}

	return out, nil
}

// decodeAt returns the "character" at byte offset pos under the current
// mode's granularity: a single raw byte inside a string literal (per
// §4.1, multi-byte code points are kept as their individual bytes there),
// a full rune everywhere else.
func (l *Lexer) decodeAt(pos int) (rune, int) {
	if l.mode == modeString {
		return rune(l.src[pos]), 1
	}
	r, size := utf8.DecodeRune(l.src[pos:])
	if r == utf8.RuneError && size <= 1 {
		return rune(l.src[pos]), 1
	}
	return r, size
}

type continuation int

const (
	consume continuation = iota
	peek
)

func (l *Lexer) step(r rune) (*span.Span[token.Token], continuation) {
	switch l.mode {
	case modeMain:
		return l.stepMain(r)
	case modeComment:
		return l.stepComment(r)
	case modeIdent:
		return l.stepIdent(r)
	case modeString:
		return l.stepString(r)
	case modeNumber:
		return l.stepNumber(r)
	case modeMinus:
		return l.stepMinus(r)
	case modeLParen:
		return l.stepLParen(r)
	default:
		panic("lexer: unreachable mode")
	}
}

func single(loc span.Location, r rune, k token.Kind) *span.Span[token.Token] {
	end := loc.Advance(r)
	s := span.New(loc, end, token.Simple(k))
	return &s
}

func (l *Lexer) stepMain(r rune) (*span.Span[token.Token], continuation) {
	switch {
	case r == '#':
		l.mode = modeComment
		return nil, consume
	case r == '"':
		l.mode = modeString
		l.start = l.loc
		l.buffer = l.buffer[:0]
		return nil, consume
	case isIdentStart(r):
		l.mode = modeIdent
		l.start = l.loc
		l.buffer = append(l.buffer[:0], []byte(string(r))...)
		return nil, consume
	case isDigit(r):
		l.mode = modeNumber
		l.start = l.loc
		l.number = int64(r - '0')
		return nil, consume
	case r == '-':
		l.mode = modeMinus
		l.start = l.loc
		return nil, consume
	case r == '(':
		l.mode = modeLParen
		l.start = l.loc
		return nil, consume
	case r == '+':
		return single(l.loc, r, token.Plus), consume
	case r == '*':
		return single(l.loc, r, token.Multiply), consume
	case r == '/':
		return single(l.loc, r, token.Divide), consume
	case r == '=':
		return single(l.loc, r, token.Equals), consume
	case r == '<':
		return single(l.loc, r, token.LessThan), consume
	case r == '>':
		return single(l.loc, r, token.GreaterThan), consume
	case r == '.':
		return single(l.loc, r, token.Dot), consume
	case r == ',':
		return single(l.loc, r, token.Comma), consume
	case r == '&':
		return single(l.loc, r, token.Ampersand), consume
	case r == '~':
		return single(l.loc, r, token.Tilde), consume
	case r == ':':
		return single(l.loc, r, token.Colon), consume
	case r == '?':
		return single(l.loc, r, token.Question), consume
	case r == '{':
		return single(l.loc, r, token.LCurly), consume
	case r == '}':
		return single(l.loc, r, token.RCurly), consume
	case unicode.IsSpace(r):
		return nil, consume
	default:
		end := l.loc.Advance(r)
		s := span.New(l.loc, end, token.MakeUnexpected(r))
		return &s, consume
	}
}

func (l *Lexer) stepComment(r rune) (*span.Span[token.Token], continuation) {
	if r == '\n' {
		l.mode = modeMain
	}
	return nil, consume
}

func (l *Lexer) stepIdent(r rune) (*span.Span[token.Token], continuation) {
	if isIdentCont(r) {
		l.buffer = append(l.buffer, []byte(string(r))...)
		return nil, consume
	}
	l.mode = modeMain
	s := span.New(l.start, l.loc, token.MakeIdent(string(l.buffer)))
	return &s, peek
}

func (l *Lexer) stepString(r rune) (*span.Span[token.Token], continuation) {
	if r == '"' {
		l.mode = modeMain
		s := span.New(l.start, l.loc.Advance(r), token.MakeString(string(l.buffer)))
		return &s, consume
	}
	l.buffer = append(l.buffer, byte(r))
	return nil, consume
}

func (l *Lexer) stepNumber(r rune) (*span.Span[token.Token], continuation) {
	if isDigit(r) {
		l.number = l.number*10 + int64(r-'0')
		return nil, consume
	}
	l.mode = modeMain
	s := span.New(l.start, l.loc, token.MakeInteger(l.number))
	return &s, peek
}

func (l *Lexer) stepMinus(r rune) (*span.Span[token.Token], continuation) {
	l.mode = modeMain
	if r == '>' {
		s := span.New(l.start, l.loc.Advance(r), token.Simple(token.Arrow))
		return &s, consume
	}
	s := span.New(l.start, l.loc, token.Simple(token.Minus))
	return &s, peek
}

func (l *Lexer) stepLParen(r rune) (*span.Span[token.Token], continuation) {
	l.mode = modeMain
	if r == ')' {
		s := span.New(l.start, l.loc.Advance(r), token.Simple(token.Parens))
		return &s, consume
	}
	s := span.New(l.start, l.loc, token.MakeUnexpected('('))
	return &s, peek
}

// flush synthesises a final token for modes that were mid-accumulation
// when the input ended, matching §4.1's "other mode-end conditions flush
// a final token synthesised at the current location".
func (l *Lexer) flush() (*span.Span[token.Token], error) {
	switch l.mode {
	case modeMain, modeComment:
		return nil, nil
	case modeString:
		return nil, &Error{Kind: "UnterminatedString", At: l.start}
	case modeIdent:
		s := span.New(l.start, l.loc, token.MakeIdent(string(l.buffer)))
		return &s, nil
	case modeNumber:
		s := span.New(l.start, l.loc, token.MakeInteger(l.number))
		return &s, nil
	case modeMinus:
		s := span.New(l.start, l.loc, token.Simple(token.Minus))
		return &s, nil
	case modeLParen:
		s := span.New(l.start, l.loc, token.MakeUnexpected('('))
		return &s, nil
	default:
		return nil, nil
	}
}
