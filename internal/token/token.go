// Package token contains the closed enumeration of lexical atoms the
// lexer produces, following the teacher's convention of a string-backed
// Type alongside the concrete payloads that ride along with it.
package token

import "fmt"

// Kind identifies which variant a Token holds.
type Kind string

const (
	Ident       Kind = "IDENT"
	String      Kind = "STRING"
	Integer     Kind = "INTEGER"
	Arrow       Kind = "ARROW"        // ->
	Parens      Kind = "PARENS"       // ()
	Plus        Kind = "PLUS"         // +
	Minus       Kind = "MINUS"        // -
	Multiply    Kind = "MULTIPLY"     // *
	Divide      Kind = "DIVIDE"       // /
	Equals      Kind = "EQUALS"       // =
	LessThan    Kind = "LESS_THAN"    // <
	GreaterThan Kind = "GREATER_THAN" // >
	Dot         Kind = "DOT"          // .
	Comma       Kind = "COMMA"        // ,
	Ampersand   Kind = "AMPERSAND"    // &
	Tilde       Kind = "TILDE"        // ~
	Colon       Kind = "COLON"        // :
	Question    Kind = "QUESTION"     // ?
	LCurly      Kind = "LCURLY"       // {
	RCurly      Kind = "RCURLY"       // }
	Comment     Kind = "COMMENT"
	Unexpected  Kind = "UNEXPECTED"
)

// Token is a tagged union over every lexical atom the grammar defines.
// Only the fields relevant to Kind are populated; this mirrors the
// reference lexer's enum-with-payload shape without resorting to an
// interface per variant, which would be overkill for a fixed, small set
// of token shapes.
type Token struct {
	Kind    Kind
	Ident   string // Ident, String (raw bytes), Comment (text)
	Integer int64  // Integer
	Char    rune   // Unexpected
}

func (t Token) String() string {
	switch t.Kind {
	case Ident:
		return fmt.Sprintf("Ident(%s)", t.Ident)
	case String:
		return fmt.Sprintf("String(%q)", t.Ident)
	case Integer:
		return fmt.Sprintf("Integer(%d)", t.Integer)
	case Comment:
		return fmt.Sprintf("Comment(%q)", t.Ident)
	case Unexpected:
		return fmt.Sprintf("Unexpected(%q)", t.Char)
	default:
		return string(t.Kind)
	}
}

// MakeIdent builds an Ident token.
func MakeIdent(name string) Token { return Token{Kind: Ident, Ident: name} }

// MakeString builds a String token carrying its raw, unescaped bytes.
func MakeString(raw string) Token { return Token{Kind: String, Ident: raw} }

// MakeInteger builds an Integer token.
func MakeInteger(v int64) Token { return Token{Kind: Integer, Integer: v} }

// MakeComment builds a Comment token carrying its text (without the `#`).
func MakeComment(text string) Token { return Token{Kind: Comment, Ident: text} }

// MakeUnexpected builds an Unexpected token for a character the lexer's
// state machine has no rule for.
func MakeUnexpected(c rune) Token { return Token{Kind: Unexpected, Char: c} }

// Simple builds a token for any kind that carries no payload.
func Simple(k Kind) Token { return Token{Kind: k} }
