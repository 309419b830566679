package lexer

import (
	"unicode"
	"unicode/utf8"

	"computor/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	startPosition := l.position

	switch l.ch {
	case '=':
		tok = newToken(token.ASSIGN, l.ch, startPosition)
	case '?':
		tok = newToken(token.QUESTION, l.ch, startPosition)
	case '+':
		tok = newToken(token.PLUS, l.ch, startPosition)
	case '-':
		tok = newToken(token.MINUS, l.ch, startPosition)
	case '*':
		tok = l.handleCompoundToken(token.ASTERISK, '*', token.MATRIX_PRODUCT)
	case '/':
		tok = l.handleCompoundToken(token.SLASH, '/', token.MATRIX_DIVIDE)
	case '%':
		tok = newToken(token.PERCENT, l.ch, startPosition)
	case '^':
		tok = newToken(token.CARET, l.ch, startPosition)
	case ',':
		tok = newToken(token.COMMA, l.ch, startPosition)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, startPosition)
	case '(':
		tok = newToken(token.LPAREN, l.ch, startPosition)
	case ')':
		tok = newToken(token.RPAREN, l.ch, startPosition)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, startPosition)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, startPosition)
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		tok.Position = startPosition
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Position = startPosition
			return tok
		} else if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			tok.Literal = l.readNumber()
			tok.Type = token.NUMBER
			tok.Position = startPosition
			return tok
		}
		tok = newToken(token.ILLEGAL, l.ch, startPosition)
	}

	l.readChar()
	return tok
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	startPosition := l.position
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Position: startPosition}
	}
	return newToken(t, l.ch, startPosition)
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring (bytes) covering the identifier runes.
// Digits are not part of identifiers so that "2x" and "x2" stay separate tokens.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber accepts 12, 1.5, .5 and an optional exponent (2e3, 1.5E-2).
// The exponent is only consumed when digits follow, so "2e" lexes as 2 and e.
func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && l.exponentFollows() {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

func (l *Lexer) exponentFollows() bool {
	next := l.peekChar()
	if isDigit(next) {
		return true
	}
	if next != '+' && next != '-' {
		return false
	}
	idx := l.readPosition + 1
	if idx >= len(l.input) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l.input[idx:])
	return isDigit(r)
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Position: position}
}
