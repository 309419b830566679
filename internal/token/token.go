package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT     = "IDENT"     // x, f, varA
	NUMBER    = "NUMBER"    // 42, 1.5, 2e3
	IMAGINARY = "IMAGINARY" // i

	// Operators
	ASSIGN         = "="
	QUESTION       = "?"
	PLUS           = "+"
	MINUS          = "-"
	ASTERISK       = "*"
	SLASH          = "/"
	PERCENT        = "%"
	CARET          = "^"
	MATRIX_PRODUCT = "**"
	MATRIX_DIVIDE  = "//"

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACKET = "["
	RBRACKET = "]"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
}

var keywords = map[string]TokenType{
	"i": IMAGINARY,
	"I": IMAGINARY,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
