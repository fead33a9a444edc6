package types

import (
	"fmt"
)

type TokenKind int

const (
	EOF TokenKind = iota
	ILLEGAL

	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	EOS
	ASSIGN
	BACKTICK

	PLUS
	MINUS
	TIMES
	DIVIDE
	MOD
	CARET
	LT
	LE
	GT
	GE
	EQ
	NE
	LAND
	LOR
	NOT

	INTLIT
	FLOATLIT
	CHARLIT
	STRINGLIT
	IDENT

	CONST
	VAR
	PRINT
	IF
	ELSE
	WHILE
	FUNC
	RETURN
	BREAK
	CONTINUE
	IMPORT
	TRUE
	FALSE
	INT
	FLOAT
	BOOL
	STRING
	CHAR
	VOID
)

var kindNames = map[TokenKind]string{
	EOF:       "EOF",
	ILLEGAL:   "ILLEGAL",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACKET:  "LBRACKET",
	RBRACKET:  "RBRACKET",
	COMMA:     "COMMA",
	EOS:       "EOS",
	ASSIGN:    "ASSIGN",
	BACKTICK:  "BACKTICK",
	PLUS:      "PLUS",
	MINUS:     "MINUS",
	TIMES:     "TIMES",
	DIVIDE:    "DIVIDE",
	MOD:       "MOD",
	CARET:     "CARET",
	LT:        "LT",
	LE:        "LE",
	GT:        "GT",
	GE:        "GE",
	EQ:        "EQ",
	NE:        "NE",
	LAND:      "LAND",
	LOR:       "LOR",
	NOT:       "NOT",
	INTLIT:    "INTLIT",
	FLOATLIT:  "FLOATLIT",
	CHARLIT:   "CHARLIT",
	STRINGLIT: "STRINGLIT",
	IDENT:     "IDENT",
	CONST:     "CONST",
	VAR:       "VAR",
	PRINT:     "PRINT",
	IF:        "IF",
	ELSE:      "ELSE",
	WHILE:     "WHILE",
	FUNC:      "FUNC",
	RETURN:    "RETURN",
	BREAK:     "BREAK",
	CONTINUE:  "CONTINUE",
	IMPORT:    "IMPORT",
	TRUE:      "TRUE",
	FALSE:     "FALSE",
	INT:       "INT",
	FLOAT:     "FLOAT",
	BOOL:      "BOOL",
	STRING:    "STRING",
	CHAR:      "CHAR",
	VOID:      "VOID",
}

func (t TokenKind) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// Keywords maps every reserved word to its token kind.
var Keywords = map[string]TokenKind{
	"const":    CONST,
	"var":      VAR,
	"print":    PRINT,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"func":     FUNC,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"import":   IMPORT,
	"true":     TRUE,
	"false":    FALSE,
	"int":      INT,
	"float":    FLOAT,
	"bool":     BOOL,
	"string":   STRING,
	"char":     CHAR,
	"void":     VOID,
}

// IsTypeName reports whether t names one of the builtin data types.
func (t TokenKind) IsTypeName() bool {
	switch t {
	case INT, FLOAT, BOOL, STRING, CHAR, VOID:
		return true
	}
	return false
}

type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q line %d", t.Kind, t.Lexeme, t.Line)
}
