package parser

import (
	"strconv"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/gox/ast"
	"github.com/pontaoski/gox/errors"
	"github.com/pontaoski/gox/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/gox", "parser")

type Parser struct {
	toks []types.Token
	pos  int
	errs errors.List
}

func NewParser(toks []types.Token) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Kind != types.EOF {
		line := 1
		if len(toks) > 0 {
			line = toks[len(toks)-1].Line
		}
		toks = append(toks, types.Token{Kind: types.EOF, Line: line})
	}
	return &Parser{toks: toks}
}

// Parse builds the program tree. Syntax errors do not stop the pass: each
// one is recorded and parsing resumes at the next statement boundary, so the
// returned program holds every statement that parsed cleanly.
func Parse(toks []types.Token) (*ast.Program, errors.List) {
	p := NewParser(toks)
	prog := p.parseProgram()
	return prog, p.errs
}

func (p *Parser) Peek() types.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) types.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) PeekIs(k ...types.TokenKind) bool {
	tok := p.Peek()
	for _, kind := range k {
		if tok.Kind == kind {
			return true
		}
	}
	return false
}

// Lex consumes one token. It never moves past EOF.
func (p *Parser) Lex() types.Token {
	tok := p.toks[p.pos]
	if tok.Kind != types.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) LexExpecting(k ...types.TokenKind) types.Token {
	if p.PeekIs(k...) {
		return p.Lex()
	}

	panic(errors.ExpectedOneOfKindGotKind{
		Expected: k,
		Got:      p.Peek(),
	})
}

func (p *Parser) accept(k types.TokenKind) bool {
	if p.PeekIs(k) {
		p.Lex()
		return true
	}
	return false
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{Pos: ast.Pos{Line: 1}}
	for !p.PeekIs(types.EOF) {
		if p.PeekIs(types.RBRACKET) {
			tok := p.Lex()
			p.errs.Add(errors.Syntax, tok.Line, "unexpected trailing input %q", tok.Lexeme)
			continue
		}
		if s := p.statement(true); s != nil {
			prog.Statements = append(prog.Statements, s)
		}
	}
	return prog
}

var statementStarts = map[types.TokenKind]bool{
	types.VAR:      true,
	types.CONST:    true,
	types.FUNC:     true,
	types.IMPORT:   true,
	types.PRINT:    true,
	types.IF:       true,
	types.WHILE:    true,
	types.RETURN:   true,
	types.BREAK:    true,
	types.CONTINUE: true,
}

// synchronize skips to the next statement boundary after a syntax error.
// At least one token is consumed so that parsing always makes progress.
func (p *Parser) synchronize(start int) {
	if p.pos == start {
		p.Lex()
	}
	for {
		tok := p.Peek()
		switch {
		case tok.Kind == types.EOF, tok.Kind == types.RBRACKET:
			return
		case tok.Kind == types.EOS:
			p.Lex()
			return
		case statementStarts[tok.Kind]:
			return
		}
		p.Lex()
	}
}

func syntaxLine(r interface{}) (error, int, bool) {
	switch e := r.(type) {
	case errors.ExpectedOneOfKindGotKind:
		return e, e.Got.Line, true
	case errors.UnexpectedToken:
		return e, e.Got.Line, true
	case errors.BadLiteral:
		return e, e.Line, true
	}
	return nil, 0, false
}

func (p *Parser) statement(top bool) (s ast.Statement) {
	start := p.pos
	defer func() {
		if r := recover(); r != nil {
			err, line, ok := syntaxLine(r)
			if !ok {
				panic(r)
			}
			p.errs.Add(errors.Syntax, line, "%s", err)
			p.synchronize(start)
			plog.Debugf("recovered from %q, resuming at %s", err, p.Peek())
			s = nil
		}
	}()
	return p.parseStatement(top)
}

func (p *Parser) parseStatement(top bool) ast.Statement {
	tok := p.Peek()

	switch tok.Kind {
	case types.VAR:
		return p.parseVarDecl()
	case types.CONST:
		return p.parseConstDecl()
	case types.FUNC:
		fn := p.parseFuncDecl()
		if !top {
			p.errs.Add(errors.Syntax, tok.Line, "function %s must be declared at top level", fn.Name)
			return nil
		}
		return fn
	case types.IMPORT:
		return p.parseExtern()
	case types.PRINT:
		p.Lex()
		value := p.parseExpression()
		p.LexExpecting(types.EOS)
		return &ast.Print{Pos: ast.Pos{Line: tok.Line}, Value: value}
	case types.IF:
		return p.parseIf()
	case types.WHILE:
		p.Lex()
		cond := p.parseExpression()
		return &ast.While{Pos: ast.Pos{Line: tok.Line}, Cond: cond, Body: p.parseBlock()}
	case types.RETURN:
		p.Lex()
		var value ast.Expression
		if !p.PeekIs(types.EOS) {
			value = p.parseExpression()
		}
		p.LexExpecting(types.EOS)
		return &ast.Return{Pos: ast.Pos{Line: tok.Line}, Value: value}
	case types.BREAK:
		p.Lex()
		p.LexExpecting(types.EOS)
		return &ast.Break{Pos: ast.Pos{Line: tok.Line}}
	case types.CONTINUE:
		p.Lex()
		p.LexExpecting(types.EOS)
		return &ast.Continue{Pos: ast.Pos{Line: tok.Line}}
	case types.LBRACKET:
		return p.parseBlock()
	case types.BACKTICK:
		target := p.parseUnary()
		return p.finishAssignment(tok.Line, target)
	case types.IDENT:
		if p.peekAt(1).Kind == types.ASSIGN {
			p.Lex()
			target := &ast.Ident{Typed: ast.At(tok.Line), Name: tok.Lexeme}
			return p.finishAssignment(tok.Line, target)
		}
		expr := p.parseExpression()
		p.LexExpecting(types.EOS)
		return &ast.ExprStmt{Pos: ast.Pos{Line: tok.Line}, Expr: expr}
	}

	panic(errors.UnexpectedToken{Context: "statement", Got: tok})
}

func (p *Parser) finishAssignment(line int, target ast.Expression) ast.Statement {
	p.LexExpecting(types.ASSIGN)
	value := p.parseExpression()
	p.LexExpecting(types.EOS)
	return &ast.Assignment{Pos: ast.Pos{Line: line}, Target: target, Value: value}
}

var typeKinds = []types.TokenKind{types.INT, types.FLOAT, types.BOOL, types.STRING, types.CHAR, types.VOID}

func (p *Parser) parseType() types.DataType {
	tok := p.LexExpecting(typeKinds...)
	d, _ := types.ParseDataType(tok.Lexeme)
	return d
}

func (p *Parser) parseVarDecl() ast.Statement {
	tok := p.Lex()
	name := p.LexExpecting(types.IDENT)
	decl := &ast.VarDecl{
		Pos:      ast.Pos{Line: tok.Line},
		Name:     name.Lexeme,
		DeclType: p.parseType(),
	}
	if p.accept(types.ASSIGN) {
		decl.Init = p.parseExpression()
	}
	p.LexExpecting(types.EOS)
	return decl
}

func (p *Parser) parseConstDecl() ast.Statement {
	tok := p.Lex()
	name := p.LexExpecting(types.IDENT)
	p.LexExpecting(types.ASSIGN)
	value := p.parseExpression()
	p.LexExpecting(types.EOS)
	return &ast.ConstDecl{Pos: ast.Pos{Line: tok.Line}, Name: name.Lexeme, Value: value}
}

// parseSignature reads `name(p T, ...) [T]` after func.
func (p *Parser) parseSignature() (string, []ast.Param, types.DataType) {
	name := p.LexExpecting(types.IDENT)
	var params []ast.Param

	p.LexExpecting(types.LPAREN)
	if !p.PeekIs(types.RPAREN) {
		for {
			pname := p.LexExpecting(types.IDENT)
			params = append(params, ast.Param{Name: pname.Lexeme, Type: p.parseType()})
			if !p.accept(types.COMMA) {
				break
			}
		}
	}
	p.LexExpecting(types.RPAREN)

	returns := types.Void
	if p.Peek().Kind.IsTypeName() {
		returns = p.parseType()
	}
	return name.Lexeme, params, returns
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	tok := p.Lex()
	name, params, returns := p.parseSignature()
	return &ast.FuncDecl{
		Pos:     ast.Pos{Line: tok.Line},
		Name:    name,
		Params:  params,
		Returns: returns,
		Body:    p.parseBlock(),
	}
}

func (p *Parser) parseExtern() ast.Statement {
	tok := p.Lex()
	p.LexExpecting(types.FUNC)
	name, params, returns := p.parseSignature()
	p.LexExpecting(types.EOS)
	return &ast.ExternDecl{Pos: ast.Pos{Line: tok.Line}, Name: name, Params: params, Returns: returns}
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.Lex()
	stmt := &ast.If{Pos: ast.Pos{Line: tok.Line}, Cond: p.parseExpression(), Then: p.parseBlock()}
	if p.PeekIs(types.ELSE) {
		elseTok := p.Lex()
		if p.PeekIs(types.IF) {
			stmt.Else = &ast.Block{Pos: ast.Pos{Line: elseTok.Line}, Statements: []ast.Statement{p.parseIf()}}
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

// parseBlock reads `{ statements }`.
func (p *Parser) parseBlock() *ast.Block {
	tok := p.LexExpecting(types.LBRACKET)
	block := &ast.Block{Pos: ast.Pos{Line: tok.Line}}
	for !p.PeekIs(types.RBRACKET, types.EOF) {
		if s := p.statement(false); s != nil {
			block.Statements = append(block.Statements, s)
		}
	}
	p.LexExpecting(types.RBRACKET)
	return block
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parseLogical()
}

// binaryLevel parses a left-associative chain of operators from ops whose
// operands come from next.
func (p *Parser) binaryLevel(next func() ast.Expression, ops ...types.TokenKind) ast.Expression {
	left := next()
	for p.PeekIs(ops...) {
		op := p.Lex()
		right := next()
		left = &ast.Binary{Typed: ast.At(op.Line), Op: op.Lexeme, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogical() ast.Expression {
	return p.binaryLevel(p.parseEquality, types.LAND, types.LOR)
}

func (p *Parser) parseEquality() ast.Expression {
	return p.binaryLevel(p.parseRelational, types.EQ, types.NE)
}

func (p *Parser) parseRelational() ast.Expression {
	return p.binaryLevel(p.parseAdditive, types.LT, types.LE, types.GT, types.GE)
}

func (p *Parser) parseAdditive() ast.Expression {
	return p.binaryLevel(p.parseMultiplicative, types.PLUS, types.MINUS)
}

func (p *Parser) parseMultiplicative() ast.Expression {
	return p.binaryLevel(p.parseUnary, types.TIMES, types.DIVIDE, types.MOD)
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.Peek()
	switch tok.Kind {
	case types.PLUS, types.MINUS, types.NOT, types.CARET:
		p.Lex()
		return &ast.Unary{Typed: ast.At(tok.Line), Op: tok.Lexeme, Operand: p.parseUnary()}
	case types.BACKTICK:
		p.Lex()
		if p.accept(types.LPAREN) {
			addr := p.parseExpression()
			p.LexExpecting(types.RPAREN)
			return &ast.MemoryRead{Typed: ast.At(tok.Line), Addr: addr}
		}
		return &ast.Deref{Typed: ast.At(tok.Line), Operand: p.parsePrimary()}
	}
	return p.parsePrimary()
}

func (p *Parser) parseArgs() []ast.Expression {
	var args []ast.Expression
	p.LexExpecting(types.LPAREN)
	if !p.PeekIs(types.RPAREN) {
		for {
			args = append(args, p.parseExpression())
			if !p.accept(types.COMMA) {
				break
			}
		}
	}
	p.LexExpecting(types.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.Peek()
	at := ast.At(tok.Line)

	switch tok.Kind {
	case types.INTLIT:
		p.Lex()
		return &ast.IntLiteral{Typed: at, Value: parseInt(tok)}
	case types.FLOATLIT:
		p.Lex()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			panic(errors.BadLiteral{Lexeme: tok.Lexeme, Reason: err.Error(), Line: tok.Line})
		}
		return &ast.FloatLiteral{Typed: at, Value: v}
	case types.CHARLIT:
		p.Lex()
		return &ast.CharLiteral{Typed: at, Value: unquoteChar(tok)}
	case types.STRINGLIT:
		p.Lex()
		return &ast.StringLiteral{Typed: at, Value: unquoteString(tok)}
	case types.TRUE, types.FALSE:
		p.Lex()
		return &ast.BoolLiteral{Typed: at, Value: tok.Kind == types.TRUE}
	case types.LPAREN:
		p.Lex()
		expr := p.parseExpression()
		p.LexExpecting(types.RPAREN)
		return expr
	case types.IDENT:
		p.Lex()
		if !p.PeekIs(types.LPAREN) {
			return &ast.Ident{Typed: at, Name: tok.Lexeme}
		}
		return &ast.Call{Typed: at, Name: tok.Lexeme, Args: p.parseArgs()}
	case types.INT, types.FLOAT, types.BOOL, types.CHAR, types.STRING, types.VOID:
		if p.peekAt(1).Kind == types.LPAREN {
			target := p.parseType()
			p.Lex()
			expr := p.parseExpression()
			p.LexExpecting(types.RPAREN)
			return &ast.Cast{Typed: at, Target: target, Expr: expr}
		}
	}

	panic(errors.UnexpectedToken{Context: "expression", Got: tok})
}

func parseInt(tok types.Token) int32 {
	lit := strings.ToLower(tok.Lexeme)
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0b") {
		v, err := strconv.ParseUint(lit, 0, 32)
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrSyntax {
			// malformed prefixed literals are reported by the lexer
			return 0
		}
		if err != nil {
			panic(errors.BadLiteral{Lexeme: tok.Lexeme, Reason: "does not fit in 32 bits", Line: tok.Line})
		}
		return int32(uint32(v))
	}
	v, err := strconv.ParseInt(lit, 10, 32)
	if err != nil {
		panic(errors.BadLiteral{Lexeme: tok.Lexeme, Reason: "does not fit in 32 bits", Line: tok.Line})
	}
	return int32(v)
}

func unquoteChar(tok types.Token) byte {
	inner := tok.Lexeme[1 : len(tok.Lexeme)-1]
	if inner == "" {
		panic(errors.BadLiteral{Lexeme: tok.Lexeme, Reason: "empty character", Line: tok.Line})
	}
	r, _, tail, err := strconv.UnquoteChar(inner, '\'')
	if err != nil || tail != "" {
		panic(errors.BadLiteral{Lexeme: tok.Lexeme, Reason: "expected exactly one character", Line: tok.Line})
	}
	if r > 0xff {
		panic(errors.BadLiteral{Lexeme: tok.Lexeme, Reason: "character does not fit in a byte", Line: tok.Line})
	}
	return byte(r)
}

func unquoteString(tok types.Token) string {
	s := tok.Lexeme[1 : len(tok.Lexeme)-1]
	var sb strings.Builder
	for len(s) > 0 {
		r, multibyte, tail, err := strconv.UnquoteChar(s, '"')
		if err != nil {
			panic(errors.BadLiteral{Lexeme: tok.Lexeme, Reason: "invalid escape", Line: tok.Line})
		}
		if multibyte || r < 0x80 {
			sb.WriteRune(r)
		} else {
			sb.WriteByte(byte(r))
		}
		s = tail
	}
	return sb.String()
}
