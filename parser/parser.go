package parser

import (
	"strconv"
	"strings"

	"github.com/dymsrun/dyms/ast"
	"github.com/dymsrun/dyms/lexer"
	"github.com/dymsrun/dyms/runtime"
)

// Parser is a classic recursive-descent / precedence-climbing parser over
// the lexer's flat token stream, the way the teacher's original parser was
// built, generalized to the full grammar (structs, enums, match, try,
// closures, interpolated strings).
type Parser struct {
	tokens   []lexer.Token
	pos      int
	noStruct int // >0 while parsing a context where `{` can't start a struct literal
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) consume() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t lexer.TokenType, message string) (lexer.Token, *runtime.Error) {
	tok := p.peek()
	if tok.Type != t {
		return tok, runtime.NewError(message+" (got "+tok.Type.String()+" "+strconv.Quote(tok.Value)+")", tok.Line, tok.Column)
	}
	return p.consume(), nil
}

// ParseProgram parses the whole token stream as a top-level program.
func (p *Parser) ParseProgram() (*ast.Program, *runtime.Error) {
	var body []ast.Stmt
	for p.peek().Type != lexer.EOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return &ast.Program{Body: body}, nil
}

// ParseSource tokenizes and parses a full source string in one shot.
func ParseSource(src string) (*ast.Program, *runtime.Error) {
	return New(lexer.Tokenize(src)).ParseProgram()
}

// RuntimeParser adapts ParseSource to the runtime.SourceParser capability
// (runtime/capabilities.go), so module loading and the CLI entry point can
// depend on the interface instead of this package directly.
type RuntimeParser struct{}

func NewRuntimeParser() *RuntimeParser { return &RuntimeParser{} }

func (r *RuntimeParser) Parse(src string) (*ast.Program, error) {
	prog, err := ParseSource(src)
	if err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) parseStmt() (ast.Stmt, *runtime.Error) {
	switch p.peek().Type {
	case lexer.Import:
		return p.parseImportStatement()
	case lexer.Func:
		return p.parseFunctionDeclaration()
	case lexer.Return:
		return p.parseReturnStatement()
	case lexer.Break:
		p.consume()
		return &ast.BreakStatement{}, nil
	case lexer.Continue:
		p.consume()
		return &ast.ContinueStatement{}, nil
	case lexer.Try:
		return p.parseTryStatement()
	case lexer.Throw:
		return p.parseThrowStatement()
	case lexer.Struct:
		return p.parseStructDeclaration()
	case lexer.Enum:
		return p.parseEnumDeclaration()
	case lexer.Let, lexer.Var, lexer.Const:
		return p.parseVarDeclaration()
	case lexer.If:
		return p.parseIfStatement()
	case lexer.For:
		return p.parseForStatement()
	case lexer.While:
		return p.parseWhileStatement()
	case lexer.OpenBrace:
		return p.parseBlockStatement()
	default:
		return p.parseExpr()
	}
}

func (p *Parser) parseImportStatement() (ast.Stmt, *runtime.Error) {
	p.consume()
	pathTok, err := p.expect(lexer.String, "expected module path string after 'import'")
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.peek().Type == lexer.As {
		p.consume()
		aliasTok, err := p.expect(lexer.Identifier, "expected alias after 'as'")
		if err != nil {
			return nil, err
		}
		alias = aliasTok.Value
	}
	return &ast.ImportStatement{Path: pathTok.Value, Alias: alias}, nil
}

// parseParamList parses "(name[: Type][= default], ...)" shared by function
// declarations and anonymous function expressions.
func (p *Parser) parseParamList() ([]ast.Param, map[string]ast.Expr, *runtime.Error) {
	if _, err := p.expect(lexer.OpenParen, "expected '(' to start parameter list"); err != nil {
		return nil, nil, err
	}
	var params []ast.Param
	var defaults map[string]ast.Expr
	for p.peek().Type != lexer.CloseParen {
		nameTok, err := p.expect(lexer.Identifier, "expected parameter name")
		if err != nil {
			return nil, nil, err
		}
		typeAnn := ""
		if p.peek().Type == lexer.Colon {
			p.consume()
			t, err := p.expect(lexer.Identifier, "expected parameter type annotation")
			if err != nil {
				return nil, nil, err
			}
			typeAnn = t.Value
		}
		if p.peek().Type == lexer.Equals {
			p.consume()
			def, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			if defaults == nil {
				defaults = map[string]ast.Expr{}
			}
			defaults[nameTok.Value] = def
		}
		params = append(params, ast.Param{Name: nameTok.Value, TypeAnn: typeAnn})
		if p.peek().Type == lexer.Comma {
			p.consume()
		}
	}
	p.consume()
	return params, defaults, nil
}

func (p *Parser) parseReturnTypeAnn() (string, *runtime.Error) {
	if p.peek().Type != lexer.Colon {
		return "", nil
	}
	p.consume()
	t, err := p.expect(lexer.Identifier, "expected return type after ':'")
	if err != nil {
		return "", err
	}
	return t.Value, nil
}

// parseFunctionDeclaration handles both free functions and struct methods,
// the latter spelled "func Type.method(...) { ... }".
func (p *Parser) parseFunctionDeclaration() (ast.Stmt, *runtime.Error) {
	p.consume()
	nameTok, err := p.expect(lexer.Identifier, "expected function name after 'func'")
	if err != nil {
		return nil, err
	}
	name := nameTok.Value
	receiver := ""
	if p.peek().Type == lexer.Dot {
		p.consume()
		methodTok, err := p.expect(lexer.Identifier, "expected method name after '.'")
		if err != nil {
			return nil, err
		}
		receiver = name
		name = methodTok.Value
	}
	params, defaults, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	retAnn, err := p.parseReturnTypeAnn()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		Name: name, Receiver: receiver, Params: params,
		Defaults: defaults, Body: body, ReturnTypeAnn: retAnn,
	}, nil
}

func (p *Parser) parseVarDeclaration() (ast.Stmt, *runtime.Error) {
	kindTok := p.consume()
	nameTok, err := p.expect(lexer.Identifier, "expected identifier in variable declaration")
	if err != nil {
		return nil, err
	}
	typeAnn := ""
	if p.peek().Type == lexer.Colon {
		p.consume()
		t, err := p.expect(lexer.Identifier, "expected type annotation")
		if err != nil {
			return nil, err
		}
		typeAnn = t.Value
	}
	if _, err := p.expect(lexer.Equals, "expected '=' in variable declaration"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.VarDeclaration{
		Identifier: nameTok.Value, Value: value,
		Constant: kindTok.Type == lexer.Const, TypeAnn: typeAnn,
	}, nil
}

func (p *Parser) parseIfStatement() (ast.Stmt, *runtime.Error) {
	p.consume()
	p.noStruct++
	cond, err := p.parseExpr()
	p.noStruct--
	if err != nil {
		return nil, err
	}
	conseq, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	var alt ast.Stmt
	if p.peek().Type == lexer.Else {
		p.consume()
		if p.peek().Type == lexer.If {
			alt, err = p.parseIfStatement()
		} else {
			alt, err = p.parseBlockStatement()
		}
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStatement{Condition: cond, Consequence: conseq, Alternative: alt}, nil
}

func (p *Parser) parseWhileStatement() (ast.Stmt, *runtime.Error) {
	p.consume()
	p.noStruct++
	cond, err := p.parseExpr()
	p.noStruct--
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Condition: cond, Body: body}, nil
}

// parseForStatement handles "for x in iter { }" and "for (k, v) in iter { }".
func (p *Parser) parseForStatement() (ast.Stmt, *runtime.Error) {
	p.consume()
	var binders []string
	if p.peek().Type == lexer.OpenParen {
		p.consume()
		for p.peek().Type != lexer.CloseParen {
			tok, err := p.expect(lexer.Identifier, "expected binder name")
			if err != nil {
				return nil, err
			}
			binders = append(binders, tok.Value)
			if p.peek().Type == lexer.Comma {
				p.consume()
			}
		}
		p.consume()
	} else {
		tok, err := p.expect(lexer.Identifier, "expected binder name")
		if err != nil {
			return nil, err
		}
		binders = append(binders, tok.Value)
	}
	if _, err := p.expect(lexer.In, "expected 'in' in for statement"); err != nil {
		return nil, err
	}
	p.noStruct++
	iter, err := p.parseExpr()
	p.noStruct--
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Binders: binders, Iter: iter, Body: body}, nil
}

func (p *Parser) parseReturnStatement() (ast.Stmt, *runtime.Error) {
	p.consume()
	switch p.peek().Type {
	case lexer.CloseBrace, lexer.EOF:
		return &ast.ReturnStatement{}, nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Value: value}, nil
}

func (p *Parser) parseTryStatement() (ast.Stmt, *runtime.Error) {
	p.consume()
	tryBlock, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	var catchBlock *ast.BlockStatement
	errVar := ""
	if p.peek().Type == lexer.Catch {
		p.consume()
		if p.peek().Type == lexer.OpenParen {
			p.consume()
			tok, err := p.expect(lexer.Identifier, "expected error binding name")
			if err != nil {
				return nil, err
			}
			errVar = tok.Value
			if _, err := p.expect(lexer.CloseParen, "expected ')' after error binding"); err != nil {
				return nil, err
			}
		}
		catchBlock, err = p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
	}
	var finallyBlock *ast.BlockStatement
	if p.peek().Type == lexer.Finally {
		p.consume()
		finallyBlock, err = p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.TryStatement{
		TryBlock: tryBlock, CatchBlock: catchBlock,
		ErrorVar: errVar, FinallyBlock: finallyBlock,
	}, nil
}

func (p *Parser) parseThrowStatement() (ast.Stmt, *runtime.Error) {
	p.consume()
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ThrowStatement{Value: value}, nil
}

func (p *Parser) parseStructDeclaration() (ast.Stmt, *runtime.Error) {
	p.consume()
	nameTok, err := p.expect(lexer.Identifier, "expected struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.OpenBrace, "expected '{' to start struct body"); err != nil {
		return nil, err
	}
	var fields []ast.Param
	for p.peek().Type != lexer.CloseBrace {
		fieldTok, err := p.expect(lexer.Identifier, "expected field name")
		if err != nil {
			return nil, err
		}
		typeAnn := ""
		if p.peek().Type == lexer.Colon {
			p.consume()
			t, err := p.expect(lexer.Identifier, "expected field type")
			if err != nil {
				return nil, err
			}
			typeAnn = t.Value
		}
		fields = append(fields, ast.Param{Name: fieldTok.Value, TypeAnn: typeAnn})
		if p.peek().Type == lexer.Comma {
			p.consume()
		}
	}
	p.consume()
	return &ast.StructDeclaration{Name: nameTok.Value, Fields: fields}, nil
}

func (p *Parser) parseEnumDeclaration() (ast.Stmt, *runtime.Error) {
	p.consume()
	nameTok, err := p.expect(lexer.Identifier, "expected enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.OpenBrace, "expected '{' to start enum body"); err != nil {
		return nil, err
	}
	var variants []ast.EnumVariantDecl
	for p.peek().Type != lexer.CloseBrace {
		variantTok, err := p.expect(lexer.Identifier, "expected variant name")
		if err != nil {
			return nil, err
		}
		var fields []string
		if p.peek().Type == lexer.OpenParen {
			p.consume()
			for p.peek().Type != lexer.CloseParen {
				f, err := p.expect(lexer.Identifier, "expected variant field name")
				if err != nil {
					return nil, err
				}
				fields = append(fields, f.Value)
				if p.peek().Type == lexer.Comma {
					p.consume()
				}
			}
			p.consume()
		}
		variants = append(variants, ast.EnumVariantDecl{Name: variantTok.Value, Fields: fields})
		if p.peek().Type == lexer.Comma {
			p.consume()
		}
	}
	p.consume()
	return &ast.EnumDeclaration{Name: nameTok.Value, Variants: variants}, nil
}

func (p *Parser) parseBlockStatement() (*ast.BlockStatement, *runtime.Error) {
	if _, err := p.expect(lexer.OpenBrace, "expected '{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.peek().Type != lexer.CloseBrace && p.peek().Type != lexer.EOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(lexer.CloseBrace, "expected '}'"); err != nil {
		return nil, err
	}
	return &ast.BlockStatement{Statements: stmts}, nil
}

// --- expressions, lowest to highest precedence ---

func (p *Parser) parseExpr() (ast.Expr, *runtime.Error) {
	return p.parseAssignmentExpr()
}

var compoundOps = map[lexer.TokenType]string{
	lexer.PlusEquals:    "+=",
	lexer.MinusEquals:   "-=",
	lexer.StarEquals:    "*=",
	lexer.SlashEquals:   "/=",
	lexer.PercentEquals: "%=",
}

func assignable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpr, *ast.IndexExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAssignmentExpr() (ast.Expr, *runtime.Error) {
	left, err := p.parseLogicalOrExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == lexer.Equals {
		tok := p.consume()
		if !assignable(left) {
			return nil, runtime.NewErrorAt(runtime.ErrInvalidAssignmentTarget, "invalid assignment target", tok.Line, tok.Column)
		}
		right, err := p.parseAssignmentExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpr{Assignee: left, Value: right, Line: tok.Line, Column: tok.Column}, nil
	}
	if op, ok := compoundOps[p.peek().Type]; ok {
		tok := p.consume()
		if !assignable(left) {
			return nil, runtime.NewErrorAt(runtime.ErrInvalidAssignmentTarget, "invalid assignment target", tok.Line, tok.Column)
		}
		right, err := p.parseAssignmentExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpr{Assignee: left, Value: right, Operator: op, Line: tok.Line, Column: tok.Column}, nil
	}
	return left, nil
}

func (p *Parser) parseLogicalOrExpr() (ast.Expr, *runtime.Error) {
	left, err := p.parseLogicalAndExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.LogicalOperator && p.peek().Value == "||" {
		opTok := p.consume()
		right, err := p.parseLogicalAndExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Right: right, Operator: opTok.Value, Line: opTok.Line, Column: opTok.Column}
	}
	return left, nil
}

func (p *Parser) parseLogicalAndExpr() (ast.Expr, *runtime.Error) {
	left, err := p.parseComparisonExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.LogicalOperator && p.peek().Value == "&&" {
		opTok := p.consume()
		right, err := p.parseComparisonExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Right: right, Operator: opTok.Value, Line: opTok.Line, Column: opTok.Column}
	}
	return left, nil
}

func (p *Parser) parseComparisonExpr() (ast.Expr, *runtime.Error) {
	left, err := p.parseRangeExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.ComparisonOperator {
		opTok := p.consume()
		right, err := p.parseRangeExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Right: right, Operator: opTok.Value, Line: opTok.Line, Column: opTok.Column}
	}
	return left, nil
}

// parseRangeExpr binds `..`/`..=` looser than +/- so `0..n-1` parses as
// expected, and is not chainable (a..b..c is not a thing).
func (p *Parser) parseRangeExpr() (ast.Expr, *runtime.Error) {
	left, err := p.parseAdditiveExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == lexer.DotDot || p.peek().Type == lexer.DotDotEq {
		inclusive := p.peek().Type == lexer.DotDotEq
		p.consume()
		right, err := p.parseAdditiveExpr()
		if err != nil {
			return nil, err
		}
		return &ast.RangeExpr{Start: left, End: right, Inclusive: inclusive}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditiveExpr() (ast.Expr, *runtime.Error) {
	left, err := p.parseMultiplicativeExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.BinaryOperator && (p.peek().Value == "+" || p.peek().Value == "-") {
		opTok := p.consume()
		right, err := p.parseMultiplicativeExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Right: right, Operator: opTok.Value, Line: opTok.Line, Column: opTok.Column}
	}
	return left, nil
}

func (p *Parser) parseMultiplicativeExpr() (ast.Expr, *runtime.Error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	for (p.peek().Type == lexer.BinaryOperator && (p.peek().Value == "*" || p.peek().Value == "/")) || p.peek().Type == lexer.Modulo {
		opTok := p.consume()
		right, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Right: right, Operator: opTok.Value, Line: opTok.Line, Column: opTok.Column}
	}
	return left, nil
}

func (p *Parser) parseUnaryExpr() (ast.Expr, *runtime.Error) {
	switch {
	case p.peek().Type == lexer.Not:
		p.consume()
		operand, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Operand: operand, Operator: "!", Prefix: true}, nil
	case p.peek().Type == lexer.BinaryOperator && p.peek().Value == "-":
		p.consume()
		operand, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Operand: operand, Operator: "-", Prefix: true}, nil
	case p.peek().Type == lexer.Increment || p.peek().Type == lexer.Decrement:
		opTok := p.consume()
		operand, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Operand: operand, Operator: opTok.Value, Prefix: true}, nil
	default:
		return p.parsePostfixExpr()
	}
}

func (p *Parser) parsePostfixExpr() (ast.Expr, *runtime.Error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case lexer.Dot:
			p.consume()
			nameTok, err := p.expect(lexer.Identifier, "expected property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{
				Object:   expr,
				Property: &ast.Identifier{Symbol: nameTok.Value, Line: nameTok.Line, Column: nameTok.Column},
				Line:     nameTok.Line, Column: nameTok.Column,
			}
		case lexer.OpenBracket:
			p.consume()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.CloseBracket, "expected ']'"); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Object: expr, Index: idx}
		case lexer.OpenParen:
			p.consume()
			var args []ast.Expr
			for p.peek().Type != lexer.CloseParen {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.peek().Type == lexer.Comma {
					p.consume()
				}
			}
			p.consume()
			expr = &ast.CallExpr{Callee: expr, Args: args}
		case lexer.Increment, lexer.Decrement:
			opTok := p.consume()
			expr = &ast.UnaryExpr{Operand: expr, Operator: opTok.Value, Prefix: false}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, *runtime.Error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.Number:
		p.consume()
		if strings.Contains(tok.Value, ".") {
			f, convErr := strconv.ParseFloat(tok.Value, 64)
			if convErr != nil {
				return nil, runtime.NewError("invalid float literal: "+tok.Value, tok.Line, tok.Column)
			}
			return &ast.FloatLiteral{Value: f}, nil
		}
		n, convErr := strconv.ParseInt(tok.Value, 10, 64)
		if convErr != nil {
			return nil, runtime.NewError("invalid integer literal: "+tok.Value, tok.Line, tok.Column)
		}
		return &ast.IntLiteral{Value: n}, nil

	case lexer.String:
		p.consume()
		return p.buildStringLiteral(tok.Value, tok.Line, tok.Column)

	case lexer.True:
		p.consume()
		return &ast.BooleanLiteral{Value: true}, nil
	case lexer.False:
		p.consume()
		return &ast.BooleanLiteral{Value: false}, nil
	case lexer.Null:
		p.consume()
		return &ast.NullLiteral{}, nil

	case lexer.Match:
		return p.parseMatchExpr()
	case lexer.Func:
		return p.parseFuncExpr()

	case lexer.OpenBracket:
		p.consume()
		var elements []ast.Expr
		for p.peek().Type != lexer.CloseBracket {
			el, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
			if p.peek().Type == lexer.Comma {
				p.consume()
			}
		}
		p.consume()
		return &ast.ArrayLiteral{Elements: elements}, nil

	case lexer.OpenParen:
		p.consume()
		if p.peek().Type == lexer.CloseParen {
			p.consume()
			return &ast.TupleLiteral{}, nil
		}
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().Type == lexer.Comma {
			elements := []ast.Expr{first}
			for p.peek().Type == lexer.Comma {
				p.consume()
				if p.peek().Type == lexer.CloseParen {
					break
				}
				el, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				elements = append(elements, el)
			}
			if _, err := p.expect(lexer.CloseParen, "expected ')'"); err != nil {
				return nil, err
			}
			return &ast.TupleLiteral{Elements: elements}, nil
		}
		if _, err := p.expect(lexer.CloseParen, "expected ')'"); err != nil {
			return nil, err
		}
		return first, nil

	case lexer.OpenBrace:
		return p.parseMapOrSetLiteral()

	case lexer.Identifier:
		return p.parseIdentifierLed()

	default:
		return nil, runtime.NewError("unexpected token "+tok.Type.String(), tok.Line, tok.Column)
	}
}

func (p *Parser) parseMapOrSetLiteral() (ast.Expr, *runtime.Error) {
	p.consume()
	if p.peek().Type == lexer.CloseBrace {
		p.consume()
		return &ast.MapLiteral{}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == lexer.Colon {
		p.consume()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		props := []*ast.Property{{Key: first, Value: val}}
		for p.peek().Type == lexer.Comma {
			p.consume()
			if p.peek().Type == lexer.CloseBrace {
				break
			}
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.Colon, "expected ':' in map literal"); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			props = append(props, &ast.Property{Key: k, Value: v})
		}
		if _, err := p.expect(lexer.CloseBrace, "expected '}'"); err != nil {
			return nil, err
		}
		return &ast.MapLiteral{Properties: props}, nil
	}
	elements := []ast.Expr{first}
	for p.peek().Type == lexer.Comma {
		p.consume()
		if p.peek().Type == lexer.CloseBrace {
			break
		}
		el, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	if _, err := p.expect(lexer.CloseBrace, "expected '}'"); err != nil {
		return nil, err
	}
	return &ast.SetLiteral{Elements: elements}, nil
}

// parseIdentifierLed disambiguates a bare identifier from an enum
// construction (`Type#Variant(...)`) and a struct literal (`Type { ... }`,
// suppressed inside condition/iterable position by noStruct).
func (p *Parser) parseIdentifierLed() (ast.Expr, *runtime.Error) {
	tok := p.consume()

	if p.peek().Type == lexer.Hash {
		p.consume()
		variantTok, err := p.expect(lexer.Identifier, "expected variant name after '#'")
		if err != nil {
			return nil, err
		}
		var args []ast.Expr
		if p.peek().Type == lexer.OpenParen {
			p.consume()
			for p.peek().Type != lexer.CloseParen {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.peek().Type == lexer.Comma {
					p.consume()
				}
			}
			p.consume()
		}
		return &ast.EnumConstructExpr{TypeName: tok.Value, VariantName: variantTok.Value, Args: args}, nil
	}

	if p.noStruct == 0 && p.peek().Type == lexer.OpenBrace {
		p.consume()
		var fields []*ast.Property
		for p.peek().Type != lexer.CloseBrace {
			fieldTok, err := p.expect(lexer.Identifier, "expected field name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.Colon, "expected ':' after field name"); err != nil {
				return nil, err
			}
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fields = append(fields, &ast.Property{Key: &ast.Identifier{Symbol: fieldTok.Value}, Value: val})
			if p.peek().Type == lexer.Comma {
				p.consume()
			}
		}
		p.consume()
		return &ast.StructLiteral{Name: tok.Value, Fields: fields}, nil
	}

	return &ast.Identifier{Symbol: tok.Value, Line: tok.Line, Column: tok.Column}, nil
}

func (p *Parser) parseFuncExpr() (ast.Expr, *runtime.Error) {
	p.consume()
	name := ""
	if p.peek().Type == lexer.Identifier {
		name = p.consume().Value
	}
	params, defaults, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	retAnn, err := p.parseReturnTypeAnn()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionExpression{Name: name, Params: params, Defaults: defaults, Body: body, ReturnTypeAnn: retAnn}, nil
}

// buildStringLiteral splits a lexed (already escape-processed) string body
// on "${...}" runs, recursively lexing and parsing each embedded expression
// with a fresh Parser (spec §4.F string interpolation).
func (p *Parser) buildStringLiteral(raw string, line, col int) (ast.Expr, *runtime.Error) {
	runes := []rune(raw)
	var parts []string
	var exprs []ast.Expr
	var cur strings.Builder

	i := 0
	for i < len(runes) {
		if runes[i] == '$' && i+1 < len(runes) && runes[i+1] == '{' {
			parts = append(parts, cur.String())
			cur.Reset()
			i += 2
			depth := 1
			start := i
			for i < len(runes) && depth > 0 {
				switch runes[i] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						goto closed
					}
				}
				i++
			}
		closed:
			exprText := string(runes[start:i])
			if i < len(runes) {
				i++ // skip closing '}'
			}
			sub := New(lexer.Tokenize(exprText))
			expr, err := sub.parseExpr()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
		} else {
			cur.WriteRune(runes[i])
			i++
		}
	}
	parts = append(parts, cur.String())
	return &ast.StringLiteral{Parts: parts, Exprs: exprs}, nil
}

func (p *Parser) parseMatchExpr() (ast.Expr, *runtime.Error) {
	p.consume()
	p.noStruct++
	subject, err := p.parseExpr()
	p.noStruct--
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.OpenBrace, "expected '{' after match subject"); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for p.peek().Type != lexer.CloseBrace {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if p.peek().Type == lexer.If {
			p.consume()
			guard, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.Arrow, "expected '=>' in match arm"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		if p.peek().Type == lexer.Comma {
			p.consume()
		}
	}
	p.consume()
	return &ast.MatchExpr{Subject: subject, Arms: arms}, nil
}

func (p *Parser) parsePattern() (ast.Pattern, *runtime.Error) {
	switch p.peek().Type {
	case lexer.OpenParen:
		p.consume()
		var subs []ast.Pattern
		for p.peek().Type != lexer.CloseParen {
			sp, err := p.parsePattern()
			if err != nil {
				return ast.Pattern{}, err
			}
			subs = append(subs, sp)
			if p.peek().Type == lexer.Comma {
				p.consume()
			}
		}
		p.consume()
		return ast.Pattern{Kind: ast.PatternTuple, SubPatterns: subs}, nil

	case lexer.OpenBrace:
		return p.parseStructPattern()

	case lexer.Identifier:
		if p.peek().Value == "_" {
			p.consume()
			return ast.Pattern{Kind: ast.PatternWildcard}, nil
		}
		name := p.consume().Value
		if p.peek().Type == lexer.Hash {
			p.consume()
			variantTok, err := p.expect(lexer.Identifier, "expected variant name after '#'")
			if err != nil {
				return ast.Pattern{}, err
			}
			var subs []ast.Pattern
			if p.peek().Type == lexer.OpenParen {
				p.consume()
				for p.peek().Type != lexer.CloseParen {
					sp, err := p.parsePattern()
					if err != nil {
						return ast.Pattern{}, err
					}
					subs = append(subs, sp)
					if p.peek().Type == lexer.Comma {
						p.consume()
					}
				}
				p.consume()
			}
			return ast.Pattern{Kind: ast.PatternEnum, TypeName: name, VariantName: variantTok.Value, SubPatterns: subs}, nil
		}
		if p.peek().Type == lexer.OpenBrace {
			// Struct patterns match structurally by field name only
			// (Pattern.TypeName is left empty for PatternStruct), so a
			// leading type name is dropped here rather than threaded through.
			return p.parseStructPattern()
		}
		return ast.Pattern{Kind: ast.PatternBinding, Name: name}, nil

	default:
		lit, err := p.parsePatternLiteral()
		if err != nil {
			return ast.Pattern{}, err
		}
		return ast.Pattern{Kind: ast.PatternLiteral, Literal: lit}, nil
	}
}

// parseStructPattern parses "{ field[: subpattern], ... }". A leading
// type-name identifier before the brace, if any, is consumed and discarded
// by parsePattern's Identifier case before calling this.
func (p *Parser) parseStructPattern() (ast.Pattern, *runtime.Error) {
	p.consume()
	var names []string
	var subs []ast.Pattern
	for p.peek().Type != lexer.CloseBrace {
		field, err := p.expect(lexer.Identifier, "expected field name in struct pattern")
		if err != nil {
			return ast.Pattern{}, err
		}
		names = append(names, field.Value)
		if p.peek().Type == lexer.Colon {
			p.consume()
			sp, err := p.parsePattern()
			if err != nil {
				return ast.Pattern{}, err
			}
			subs = append(subs, sp)
		} else {
			subs = append(subs, ast.Pattern{Kind: ast.PatternBinding, Name: field.Value})
		}
		if p.peek().Type == lexer.Comma {
			p.consume()
		}
	}
	p.consume()
	return ast.Pattern{Kind: ast.PatternStruct, FieldNames: names, SubPatterns: subs}, nil
}

// parsePatternLiteral handles number/string/bool/null literal patterns,
// including a leading unary minus for negative numbers.
func (p *Parser) parsePatternLiteral() (ast.Expr, *runtime.Error) {
	if p.peek().Type == lexer.BinaryOperator && p.peek().Value == "-" {
		p.consume()
		inner, err := p.parsePatternLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Operand: inner, Operator: "-", Prefix: true}, nil
	}
	tok := p.peek()
	switch tok.Type {
	case lexer.Number:
		p.consume()
		if strings.Contains(tok.Value, ".") {
			f, _ := strconv.ParseFloat(tok.Value, 64)
			return &ast.FloatLiteral{Value: f}, nil
		}
		n, _ := strconv.ParseInt(tok.Value, 10, 64)
		return &ast.IntLiteral{Value: n}, nil
	case lexer.String:
		p.consume()
		return p.buildStringLiteral(tok.Value, tok.Line, tok.Column)
	case lexer.True:
		p.consume()
		return &ast.BooleanLiteral{Value: true}, nil
	case lexer.False:
		p.consume()
		return &ast.BooleanLiteral{Value: false}, nil
	case lexer.Null:
		p.consume()
		return &ast.NullLiteral{}, nil
	default:
		return nil, runtime.NewError("expected a pattern", tok.Line, tok.Column)
	}
}
