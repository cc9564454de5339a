// Package parser implements a recursive-descent/precedence-climbing
// parser producing the ast package's node shapes: a Lexer feeding
// tokens to a Parser that tracks a current/peek token pair.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/go-bob/internal/ast"
	"github.com/cwbudde/go-bob/internal/lexer"
	"github.com/cwbudde/go-bob/internal/token"
)

// Parser turns a token stream into a slice of top-level ast.Stmt.
type Parser struct {
	l         *lexer.Lexer
	cur, peek token.Token
	errs      []error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) Errors() []error { return p.errs }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.Next()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) expect(k token.Kind) token.Token {
	if !p.curIs(k) {
		p.errorf("expected %s, got %s %q", k, p.cur.Kind, p.cur.Lexeme)
		return p.cur
	}
	tok := p.cur
	p.advance()
	return tok
}

func (p *Parser) errorf(format string, args ...any) {
	p.errs = append(p.errs, fmt.Errorf("%s: %s", p.cur.Pos, fmt.Sprintf(format, args...)))
}

func (p *Parser) base() ast.Base { return ast.NewBase(p.cur.Pos) }

// ParseProgram parses every top-level statement until EOF.
func (p *Parser) ParseProgram() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.curIs(token.EOF) {
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// ---- Statements ----

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.VAR:
		return p.parseVarDecl()
	case token.FUNC:
		return p.parseFuncDecl()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.FOR:
		return p.parseFor()
	case token.FOREACH:
		return p.parseForeach()
	case token.BREAK:
		b := p.base()
		p.advance()
		p.expect(token.SEMICOLON)
		return &ast.Break{Base: b}
	case token.CONTINUE:
		b := p.base()
		p.advance()
		p.expect(token.SEMICOLON)
		return &ast.Continue{Base: b}
	case token.CLASS:
		return p.parseClass()
	case token.EXTENSION:
		return p.parseExtension()
	case token.TRY:
		return p.parseTry()
	case token.THROW:
		return p.parseThrow()
	case token.IMPORT:
		return p.parseImport()
	case token.FROM:
		return p.parseFromImport()
	case token.SEMICOLON:
		p.advance()
		return nil
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	b := p.base()
	p.expect(token.LBRACE)
	var stmts []ast.Stmt
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expect(token.RBRACE)
	return &ast.Block{Base: b, Stmts: stmts}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	b := p.base()
	p.advance() // 'var'
	name := p.expect(token.IDENT).Lexeme
	var init ast.Expr
	if p.curIs(token.ASSIGN) {
		p.advance()
		init = p.parseExpr(precAssign)
	}
	p.expect(token.SEMICOLON)
	return &ast.VarDecl{Base: b, Name: name, Init: init}
}

func (p *Parser) parseParamList() []string {
	p.expect(token.LPAREN)
	var params []string
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		params = append(params, p.expect(token.IDENT).Lexeme)
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseFuncDecl() ast.Stmt {
	b := p.base()
	p.advance() // 'func'
	name := p.expect(token.IDENT).Lexeme
	params := p.parseParamList()
	body := p.parseBlock()
	return &ast.FuncDecl{Base: b, Name: name, Params: params, Body: body.Stmts}
}

func (p *Parser) parseReturn() ast.Stmt {
	b := p.base()
	p.advance()
	var val ast.Expr
	if !p.curIs(token.SEMICOLON) {
		val = p.parseExpr(precAssign)
		if call, ok := val.(*ast.Call); ok {
			call.IsTailCall = true
		}
	}
	p.expect(token.SEMICOLON)
	return &ast.Return{Base: b, Val: val}
}

func (p *Parser) parseIf() ast.Stmt {
	b := p.base()
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpr(precAssign)
	p.expect(token.RPAREN)
	then := p.parseStmt()
	var els ast.Stmt
	if p.curIs(token.ELSE) {
		p.advance()
		els = p.parseStmt()
	}
	return &ast.If{Base: b, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() ast.Stmt {
	b := p.base()
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpr(precAssign)
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.While{Base: b, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Stmt {
	b := p.base()
	p.advance()
	body := p.parseStmt()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr(precAssign)
	p.expect(token.RPAREN)
	p.expect(token.SEMICOLON)
	return &ast.DoWhile{Base: b, Body: body, Cond: cond}
}

func (p *Parser) parseFor() ast.Stmt {
	b := p.base()
	p.advance()
	p.expect(token.LPAREN)
	var initStmt ast.Stmt
	if !p.curIs(token.SEMICOLON) {
		if p.curIs(token.VAR) {
			initStmt = p.parseVarDecl()
		} else {
			initStmt = p.parseExprStmt()
		}
	} else {
		p.advance()
	}
	var cond ast.Expr
	if !p.curIs(token.SEMICOLON) {
		cond = p.parseExpr(precAssign)
	}
	p.expect(token.SEMICOLON)
	var post ast.Stmt
	if !p.curIs(token.RPAREN) {
		postExpr := p.parseExpr(precAssign)
		post = &ast.ExprStmt{Base: ast.NewBase(postExpr.Pos()), X: postExpr}
	}
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.For{Base: b, Init: initStmt, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseForeach() ast.Stmt {
	b := p.base()
	p.advance()
	p.expect(token.LPAREN)
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.IN)
	coll := p.parseExpr(precAssign)
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.Foreach{Base: b, Name: name, Coll: coll, Body: body}
}

func (p *Parser) parseClass() ast.Stmt {
	b := p.base()
	p.advance()
	name := p.expect(token.IDENT).Lexeme
	parent := ""
	if p.curIs(token.EXTENDS) {
		p.advance()
		parent = p.expect(token.IDENT).Lexeme
	}
	p.expect(token.LBRACE)
	var fields []ast.FieldInit
	var methods []*ast.FuncDecl
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.FUNC) {
			fd := p.parseFuncDecl().(*ast.FuncDecl)
			methods = append(methods, fd)
			continue
		}
		if p.curIs(token.VAR) {
			p.advance()
			fname := p.expect(token.IDENT).Lexeme
			var init ast.Expr
			if p.curIs(token.ASSIGN) {
				p.advance()
				init = p.parseExpr(precAssign)
			}
			p.expect(token.SEMICOLON)
			fields = append(fields, ast.FieldInit{Name: fname, Init: init})
			continue
		}
		p.errorf("unexpected token in class body: %s", p.cur.Kind)
		p.advance()
	}
	p.expect(token.RBRACE)
	return &ast.Class{Base: b, Name: name, Parent: parent, Fields: fields, Methods: methods}
}

func (p *Parser) parseExtension() ast.Stmt {
	b := p.base()
	p.advance()
	target := p.expect(token.IDENT).Lexeme
	p.expect(token.LBRACE)
	var methods []*ast.FuncDecl
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		fd := p.parseFuncDecl().(*ast.FuncDecl)
		methods = append(methods, fd)
	}
	p.expect(token.RBRACE)
	return &ast.Extension{Base: b, Target: target, Methods: methods}
}

func (p *Parser) parseTry() ast.Stmt {
	b := p.base()
	p.advance()
	tryBlock := p.parseBlock()
	var catchVar string
	var catchBlock *ast.Block
	if p.curIs(token.CATCH) {
		p.advance()
		p.expect(token.LPAREN)
		catchVar = p.expect(token.IDENT).Lexeme
		p.expect(token.RPAREN)
		catchBlock = p.parseBlock()
	}
	var finallyBlock *ast.Block
	if p.curIs(token.FINALLY) {
		p.advance()
		finallyBlock = p.parseBlock()
	}
	return &ast.Try{Base: b, TryBlock: tryBlock, CatchVar: catchVar, CatchBlock: catchBlock, FinallyBlock: finallyBlock}
}

func (p *Parser) parseThrow() ast.Stmt {
	b := p.base()
	p.advance()
	val := p.parseExpr(precAssign)
	p.expect(token.SEMICOLON)
	return &ast.Throw{Base: b, Val: val}
}

// parseModuleSpec accepts either a bare identifier (name spec) or a
// string literal (path spec, e.g. "./lib/util.bob") as the module
// specifier of an import statement.
func (p *Parser) parseModuleSpec() string {
	if p.curIs(token.STRING) {
		spec := p.cur.Lexeme
		p.advance()
		return spec
	}
	return p.expect(token.IDENT).Lexeme
}

func (p *Parser) parseImport() ast.Stmt {
	b := p.base()
	p.advance()
	name := p.parseModuleSpec()
	alias := ""
	if p.curIs(token.AS) {
		p.advance()
		alias = p.expect(token.IDENT).Lexeme
	}
	p.expect(token.SEMICOLON)
	return &ast.Import{Base: b, Name: name, Alias: alias}
}

func (p *Parser) parseFromImport() ast.Stmt {
	b := p.base()
	p.advance()
	module := p.parseModuleSpec()
	p.expect(token.IMPORT)
	if p.curIs(token.STAR) {
		p.advance()
		p.expect(token.SEMICOLON)
		return &ast.FromImport{Base: b, Module: module, All: true}
	}
	var items []ast.FromImportItem
	for {
		item := ast.FromImportItem{Name: p.expect(token.IDENT).Lexeme}
		if p.curIs(token.AS) {
			p.advance()
			item.Alias = p.expect(token.IDENT).Lexeme
		}
		items = append(items, item)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.SEMICOLON)
	return &ast.FromImport{Base: b, Module: module, Items: items}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	b := p.base()
	expr := p.parseExpr(precAssign)
	p.expect(token.SEMICOLON)
	return &ast.ExprStmt{Base: b, X: expr}
}

// ---- Expressions: precedence-climbing ----

type precedence int

const (
	precNone precedence = iota
	precAssign
	precTernary
	precOr
	precAnd
	precEquality
	precComparison
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

func precedenceOf(k token.Kind) precedence {
	switch k {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NEQ:
		return precEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return precComparison
	case token.PIPE:
		return precBitOr
	case token.CARET:
		return precBitXor
	case token.AMP:
		return precBitAnd
	case token.SHL, token.SHR:
		return precShift
	case token.PLUS, token.MINUS:
		return precAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return precMultiplicative
	default:
		return precNone
	}
}

func isAssignOp(k token.Kind) bool {
	switch k {
	case token.ASSIGN, token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ,
		token.PERCENTEQ, token.AMPEQ, token.PIPEEQ, token.CARETEQ, token.SHLEQ, token.SHREQ:
		return true
	}
	return false
}

func (p *Parser) parseExpr(minPrec precedence) ast.Expr {
	left := p.parseUnary()

	for {
		if isAssignOp(p.cur.Kind) && minPrec <= precAssign {
			op := p.cur.Kind
			switch t := left.(type) {
			case *ast.Var:
				b := p.base()
				p.advance()
				val := p.parseExpr(precAssign)
				return &ast.Assign{Base: b, Name: t.Name, Op: op, Val: val}
			case *ast.ArrayIndex:
				b := p.base()
				p.advance()
				val := p.parseExpr(precAssign)
				return &ast.ArrayAssign{Base: b, Collection: t.Collection, Index: t.Index, Val: wrapCompound(op, left, val)}
			case *ast.Property:
				b := p.base()
				p.advance()
				val := p.parseExpr(precAssign)
				return &ast.PropertyAssign{Base: b, Object: t.Object, Name: t.Name, Val: wrapCompound(op, left, val)}
			}
			break
		}
		if p.curIs(token.QUESTION) && minPrec <= precTernary {
			b := p.base()
			p.advance()
			then := p.parseExpr(precAssign)
			p.expect(token.COLON)
			els := p.parseExpr(precTernary)
			left = &ast.Ternary{Base: b, Cond: left, Then: then, Else: els}
			continue
		}
		prec := precedenceOf(p.cur.Kind)
		if prec == precNone || prec < minPrec {
			break
		}
		op := p.cur.Kind
		b := p.base()
		p.advance()
		right := p.parseExpr(prec + 1)
		left = &ast.Binary{Base: b, Left: left, Op: op, Right: right}
	}
	return left
}

// wrapCompound converts `target += value` into `target + value` for
// ArrayAssign/PropertyAssign targets, which (unlike Assign) don't carry
// an Op field — the read-modify-write happens via the evaluator instead
// for simple Assign, but array/property compound assignment is
// desugared here at parse time since there is no dedicated AST op slot.
func wrapCompound(op token.Kind, target ast.Expr, val ast.Expr) ast.Expr {
	if op == token.ASSIGN {
		return val
	}
	bin := binOpForCompound(op)
	return &ast.Binary{Base: ast.NewBase(target.Pos()), Left: target, Op: bin, Right: val}
}

func binOpForCompound(op token.Kind) token.Kind {
	switch op {
	case token.PLUSEQ:
		return token.PLUS
	case token.MINUSEQ:
		return token.MINUS
	case token.STAREQ:
		return token.STAR
	case token.SLASHEQ:
		return token.SLASH
	case token.PERCENTEQ:
		return token.PERCENT
	case token.AMPEQ:
		return token.AMP
	case token.PIPEEQ:
		return token.PIPE
	case token.CARETEQ:
		return token.CARET
	case token.SHLEQ:
		return token.SHL
	case token.SHREQ:
		return token.SHR
	default:
		return token.ASSIGN
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Kind {
	case token.MINUS, token.BANG, token.TILDE:
		op := p.cur.Kind
		b := p.base()
		p.advance()
		operand := p.parseUnary()
		return &ast.Unary{Base: b, Op: op, Operand: operand}
	case token.INC, token.DEC:
		op := p.cur.Kind
		b := p.base()
		p.advance()
		operand := p.parseUnary()
		return &ast.Increment{Base: b, Operand: operand, Op: op, IsPrefix: true}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.DOT:
			p.advance()
			name := p.expect(token.IDENT).Lexeme
			expr = &ast.Property{Base: ast.NewBase(expr.Pos()), Object: expr, Name: name}
		case token.LBRACKET:
			b := p.base()
			p.advance()
			idx := p.parseExpr(precAssign)
			p.expect(token.RBRACKET)
			expr = &ast.ArrayIndex{Base: b, Collection: expr, Index: idx}
		case token.LPAREN:
			b := p.base()
			p.advance()
			var args []ast.Expr
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				args = append(args, p.parseExpr(precAssign))
				if p.curIs(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.RPAREN)
			expr = &ast.Call{Base: b, Callee: expr, Args: args}
		case token.INC, token.DEC:
			op := p.cur.Kind
			b := p.base()
			p.advance()
			expr = &ast.Increment{Base: b, Operand: expr, Op: op, IsPrefix: false}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	b := p.base()
	switch p.cur.Kind {
	case token.INTEGER, token.BININTEGER, token.NUMBER, token.STRING:
		lit := &ast.Literal{Base: b, Kind: p.cur.Kind, Value: p.cur.Lexeme}
		p.advance()
		return lit
	case token.TRUE, token.FALSE, token.NONE:
		lit := &ast.Literal{Base: b, Kind: p.cur.Kind, Value: p.cur.Lexeme}
		p.advance()
		return lit
	case token.IDENT:
		name := p.cur.Lexeme
		p.advance()
		return &ast.Var{Base: b, Name: name}
	case token.SUPER:
		p.advance()
		return &ast.Var{Base: b, Name: "super"}
	case token.THIS:
		p.advance()
		return &ast.Var{Base: b, Name: "this"}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr(precAssign)
		p.expect(token.RPAREN)
		return &ast.Grouping{Base: b, Inner: inner}
	case token.LBRACKET:
		p.advance()
		var elems []ast.Expr
		for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
			elems = append(elems, p.parseExpr(precAssign))
			if p.curIs(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RBRACKET)
		return &ast.ArrayLiteral{Base: b, Elements: elems}
	case token.LBRACE:
		return p.parseDictLiteral(b)
	case token.FUNC:
		return p.parseFunctionExpr(b)
	default:
		p.errorf("unexpected token in expression: %s %q", p.cur.Kind, p.cur.Lexeme)
		p.advance()
		return &ast.Literal{Base: b, Kind: token.NONE, Value: "none"}
	}
}

func (p *Parser) parseDictLiteral(b ast.Base) ast.Expr {
	p.expect(token.LBRACE)
	var entries []ast.DictEntry
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		key := p.expect(token.STRING).Lexeme
		p.expect(token.COLON)
		val := p.parseExpr(precAssign)
		entries = append(entries, ast.DictEntry{Key: key, Value: val})
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return &ast.DictLiteral{Base: b, Entries: entries}
}

func (p *Parser) parseFunctionExpr(b ast.Base) ast.Expr {
	p.advance() // 'func'
	params := p.parseParamList()
	body := p.parseBlock()
	return &ast.FunctionExpr{Base: b, Params: params, Body: body.Stmts}
}

// ParseIntLiteral converts a lexed integer literal (decimal or `0b`
// binary) to an int64, reporting overflow via the ok flag so callers
// can promote to BigInt.
func ParseIntLiteral(kind token.Kind, lexeme string) (int64, bool) {
	if kind == token.BININTEGER {
		s := strings.TrimPrefix(strings.TrimPrefix(lexeme, "0b"), "0B")
		s = strings.ReplaceAll(s, "_", "")
		n, err := strconv.ParseInt(s, 2, 64)
		return n, err == nil
	}
	s := strings.ReplaceAll(lexeme, "_", "")
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
