// Package parser implements Owly's recursive-descent parser (spec section
// 4.1): one-token lookahead (occasionally two, via token.Stream.PeekNext),
// dispatching on the leading token of each statement and climbing operator
// precedence for expressions. It is grounded on the shape of esbuild's
// internal/js_parser/js_parser.go — a parser struct wrapping a log and a
// token source, with one parseXxx method per grammar production — adapted
// to Owly's much smaller C-like grammar.
package parser

import (
	"fmt"

	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/diag"
	"github.com/OwlyNest/owlyc/internal/token"
)

// Parser holds the state one parse of one source file needs: the
// diagnostic sink, the source record diagnostics point into, and the
// token stream (spec section 6's external collaborator contract).
type Parser struct {
	log    diag.Log
	source *diag.Source
	ts     token.Stream

	// panicked is set once an unexpected token has been reported. Parse
	// itself does not read it: fail's abortParse panic is what stops the
	// parse after the first syntax error.
	panicked bool
}

// abortParse is the internal unwind signal thrown by fail and recovered at
// the top of Parse, mirroring how js_parser uses panic(parseError) to
// unwind out of arbitrarily deep recursion on a syntax error.
type abortParse struct{}

// New constructs a Parser over an already-tokenized stream.
func New(log diag.Log, source *diag.Source, ts token.Stream) *Parser {
	return &Parser{log: log, source: source, ts: ts}
}

// Parse runs parse_program (spec section 4.1): repeated parse_block calls
// over top-level statements until end-of-input. It recovers from the
// single unexpected-token panic a parse can throw, returning whatever
// partial Program had been built (the log will have the error).
func (p *Parser) Parse() (program ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(abortParse); ok {
				err = fmt.Errorf("parse aborted after a syntax error")
				return
			}
			panic(r)
		}
	}()

	for !p.ts.IsEOF() {
		program.Stmts = append(program.Stmts, p.parseStmt())
	}
	return program, nil
}

func (p *Parser) fail(r ast.Range, format string, args ...interface{}) {
	p.panicked = true
	p.log.AddRangeErrorWithID(p.source, r, diag.IDUnexpectedToken, fmt.Sprintf(format, args...))
	panic(abortParse{})
}

func (p *Parser) expect(kind token.Kind, what string) token.Token {
	t := p.ts.Peek()
	if t.Kind != kind {
		p.fail(t.Range(), "expected %s but found %q", what, t.Lexeme)
	}
	return p.ts.Next()
}

func (p *Parser) at(kind token.Kind) bool {
	return p.ts.Peek().Kind == kind
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// parseStmt dispatches on the leading token, matching spec section 4.1's
// parse_block grammar dispatch table; it is used for both top-level
// declarations and nested block bodies.
func (p *Parser) parseStmt() ast.Stmt {
	t := p.ts.Peek()

	switch t.Kind {
	case token.TVar:
		return p.parseVarDecl()
	case token.TArr:
		return p.parseArrayDecl()
	case token.TFunc:
		return p.parseFuncDecl()
	case token.TReturn:
		return p.parseReturn()
	case token.TIf:
		return p.parseIf()
	case token.TWhile:
		return p.parseWhile()
	case token.TDo:
		return p.parseDoWhile()
	case token.TFor:
		return p.parseFor()
	case token.TSwitch:
		return p.parseSwitch()
	case token.TBreak:
		p.ts.Next()
		p.expect(token.TSemicolon, "';'")
		return ast.Stmt{Loc: t.Loc, Data: &ast.SMisc{Kind: ast.MiscBreak}}
	case token.TContinue:
		p.ts.Next()
		p.expect(token.TSemicolon, "';'")
		return ast.Stmt{Loc: t.Loc, Data: &ast.SMisc{Kind: ast.MiscContinue}}
	case token.TEnum:
		return p.parseEnumDecl()
	case token.TStruct:
		return p.parseStructDecl()
	case token.TUnion:
		return p.parseUnionDecl()
	case token.TTypedef:
		return p.parseTypedef()
	case token.TLBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseStmtList() []ast.Stmt {
	p.expect(token.TLBrace, "'{'")
	var stmts []ast.Stmt
	for !p.at(token.TRBrace) && !p.ts.IsEOF() {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(token.TRBrace, "'}'")
	return stmts
}

func (p *Parser) parseBlock() ast.Stmt {
	loc := p.ts.Peek().Loc
	return ast.Stmt{Loc: loc, Data: &ast.SBlock{Body: p.parseStmtList()}}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'var'
	typeSpec := p.parseTypeSpec()
	name := p.expect(token.TIdentifier, "an identifier")

	var init *ast.Expr
	if p.at(token.TEquals) {
		p.ts.Next()
		e := p.parseAssignExpr()
		init = &e
	}
	p.expect(token.TSemicolon, "';'")

	return ast.Stmt{Loc: loc, Data: &ast.SVarDecl{Type: typeSpec, Name: name.Lexeme, Init: init}}
}

// parseArrayDecl handles `arr <elem-type> <name>[dims...] [= {...}];`
// (spec section 4.1's dedicated `arr` leading token).
func (p *Parser) parseArrayDecl() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'arr'
	elemType := p.parseTypeSpec()
	name := p.expect(token.TIdentifier, "an identifier")

	var dims []int64
	for p.at(token.TLBracket) {
		p.ts.Next()
		n := p.parseConstIntLiteral()
		dims = append(dims, n)
		p.expect(token.TRBracket, "']'")
	}
	if len(dims) == 0 {
		t := p.ts.Peek()
		p.fail(t.Range(), "array declaration requires at least one dimension")
	}

	var init *ast.Expr
	if p.at(token.TEquals) {
		p.ts.Next()
		e := p.parseAssignExpr()
		init = &e
	}
	p.expect(token.TSemicolon, "';'")

	return ast.Stmt{Loc: loc, Data: &ast.SArrayDecl{ElemType: elemType, Name: name.Lexeme, Dims: dims, Init: init}}
}

func (p *Parser) parseConstIntLiteral() int64 {
	t := p.expect(token.TIntLiteral, "an integer constant")
	v, err := parseIntLiteralText(t.Lexeme)
	if err != nil {
		p.log.AddRangeErrorWithID(p.source, t.Range(), diag.IDInvalidNumericLiteral, err.Error())
	}
	return v
}

func (p *Parser) parseFuncDecl() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'func'
	returnType := p.parseTypeSpec()
	name := p.expect(token.TIdentifier, "an identifier")

	p.expect(token.TLParen, "'('")
	var params []ast.SParam
	// A lone `void` (keyword or identifier spelling) means no parameters.
	if (p.at(token.TVoid) || (p.at(token.TIdentifier) && p.ts.Peek().Lexeme == "void")) && p.ts.PeekNext().Kind == token.TRParen {
		p.ts.Next()
	}
	if !p.at(token.TRParen) {
		for {
			pt := p.parseTypeSpec()
			pname := p.expect(token.TIdentifier, "a parameter name")
			params = append(params, ast.SParam{Type: pt, Name: pname.Lexeme})
			if !p.at(token.TComma) {
				break
			}
			p.ts.Next()
		}
	}
	p.expect(token.TRParen, "')'")

	if p.at(token.TSemicolon) {
		p.ts.Next()
		return ast.Stmt{Loc: loc, Data: &ast.SFuncDecl{ReturnType: returnType, Name: name.Lexeme, Params: params, Prototype: true}}
	}

	body := p.parseStmtList()
	return ast.Stmt{Loc: loc, Data: &ast.SFuncDecl{ReturnType: returnType, Name: name.Lexeme, Params: params, Body: body}}
}

func (p *Parser) parseReturn() ast.Stmt {
	loc := p.ts.Next().Loc
	var value *ast.Expr
	if !p.at(token.TSemicolon) {
		e := p.parseExpr()
		value = &e
	}
	p.expect(token.TSemicolon, "';'")
	return ast.Stmt{Loc: loc, Data: &ast.SReturn{Value: value}}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	loc := p.ts.Peek().Loc
	e := p.parseExpr()
	p.expect(token.TSemicolon, "';'")
	return ast.Stmt{Loc: loc, Data: &ast.SExprStmt{Value: e}}
}

func (p *Parser) parseParenCond() ast.Expr {
	p.expect(token.TLParen, "'('")
	e := p.parseExpr()
	p.expect(token.TRParen, "')'")
	return e
}

func (p *Parser) parseIf() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'if'
	cond := p.parseParenCond()
	body := p.parseStmtList()

	var elseIfs []ast.ElseIf
	var elseBody []ast.Stmt
	for p.at(token.TElse) {
		p.ts.Next()
		if p.at(token.TIf) {
			p.ts.Next()
			eCond := p.parseParenCond()
			eBody := p.parseStmtList()
			elseIfs = append(elseIfs, ast.ElseIf{Cond: eCond, Body: eBody})
			continue
		}
		elseBody = p.parseStmtList()
		break
	}

	return ast.Stmt{Loc: loc, Data: &ast.SIf{Cond: cond, Body: body, ElseIfs: elseIfs, ElseBody: elseBody}}
}

func (p *Parser) parseWhile() ast.Stmt {
	loc := p.ts.Next().Loc
	cond := p.parseParenCond()
	body := p.parseStmtList()
	return ast.Stmt{Loc: loc, Data: &ast.SWhile{Cond: cond, Body: body}}
}

func (p *Parser) parseDoWhile() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'do'
	body := p.parseStmtList()
	p.expect(token.TWhile, "'while'")
	cond := p.parseParenCond()
	p.expect(token.TSemicolon, "';'")
	return ast.Stmt{Loc: loc, Data: &ast.SDoWhile{Cond: cond, Body: body}}
}

func (p *Parser) parseFor() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'for'
	p.expect(token.TLParen, "'('")

	var initStmt *ast.Stmt
	if !p.at(token.TSemicolon) {
		if p.at(token.TVar) {
			s := p.parseVarDecl()
			initStmt = &s
		} else {
			sloc := p.ts.Peek().Loc
			e := p.parseExpr()
			p.expect(token.TSemicolon, "';'")
			s := ast.Stmt{Loc: sloc, Data: &ast.SExprStmt{Value: e}}
			initStmt = &s
		}
	} else {
		p.ts.Next()
	}

	var cond *ast.Expr
	if !p.at(token.TSemicolon) {
		e := p.parseExpr()
		cond = &e
	}
	p.expect(token.TSemicolon, "';'")

	var inc *ast.Expr
	if !p.at(token.TRParen) {
		e := p.parseExpr()
		inc = &e
	}
	p.expect(token.TRParen, "')'")

	body := p.parseStmtList()
	return ast.Stmt{Loc: loc, Data: &ast.SFor{Init: initStmt, Cond: cond, Inc: inc, Body: body}}
}

func (p *Parser) parseSwitch() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'switch'
	scrutinee := p.parseParenCond()
	p.expect(token.TLBrace, "'{'")

	var cases []ast.SwitchCase
	var defaultBody []ast.Stmt
	hasDefault := false

	for !p.at(token.TRBrace) && !p.ts.IsEOF() {
		switch {
		case p.at(token.TCase):
			cloc := p.ts.Next().Loc
			e := p.parseExpr()
			p.expect(token.TColon, "':'")
			var body []ast.Stmt
			for !p.at(token.TCase) && !p.at(token.TDefault) && !p.at(token.TRBrace) && !p.ts.IsEOF() {
				body = append(body, p.parseStmt())
			}
			cases = append(cases, ast.SwitchCase{Loc: cloc, Expr: e, Body: body})
		case p.at(token.TDefault):
			p.ts.Next()
			p.expect(token.TColon, "':'")
			hasDefault = true
			for !p.at(token.TCase) && !p.at(token.TDefault) && !p.at(token.TRBrace) && !p.ts.IsEOF() {
				defaultBody = append(defaultBody, p.parseStmt())
			}
		default:
			t := p.ts.Peek()
			p.fail(t.Range(), "expected 'case' or 'default' but found %q", t.Lexeme)
		}
	}
	p.expect(token.TRBrace, "'}'")

	return ast.Stmt{Loc: loc, Data: &ast.SSwitch{Scrutinee: scrutinee, Cases: cases, DefaultBody: defaultBody, HasDefault: hasDefault}}
}

// parseEnumDeclBody parses everything after the 'enum' keyword up to (but
// not including) a terminating ';'. It is shared by the top-level
// statement form and the inline-type-specifier form (spec section 4.1(c)),
// which differ only in who consumes the trailing ';'.
func (p *Parser) parseEnumDeclBody(loc ast.Loc) ast.Stmt {
	var tag string
	if p.at(token.TIdentifier) {
		tag = p.ts.Next().Lexeme
	}

	if !p.at(token.TLBrace) {
		return ast.Stmt{Loc: loc, Data: &ast.SEnumDecl{Tag: tag, IsReference: true}}
	}

	p.ts.Next() // consume '{'
	var members []ast.EnumMember
	for !p.at(token.TRBrace) && !p.ts.IsEOF() {
		mloc := p.ts.Peek().Loc
		mname := p.expect(token.TIdentifier, "an enum member name")
		var value *ast.Expr
		if p.at(token.TEquals) {
			p.ts.Next()
			e := p.parseAssignExpr()
			value = &e
		}
		members = append(members, ast.EnumMember{Loc: mloc, Name: mname.Lexeme, Value: value})
		if !p.at(token.TComma) {
			break
		}
		p.ts.Next()
	}
	p.expect(token.TRBrace, "'}'")

	return ast.Stmt{Loc: loc, Data: &ast.SEnumDecl{Tag: tag, Members: members}}
}

func (p *Parser) parseEnumDecl() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'enum'
	s := p.parseEnumDeclBody(loc)
	p.expect(token.TSemicolon, "';'")
	return s
}

func (p *Parser) parseMemberList() []ast.SVarDecl {
	p.ts.Next() // consume '{'
	var members []ast.SVarDecl
	for !p.at(token.TRBrace) && !p.ts.IsEOF() {
		mt := p.parseTypeSpec()
		mname := p.expect(token.TIdentifier, "a member name")
		p.expect(token.TSemicolon, "';'")
		members = append(members, ast.SVarDecl{Type: mt, Name: mname.Lexeme})
	}
	p.expect(token.TRBrace, "'}'")
	return members
}

func (p *Parser) parseStructDeclBody(loc ast.Loc) ast.Stmt {
	var tag string
	if p.at(token.TIdentifier) {
		tag = p.ts.Next().Lexeme
	}
	if !p.at(token.TLBrace) {
		return ast.Stmt{Loc: loc, Data: &ast.SStructDecl{Tag: tag, IsReference: true}}
	}
	members := p.parseMemberList()
	return ast.Stmt{Loc: loc, Data: &ast.SStructDecl{Tag: tag, Members: members}}
}

func (p *Parser) parseStructDecl() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'struct'
	s := p.parseStructDeclBody(loc)
	p.expect(token.TSemicolon, "';'")
	return s
}

func (p *Parser) parseUnionDeclBody(loc ast.Loc) ast.Stmt {
	var tag string
	if p.at(token.TIdentifier) {
		tag = p.ts.Next().Lexeme
	}
	if !p.at(token.TLBrace) {
		return ast.Stmt{Loc: loc, Data: &ast.SUnionDecl{Tag: tag, IsReference: true}}
	}
	members := p.parseMemberList()
	return ast.Stmt{Loc: loc, Data: &ast.SUnionDecl{Tag: tag, Members: members}}
}

func (p *Parser) parseUnionDecl() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'union'
	s := p.parseUnionDeclBody(loc)
	p.expect(token.TSemicolon, "';'")
	return s
}

func (p *Parser) parseTypedef() ast.Stmt {
	loc := p.ts.Next().Loc // consume 'typedef'
	typeSpec := p.parseTypeSpec()
	name := p.expect(token.TIdentifier, "an identifier")
	p.expect(token.TSemicolon, "';'")
	return ast.Stmt{Loc: loc, Data: &ast.STypedef{Name: name.Lexeme, Type: typeSpec}}
}

// ---------------------------------------------------------------------
// Type specifiers (spec section 4.1)
// ---------------------------------------------------------------------

func (p *Parser) parseTypeSpec() *ast.TypeSpec {
	loc := p.ts.Peek().Loc
	spec := &ast.TypeSpec{Loc: loc}

	haveStorage := false
	haveSign := false
	longCount := 0

loop:
	for {
		t := p.ts.Peek()
		switch t.Kind {
		case token.TAuto, token.TRegister, token.TStatic, token.TExtern:
			if haveStorage {
				p.fail(t.Range(), "a declaration may have at most one storage class, found a second %q", t.Lexeme)
			}
			haveStorage = true
			spec.Storage = storageFromToken(t.Kind)
			p.ts.Next()
		case token.TConst:
			spec.Const = true
			p.ts.Next()
		case token.TVolatile:
			spec.Volatile = true
			p.ts.Next()
		case token.TInline:
			spec.Inline = true
			p.ts.Next()
		case token.TRestrict:
			spec.Restrict = true
			p.ts.Next()
		case token.TSigned:
			if haveSign {
				p.fail(t.Range(), "a declaration may have at most one of signed/unsigned")
			}
			haveSign = true
			spec.Sign = ast.SignSigned
			p.ts.Next()
		case token.TUnsigned:
			if haveSign {
				p.fail(t.Range(), "a declaration may have at most one of signed/unsigned")
			}
			haveSign = true
			spec.Sign = ast.SignUnsigned
			p.ts.Next()
		case token.TShort:
			if spec.Length != ast.LengthDefault {
				p.fail(t.Range(), "'short' cannot combine with 'long'")
			}
			spec.Length = ast.LengthShort
			p.ts.Next()
		case token.TLong:
			longCount++
			switch longCount {
			case 1:
				if spec.Length != ast.LengthDefault {
					p.fail(t.Range(), "'long' cannot combine with 'short'")
				}
				spec.Length = ast.LengthLong
			case 2:
				spec.Length = ast.LengthLongLong
			default:
				p.fail(t.Range(), "a declaration may have at most two 'long' specifiers")
			}
			p.ts.Next()
		default:
			break loop
		}
	}

	switch {
	case p.at(token.TVoid):
		spec.BaseName = p.ts.Next().Lexeme
	case p.at(token.TBool):
		spec.BaseName = p.ts.Next().Lexeme
	case p.at(token.TStruct):
		nloc := p.ts.Next().Loc
		s := p.parseStructDeclBody(nloc)
		spec.NestedDecl = &s
	case p.at(token.TUnion):
		nloc := p.ts.Next().Loc
		s := p.parseUnionDeclBody(nloc)
		spec.NestedDecl = &s
	case p.at(token.TEnum):
		nloc := p.ts.Next().Loc
		s := p.parseEnumDeclBody(nloc)
		spec.NestedDecl = &s
	case p.at(token.TIdentifier) && (p.ts.PeekNext().Kind == token.TIdentifier || p.ts.PeekNext().Kind == token.TStar):
		spec.BaseName = p.ts.Next().Lexeme
	default:
		spec.BaseName = "int"
	}

	for p.at(token.TStar) {
		p.ts.Next()
		spec.PointerDepth++
	}

	return spec
}

func storageFromToken(k token.Kind) ast.StorageClass {
	switch k {
	case token.TAuto:
		return ast.StorageAuto
	case token.TRegister:
		return ast.StorageRegister
	case token.TStatic:
		return ast.StorageStatic
	case token.TExtern:
		return ast.StorageExtern
	default:
		return ast.StorageNone
	}
}
