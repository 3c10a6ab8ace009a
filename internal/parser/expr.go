package parser

import (
	"strconv"
	"strings"

	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/token"
)

// parseExpr parses the full expression grammar (spec section 4.1): the
// assignment family at the bottom, then right-associative ternary, then
// the binary operator ladder climbed by parseBinary.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignExpr()
}

func (p *Parser) parseAssignExpr() ast.Expr {
	left := p.parseTernary()

	t := p.ts.Peek()
	if op, ok := assignOpFromToken(t.Kind); ok {
		p.ts.Next()
		right := p.parseAssignExpr()
		return ast.Expr{Loc: left.Loc, Data: &ast.EBinary{Op: op, Left: left, Right: right}}
	}
	return left
}

// parseTernary implements `cond ? yes : no`, right-associative, sitting
// just above the binary ladder and just below assignment (spec section
// 4.1: "the ternary ?: has precedence 1 and is right-associative").
func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseBinary(ast.LLogicalOr)
	if p.at(token.TQuestion) {
		p.ts.Next()
		yes := p.parseAssignExpr()
		p.expect(token.TColon, "':'")
		no := p.parseAssignExpr()
		return ast.Expr{Loc: cond.Loc, Data: &ast.ETernary{Cond: cond, Yes: yes, No: no}}
	}
	return cond
}

// parseBinary is the precedence-climbing walker for the non-assignment,
// left-associative binary operators: logical-or down through
// multiplicative (spec section 4.1's levels 2 through 11, renumbered in
// internal/ast.Level as LLogicalOr..LMultiplicative).
func (p *Parser) parseBinary(minLevel ast.Level) ast.Expr {
	left := p.parseUnary()

	for {
		t := p.ts.Peek()
		op, ok := binaryOpFromToken(t.Kind)
		if !ok {
			return left
		}
		info := ast.BinOpTable[op]
		if info.level < minLevel {
			return left
		}
		p.ts.Next()
		right := p.parseBinary(info.level + 1) // every entry here is left-associative
		left = ast.Expr{Loc: left.Loc, Data: &ast.EBinary{Op: op, Left: left, Right: right}}
	}
}

// typeKeywordStarts is the closed set of tokens that make `(` begin a cast
// rather than a grouping (spec section 4.1: "Casts are parsed when `(` is
// followed by a type keyword; otherwise `(` begins a grouping").
// Identifiers are deliberately excluded: the spec does not ask the parser
// to track typedef names to disambiguate `(Foo)x`, so a parenthesized
// typedef name is parsed as a grouping, a documented simplification.
func typeKeywordStarts(k token.Kind) bool {
	switch k {
	case token.TVoid, token.TBool, token.TStruct, token.TUnion, token.TEnum,
		token.TConst, token.TVolatile, token.TInline, token.TRestrict,
		token.TSigned, token.TUnsigned, token.TShort, token.TLong,
		token.TAuto, token.TRegister, token.TStatic, token.TExtern:
		return true
	default:
		return false
	}
}

func (p *Parser) parseUnary() ast.Expr {
	t := p.ts.Peek()

	switch t.Kind {
	case token.TBang:
		p.ts.Next()
		v := p.parseUnary()
		return ast.Expr{Loc: t.Loc, Data: &ast.EUnary{Op: ast.UnOpNot, Value: v}}
	case token.TTilde:
		p.ts.Next()
		v := p.parseUnary()
		return ast.Expr{Loc: t.Loc, Data: &ast.EUnary{Op: ast.UnOpBitNot, Value: v}}
	case token.TPlus:
		p.ts.Next()
		v := p.parseUnary()
		return ast.Expr{Loc: t.Loc, Data: &ast.EUnary{Op: ast.UnOpPos, Value: v}}
	case token.TMinus:
		p.ts.Next()
		v := p.parseUnary()
		return ast.Expr{Loc: t.Loc, Data: &ast.EUnary{Op: ast.UnOpNeg, Value: v}}
	case token.TStar:
		p.ts.Next()
		v := p.parseUnary()
		return ast.Expr{Loc: t.Loc, Data: &ast.EUnary{Op: ast.UnOpDeref, Value: v}}
	case token.TAmp:
		p.ts.Next()
		v := p.parseUnary()
		return ast.Expr{Loc: t.Loc, Data: &ast.EUnary{Op: ast.UnOpAddr, Value: v}}
	case token.TPlusPlus:
		p.ts.Next()
		v := p.parseUnary()
		return ast.Expr{Loc: t.Loc, Data: &ast.EUnary{Op: ast.UnOpPreInc, Value: v}}
	case token.TMinusMinus:
		p.ts.Next()
		v := p.parseUnary()
		return ast.Expr{Loc: t.Loc, Data: &ast.EUnary{Op: ast.UnOpPreDec, Value: v}}
	case token.TSizeof:
		return p.parseSizeof()
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

func (p *Parser) parseSizeof() ast.Expr {
	loc := p.ts.Next().Loc // consume 'sizeof'

	if p.at(token.TLParen) && typeKeywordStarts(p.ts.PeekNext().Kind) {
		p.ts.Next() // consume '('
		ts := p.parseTypeSpec()
		p.expect(token.TRParen, "')'")
		return ast.Expr{Loc: loc, Data: &ast.ESizeof{TypeOperand: ts}}
	}

	operand := p.parseUnary()
	return ast.Expr{Loc: loc, Data: &ast.ESizeof{ExprOperand: &operand}}
}

func (p *Parser) parsePostfix(e ast.Expr) ast.Expr {
	for {
		t := p.ts.Peek()
		switch t.Kind {
		case token.TDot:
			p.ts.Next()
			name := p.expect(token.TIdentifier, "a member name")
			e = ast.Expr{Loc: e.Loc, Data: &ast.EMember{Object: e, Name: name.Lexeme}}
		case token.TArrow:
			p.ts.Next()
			name := p.expect(token.TIdentifier, "a member name")
			e = ast.Expr{Loc: e.Loc, Data: &ast.EMember{Object: e, Name: name.Lexeme, Arrow: true}}
		case token.TLBracket:
			p.ts.Next()
			idx := p.parseExpr()
			p.expect(token.TRBracket, "']'")
			e = ast.Expr{Loc: e.Loc, Data: &ast.EIndex{Array: e, Index: idx}}
		case token.TLParen:
			p.ts.Next()
			var args []ast.Expr
			if !p.at(token.TRParen) {
				for {
					args = append(args, p.parseAssignExpr())
					if !p.at(token.TComma) {
						break
					}
					p.ts.Next()
				}
			}
			p.expect(token.TRParen, "')'")
			e = ast.Expr{Loc: e.Loc, Data: &ast.ECall{Callee: e, Args: args}}
		case token.TPlusPlus:
			p.ts.Next()
			e = ast.Expr{Loc: e.Loc, Data: &ast.EUnary{Op: ast.UnOpPostInc, Value: e, Postfix: true}}
		case token.TMinusMinus:
			p.ts.Next()
			e = ast.Expr{Loc: e.Loc, Data: &ast.EUnary{Op: ast.UnOpPostDec, Value: e, Postfix: true}}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.ts.Peek()

	switch t.Kind {
	case token.TIntLiteral:
		p.ts.Next()
		v, suffix, err := parseIntLiteralTextWithSuffix(t.Lexeme)
		if err != nil {
			p.log.AddRangeErrorWithID(p.source, t.Range(), 0, err.Error())
		}
		return ast.Expr{Loc: t.Loc, Data: &ast.ELiteral{Kind: ast.LitInt, Raw: t.Lexeme, Int: v, Suffix: suffix}}
	case token.TFloatLiteral:
		p.ts.Next()
		v, suffix, err := parseFloatLiteralTextWithSuffix(t.Lexeme)
		if err != nil {
			p.log.AddRangeErrorWithID(p.source, t.Range(), 0, err.Error())
		}
		return ast.Expr{Loc: t.Loc, Data: &ast.ELiteral{Kind: ast.LitFloat, Raw: t.Lexeme, Float: v, Suffix: suffix}}
	case token.TCharLiteral:
		p.ts.Next()
		text := unquoteVerbatim(t.Lexeme, '\'')
		var code int64
		if len(text) > 0 {
			code = int64(text[0])
		}
		return ast.Expr{Loc: t.Loc, Data: &ast.ELiteral{Kind: ast.LitChar, Raw: t.Lexeme, Str: text, Int: code}}
	case token.TStringLiteral:
		p.ts.Next()
		text := unquoteVerbatim(t.Lexeme, '"')
		return ast.Expr{Loc: t.Loc, Data: &ast.ELiteral{Kind: ast.LitString, Raw: t.Lexeme, Str: text}}
	case token.TTrue:
		p.ts.Next()
		return ast.Expr{Loc: t.Loc, Data: &ast.ELiteral{Kind: ast.LitBool, Raw: t.Lexeme, Bool: true}}
	case token.TFalse:
		p.ts.Next()
		return ast.Expr{Loc: t.Loc, Data: &ast.ELiteral{Kind: ast.LitBool, Raw: t.Lexeme, Bool: false}}
	case token.TIdentifier:
		p.ts.Next()
		return ast.Expr{Loc: t.Loc, Data: &ast.EIdentifier{Name: t.Lexeme}}
	case token.TLParen:
		if typeKeywordStarts(p.ts.PeekNext().Kind) {
			p.ts.Next() // consume '('
			ts := p.parseTypeSpec()
			p.expect(token.TRParen, "')'")
			v := p.parseUnary()
			return ast.Expr{Loc: t.Loc, Data: &ast.ECast{Target: ts, Value: v}}
		}
		p.ts.Next() // consume '('
		v := p.parseExpr()
		p.expect(token.TRParen, "')'")
		return ast.Expr{Loc: t.Loc, Data: &ast.EGrouping{Value: v}}
	case token.TLBrace:
		return p.parseSetLiteral()
	default:
		p.fail(t.Range(), "unexpected token %q", t.Lexeme)
		panic("unreachable")
	}
}

func (p *Parser) parseSetLiteral() ast.Expr {
	loc := p.ts.Next().Loc // consume '{'
	var elements []ast.Expr
	if !p.at(token.TRBrace) {
		for {
			elements = append(elements, p.parseAssignExpr())
			if !p.at(token.TComma) {
				break
			}
			p.ts.Next()
		}
	}
	p.expect(token.TRBrace, "'}'")
	return ast.Expr{Loc: loc, Data: &ast.ESet{Elements: elements}}
}

// ---------------------------------------------------------------------
// Operator token -> AST op tables
// ---------------------------------------------------------------------

func assignOpFromToken(k token.Kind) (ast.BinOp, bool) {
	switch k {
	case token.TEquals:
		return ast.BinOpAssign, true
	case token.TPlusEquals:
		return ast.BinOpAddAssign, true
	case token.TMinusEquals:
		return ast.BinOpSubAssign, true
	case token.TStarEquals:
		return ast.BinOpMulAssign, true
	case token.TSlashEquals:
		return ast.BinOpDivAssign, true
	case token.TPercentEquals:
		return ast.BinOpModAssign, true
	case token.TAmpEquals:
		return ast.BinOpAndAssign, true
	case token.TPipeEquals:
		return ast.BinOpOrAssign, true
	case token.TCaretEquals:
		return ast.BinOpXorAssign, true
	case token.TShlEquals:
		return ast.BinOpShlAssign, true
	case token.TShrEquals:
		return ast.BinOpShrAssign, true
	default:
		return 0, false
	}
}

func binaryOpFromToken(k token.Kind) (ast.BinOp, bool) {
	switch k {
	case token.TPipePipe:
		return ast.BinOpLogicalOr, true
	case token.TAmpAmp:
		return ast.BinOpLogicalAnd, true
	case token.TPipe:
		return ast.BinOpBitwiseOr, true
	case token.TCaret:
		return ast.BinOpBitwiseXor, true
	case token.TAmp:
		return ast.BinOpBitwiseAnd, true
	case token.TEqualsEquals:
		return ast.BinOpEquals, true
	case token.TBangEquals:
		return ast.BinOpNotEquals, true
	case token.TLess:
		return ast.BinOpLessThan, true
	case token.TLessEquals:
		return ast.BinOpLessThanEquals, true
	case token.TGreater:
		return ast.BinOpGreaterThan, true
	case token.TGreaterEquals:
		return ast.BinOpGreaterThanEquals, true
	case token.TShl:
		return ast.BinOpShl, true
	case token.TShr:
		return ast.BinOpShr, true
	case token.TPlus:
		return ast.BinOpAdd, true
	case token.TMinus:
		return ast.BinOpSub, true
	case token.TStar:
		return ast.BinOpMul, true
	case token.TSlash:
		return ast.BinOpDiv, true
	case token.TPercent:
		return ast.BinOpMod, true
	default:
		return 0, false
	}
}

// ---------------------------------------------------------------------
// Literal text parsing (spec section 4.1: hex/binary/octal/decimal,
// fractional/exponent forms, trailing type-suffix letters)
// ---------------------------------------------------------------------

func parseIntLiteralText(lexeme string) (int64, error) {
	v, _, err := parseIntLiteralTextWithSuffix(lexeme)
	return v, err
}

func parseIntLiteralTextWithSuffix(lexeme string) (int64, string, error) {
	body, suffix := splitIntSuffix(lexeme)

	var v uint64
	var err error
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		v, err = strconv.ParseUint(body[2:], 16, 64)
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		v, err = strconv.ParseUint(body[2:], 2, 64)
	case len(body) > 1 && body[0] == '0':
		v, err = strconv.ParseUint(body[1:], 8, 64)
	default:
		v, err = strconv.ParseUint(body, 10, 64)
	}
	if err != nil {
		return 0, suffix, err
	}
	return int64(v), suffix, nil
}

func splitIntSuffix(lexeme string) (body string, suffix string) {
	i := len(lexeme)
	for i > 0 && isSuffixLetter(lexeme[i-1]) {
		i--
	}
	return lexeme[:i], lexeme[i:]
}

func isSuffixLetter(c byte) bool {
	switch c {
	case 'u', 'U', 'l', 'L':
		return true
	default:
		return false
	}
}

func parseFloatLiteralTextWithSuffix(lexeme string) (float64, string, error) {
	body := lexeme
	suffix := ""
	if n := len(body); n > 0 {
		switch body[n-1] {
		case 'f', 'F', 'l', 'L':
			suffix = body[n-1:]
			body = body[:n-1]
		}
	}
	v, err := strconv.ParseFloat(body, 64)
	return v, suffix, err
}

// unquoteVerbatim strips one layer of the given quote character from both
// ends without interpreting escape sequences (spec section 4.1: "Char/
// string literals are taken verbatim without escape interpretation; this
// is a documented limitation").
func unquoteVerbatim(lexeme string, quote byte) string {
	if len(lexeme) >= 2 && lexeme[0] == quote && lexeme[len(lexeme)-1] == quote {
		return lexeme[1 : len(lexeme)-1]
	}
	return lexeme
}
