package parser

import (
	"testing"

	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/diag"
	"github.com/OwlyNest/owlyc/internal/token"
)

// toks is a small DSL for building a token.SliceStream inline, the same
// role esbuild's expectPrinted-style helpers play: keep test bodies
// readable without hand-tokenizing every fixture.
func toks(ts ...token.Token) *token.SliceStream {
	return token.NewSliceStream(ts)
}

func ident(s string) token.Token  { return token.Token{Kind: token.TIdentifier, Lexeme: s} }
func intLit(s string) token.Token { return token.Token{Kind: token.TIntLiteral, Lexeme: s} }
func kw(k token.Kind, s string) token.Token {
	return token.Token{Kind: k, Lexeme: s}
}

func parse(t *testing.T, stream token.Stream) (ast.Program, diag.Log) {
	t.Helper()
	log := diag.NewDeferLog()
	source := &diag.Source{PrettyPath: "<test>"}
	program, err := New(log, source, stream).Parse()
	if err != nil && !log.HasErrors() {
		t.Fatalf("Parse returned an error with no logged message: %v", err)
	}
	return program, log
}

func expectNoErrors(t *testing.T, log diag.Log) {
	t.Helper()
	if log.HasErrors() {
		for _, msg := range log.Done() {
			t.Errorf("unexpected diagnostic: %s", msg.Text)
		}
	}
}

func TestParseVarDecl(t *testing.T) {
	// var int x = 1;
	program, log := parse(t, toks(
		kw(token.TVar, "var"), ident("int"), ident("x"), kw(token.TEquals, "="), intLit("1"), kw(token.TSemicolon, ";"),
	))
	expectNoErrors(t, log)

	if len(program.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Stmts))
	}
	decl, ok := program.Stmts[0].Data.(*ast.SVarDecl)
	if !ok {
		t.Fatalf("expected *ast.SVarDecl, got %T", program.Stmts[0].Data)
	}
	if decl.Name != "x" {
		t.Errorf("name = %q, want %q", decl.Name, "x")
	}
	if decl.Type.BaseName != "int" {
		t.Errorf("base name = %q, want %q", decl.Type.BaseName, "int")
	}
	if decl.Init == nil {
		t.Fatalf("expected an initializer")
	}
	lit, ok := decl.Init.Data.(*ast.ELiteral)
	if !ok || lit.Int != 1 {
		t.Errorf("initializer = %#v, want literal 1", decl.Init.Data)
	}
}

func TestParsePointerDeclaration(t *testing.T) {
	// var int* p;
	program, log := parse(t, toks(
		kw(token.TVar, "var"), ident("int"), kw(token.TStar, "*"), ident("p"), kw(token.TSemicolon, ";"),
	))
	expectNoErrors(t, log)

	decl := program.Stmts[0].Data.(*ast.SVarDecl)
	if decl.Type.PointerDepth != 1 {
		t.Errorf("pointer depth = %d, want 1", decl.Type.PointerDepth)
	}
}

func TestParseUnsignedLongDefaultsToInt(t *testing.T) {
	// var unsigned long x;
	program, log := parse(t, toks(
		kw(token.TVar, "var"), kw(token.TUnsigned, "unsigned"), kw(token.TLong, "long"), ident("x"), kw(token.TSemicolon, ";"),
	))
	expectNoErrors(t, log)

	decl := program.Stmts[0].Data.(*ast.SVarDecl)
	if decl.Type.BaseName != "int" {
		t.Errorf("base name = %q, want the implicit %q", decl.Type.BaseName, "int")
	}
	if decl.Type.Sign != ast.SignUnsigned {
		t.Errorf("sign = %v, want unsigned", decl.Type.Sign)
	}
	if decl.Type.Length != ast.LengthLong {
		t.Errorf("length = %v, want long", decl.Type.Length)
	}
}

func TestParseDoubleLongUpgradesToLongLong(t *testing.T) {
	// var long long x;
	program, log := parse(t, toks(
		kw(token.TVar, "var"), kw(token.TLong, "long"), kw(token.TLong, "long"), ident("x"), kw(token.TSemicolon, ";"),
	))
	expectNoErrors(t, log)

	decl := program.Stmts[0].Data.(*ast.SVarDecl)
	if decl.Type.Length != ast.LengthLongLong {
		t.Errorf("length = %v, want long-long", decl.Type.Length)
	}
}

func TestParseConflictingSignRejected(t *testing.T) {
	// var signed unsigned x;
	_, log := parse(t, toks(
		kw(token.TVar, "var"), kw(token.TSigned, "signed"), kw(token.TUnsigned, "unsigned"), ident("x"), kw(token.TSemicolon, ";"),
	))
	if !log.HasErrors() {
		t.Fatalf("expected a diagnostic for conflicting sign specifiers")
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// var int x = 1 + 2 * 3;
	program, log := parse(t, toks(
		kw(token.TVar, "var"), ident("int"), ident("x"), kw(token.TEquals, "="),
		intLit("1"), kw(token.TPlus, "+"), intLit("2"), kw(token.TStar, "*"), intLit("3"),
		kw(token.TSemicolon, ";"),
	))
	expectNoErrors(t, log)

	decl := program.Stmts[0].Data.(*ast.SVarDecl)
	add, ok := decl.Init.Data.(*ast.EBinary)
	if !ok || add.Op != ast.BinOpAdd {
		t.Fatalf("expected a top-level '+', got %#v", decl.Init.Data)
	}
	mul, ok := add.Right.Data.(*ast.EBinary)
	if !ok || mul.Op != ast.BinOpMul {
		t.Fatalf("expected '*' to bind tighter than '+', got %#v", add.Right.Data)
	}
}

func TestParseTernaryIsRightAssociative(t *testing.T) {
	// var int x = a ? b : c ? d : e;
	program, log := parse(t, toks(
		kw(token.TVar, "var"), ident("int"), ident("x"), kw(token.TEquals, "="),
		ident("a"), kw(token.TQuestion, "?"), ident("b"), kw(token.TColon, ":"),
		ident("c"), kw(token.TQuestion, "?"), ident("d"), kw(token.TColon, ":"), ident("e"),
		kw(token.TSemicolon, ";"),
	))
	expectNoErrors(t, log)

	decl := program.Stmts[0].Data.(*ast.SVarDecl)
	outer, ok := decl.Init.Data.(*ast.ETernary)
	if !ok {
		t.Fatalf("expected *ast.ETernary, got %#v", decl.Init.Data)
	}
	if _, ok := outer.No.Data.(*ast.ETernary); !ok {
		t.Fatalf("expected the second ternary nested in the 'no' branch, got %#v", outer.No.Data)
	}
}

func TestParseCastRequiresTypeKeyword(t *testing.T) {
	// var int x = (unsigned)y;  -- a plain identifier after '(' never
	// starts a cast (see typeKeywordStarts); a type-qualifying keyword
	// like 'unsigned' does, even with no explicit base (defaults to int).
	program, log := parse(t, toks(
		kw(token.TVar, "var"), ident("int"), ident("x"), kw(token.TEquals, "="),
		kw(token.TLParen, "("), kw(token.TUnsigned, "unsigned"), kw(token.TRParen, ")"), ident("y"),
		kw(token.TSemicolon, ";"),
	))
	expectNoErrors(t, log)

	decl := program.Stmts[0].Data.(*ast.SVarDecl)
	cast, ok := decl.Init.Data.(*ast.ECast)
	if !ok {
		t.Fatalf("expected *ast.ECast, got %#v", decl.Init.Data)
	}
	if cast.Target.BaseName != "int" {
		t.Errorf("cast target = %q, want %q", cast.Target.BaseName, "int")
	}
	if cast.Target.Sign != ast.SignUnsigned {
		t.Errorf("cast target sign = %v, want unsigned", cast.Target.Sign)
	}
}

func TestParseParenthesizedIdentifierIsGrouping(t *testing.T) {
	// var int x = (y);
	program, log := parse(t, toks(
		kw(token.TVar, "var"), ident("int"), ident("x"), kw(token.TEquals, "="),
		kw(token.TLParen, "("), ident("y"), kw(token.TRParen, ")"),
		kw(token.TSemicolon, ";"),
	))
	expectNoErrors(t, log)

	decl := program.Stmts[0].Data.(*ast.SVarDecl)
	if _, ok := decl.Init.Data.(*ast.EGrouping); !ok {
		t.Fatalf("expected *ast.EGrouping, got %#v", decl.Init.Data)
	}
}

func TestParseIfElseIfElse(t *testing.T) {
	// if (a) { } else if (b) { } else { }
	program, log := parse(t, toks(
		kw(token.TIf, "if"), kw(token.TLParen, "("), ident("a"), kw(token.TRParen, ")"),
		kw(token.TLBrace, "{"), kw(token.TRBrace, "}"),
		kw(token.TElse, "else"), kw(token.TIf, "if"), kw(token.TLParen, "("), ident("b"), kw(token.TRParen, ")"),
		kw(token.TLBrace, "{"), kw(token.TRBrace, "}"),
		kw(token.TElse, "else"), kw(token.TLBrace, "{"), kw(token.TRBrace, "}"),
	))
	expectNoErrors(t, log)

	ifStmt := program.Stmts[0].Data.(*ast.SIf)
	if len(ifStmt.ElseIfs) != 1 {
		t.Fatalf("expected 1 else-if, got %d", len(ifStmt.ElseIfs))
	}
	if ifStmt.ElseBody == nil {
		t.Fatalf("expected a trailing else body")
	}
}

func TestParseFuncPrototype(t *testing.T) {
	// func int add(int a, int b);
	program, log := parse(t, toks(
		kw(token.TFunc, "func"), ident("int"), ident("add"), kw(token.TLParen, "("),
		ident("int"), ident("a"), kw(token.TComma, ","), ident("int"), ident("b"),
		kw(token.TRParen, ")"), kw(token.TSemicolon, ";"),
	))
	expectNoErrors(t, log)

	fn := program.Stmts[0].Data.(*ast.SFuncDecl)
	if !fn.Prototype {
		t.Errorf("expected a prototype declaration")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(fn.Params))
	}
}

func TestParseUnexpectedTokenAborts(t *testing.T) {
	_, log := parse(t, toks(kw(token.TRBrace, "}")))
	if !log.HasErrors() {
		t.Fatalf("expected a diagnostic for the stray '}'")
	}
}
