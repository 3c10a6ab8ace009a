package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/diag"
	"github.com/OwlyNest/owlyc/internal/types"
)

func newAnalyzer() (*Analyzer, diag.Log) {
	log := diag.NewDeferLog()
	source := &diag.Source{PrettyPath: "<test>"}
	reg := types.NewRegistry(8, 8)
	return New(log, source, reg), log
}

func namedType(name string) *ast.TypeSpec { return &ast.TypeSpec{BaseName: name} }

func intLiteral(v int64) *ast.Expr {
	return &ast.Expr{Data: &ast.ELiteral{Kind: ast.LitInt, Int: v}}
}

func TestAnalyzeVarDeclResolvesType(t *testing.T) {
	a, log := newAnalyzer()
	prog := &ast.Program{Stmts: []ast.Stmt{
		{Data: &ast.SVarDecl{Type: namedType("int"), Name: "x", Init: intLiteral(1)}},
	}}

	global := a.Analyze(prog)
	require.False(t, log.HasErrors())

	require.NotNil(t, prog.Stmts[0].ResolvedType)
	assert.Equal(t, "int", prog.Stmts[0].ResolvedType.Builtin.Name)

	sym := global.LookupCurrent("x")
	require.NotNil(t, sym)
	assert.Same(t, prog.Stmts[0].ResolvedType, sym.Type)
}

func TestNarrowingInitializerWarns(t *testing.T) {
	a, log := newAnalyzer()
	prog := &ast.Program{Stmts: []ast.Stmt{
		{Data: &ast.SVarDecl{Type: namedType("char"), Name: "c", Init: intLiteral(1000)}},
	}}

	a.Analyze(prog)
	require.False(t, log.HasErrors(), "narrowing is a warning, not an error")

	assert.True(t, hasDiagnostic(log, diag.IDNarrowingConversion))
}

func TestDuplicateDeclarationErrors(t *testing.T) {
	a, log := newAnalyzer()
	prog := &ast.Program{Stmts: []ast.Stmt{
		{Data: &ast.SVarDecl{Type: namedType("int"), Name: "x"}},
		{Data: &ast.SVarDecl{Type: namedType("int"), Name: "x"}},
	}}

	a.Analyze(prog)
	require.True(t, log.HasErrors())
	assert.True(t, hasDiagnostic(log, diag.IDDuplicateDeclaration))
}

func TestCallArgumentCountMismatch(t *testing.T) {
	a, log := newAnalyzer()
	fn := &ast.SFuncDecl{
		ReturnType: namedType("int"),
		Name:       "add",
		Prototype:  true,
		Params: []ast.SParam{
			{Type: namedType("int"), Name: "a"},
			{Type: namedType("int"), Name: "b"},
		},
	}
	call := ast.Expr{Data: &ast.ECall{
		Callee: ast.Expr{Data: &ast.EIdentifier{Name: "add"}},
		Args:   []ast.Expr{*intLiteral(1)},
	}}
	prog := &ast.Program{Stmts: []ast.Stmt{
		{Data: fn},
		{Data: &ast.SExprStmt{Value: call}},
	}}

	a.Analyze(prog)
	require.True(t, log.HasErrors())
	assert.True(t, hasDiagnostic(log, diag.IDArgumentCountMismatch))
}

func TestMemberAccessComputesOffset(t *testing.T) {
	a, log := newAnalyzer()
	structDecl := &ast.Stmt{Data: &ast.SStructDecl{
		Tag: "Point",
		Members: []ast.SVarDecl{
			{Type: namedType("int"), Name: "x"},
			{Type: namedType("int"), Name: "y"},
		},
	}}
	varDecl := &ast.SVarDecl{
		Type: &ast.TypeSpec{NestedDecl: structDecl},
		Name: "p",
	}
	member := ast.Expr{Data: &ast.EMember{
		Object: ast.Expr{Data: &ast.EIdentifier{Name: "p"}},
		Name:   "y",
	}}
	prog := &ast.Program{Stmts: []ast.Stmt{
		{Data: varDecl},
		{Data: &ast.SExprStmt{Value: member}},
	}}

	a.Analyze(prog)
	require.False(t, log.HasErrors())

	got := prog.Stmts[1].Data.(*ast.SExprStmt).Value.Data.(*ast.EMember)
	assert.Equal(t, uint32(4), got.Offset)
}

func TestBreakOutsideLoopErrors(t *testing.T) {
	a, log := newAnalyzer()
	prog := &ast.Program{Stmts: []ast.Stmt{
		{Data: &ast.SMisc{Kind: ast.MiscBreak}},
	}}

	a.Analyze(prog)
	require.True(t, log.HasErrors())
	assert.True(t, hasDiagnostic(log, diag.IDBreakOutsideLoop))
}

func hasDiagnostic(log diag.Log, id diag.ID) bool {
	for _, msg := range log.Done() {
		if msg.ID == id {
			return true
		}
	}
	return false
}
