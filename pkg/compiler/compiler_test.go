package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OwlyNest/owlyc/internal/config"
	"github.com/OwlyNest/owlyc/internal/token"
)

func toks(ts ...token.Token) *token.SliceStream { return token.NewSliceStream(ts) }
func ident(s string) token.Token                { return token.Token{Kind: token.TIdentifier, Lexeme: s} }
func intLit(s string) token.Token               { return token.Token{Kind: token.TIntLiteral, Lexeme: s} }
func floatLit(s string) token.Token             { return token.Token{Kind: token.TFloatLiteral, Lexeme: s} }
func kw(k token.Kind, s string) token.Token      { return token.Token{Kind: k, Lexeme: s} }

func TestCompileFullPipelineProducesModule(t *testing.T) {
	// func int add(int a, int b) { return a + b; }
	ts := toks(
		kw(token.TFunc, "func"), ident("int"), ident("add"), kw(token.TLParen, "("),
		ident("int"), ident("a"), kw(token.TComma, ","), ident("int"), ident("b"), kw(token.TRParen, ")"),
		kw(token.TLBrace, "{"),
		kw(token.TReturn, "return"), ident("a"), kw(token.TPlus, "+"), ident("b"), kw(token.TSemicolon, ";"),
		kw(token.TRBrace, "}"),
	)

	result := Compile("func int add(int a, int b) { return a + b; }", ts, Options{Options: config.Default()})
	require.Empty(t, result.Errors)
	require.NotNil(t, result.Program)
	require.NotNil(t, result.Module)
	require.Len(t, result.Module.Functions, 1)
	assert.Equal(t, "add", result.Module.Functions[0].Name)
}

func TestCompileParseErrorStopsBeforeModule(t *testing.T) {
	// func int broken( { missing a closing paren and params
	ts := toks(
		kw(token.TFunc, "func"), ident("int"), ident("broken"), kw(token.TLParen, "("),
		kw(token.TLBrace, "{"), kw(token.TRBrace, "}"),
	)

	result := Compile("func int broken( { }", ts, Options{Options: config.Default()})
	assert.NotEmpty(t, result.Errors)
	assert.Nil(t, result.Module)
}

func TestCompileSemanticErrorLeavesModuleNil(t *testing.T) {
	// func void f() { return undefinedName; }
	ts := toks(
		kw(token.TFunc, "func"), ident("void"), ident("f"), kw(token.TLParen, "("), kw(token.TRParen, ")"),
		kw(token.TLBrace, "{"),
		kw(token.TReturn, "return"), ident("undefinedName"), kw(token.TSemicolon, ";"),
		kw(token.TRBrace, "}"),
	)

	result := Compile("func void f() { return undefinedName; }", ts, Options{Options: config.Default()})
	require.NotNil(t, result.Program)
	assert.Nil(t, result.Module)
	assert.NotEmpty(t, result.Errors)
	assert.Equal(t, 1, result.Errors[0].Location.Line)
}

func TestCompileEmitIRPopulatesTextualDump(t *testing.T) {
	ts := toks(
		kw(token.TFunc, "func"), ident("int"), ident("answer"), kw(token.TLParen, "("), kw(token.TRParen, ")"),
		kw(token.TLBrace, "{"),
		kw(token.TReturn, "return"), intLit("42"), kw(token.TSemicolon, ";"),
		kw(token.TRBrace, "}"),
	)

	opts := config.Default()
	opts.EmitIR = true
	result := Compile("func int answer() { return 42; }", ts, Options{Options: opts})
	require.NotNil(t, result.Module)
	assert.True(t, strings.Contains(result.IR, "func answer"))
}

func TestCompileTreatWarningsAsErrorsStopsBeforeLowering(t *testing.T) {
	// var int x = 3.5; -- a narrowing float-to-int initializer, a warning
	// rather than an error by default.
	ts := toks(
		kw(token.TVar, "var"), ident("int"), ident("x"), kw(token.TEquals, "="), floatLit("3.5"), kw(token.TSemicolon, ";"),
	)

	lenient := Compile("var int x = 3.5;", ts, Options{Options: config.Default()})
	require.NotEmpty(t, lenient.Warnings)
	assert.NotNil(t, lenient.Module)

	ts2 := toks(
		kw(token.TVar, "var"), ident("int"), ident("x"), kw(token.TEquals, "="), floatLit("3.5"), kw(token.TSemicolon, ";"),
	)
	strict := config.Default()
	strict.TreatWarningsAsErrors = true
	result := Compile("var int x = 3.5;", ts2, Options{Options: strict})
	assert.NotEmpty(t, result.Warnings)
	assert.Nil(t, result.Module)
}
