// Package compiler is Owly's public entry point, the same role
// pkg/api.Transform plays for esbuild: one Options/Result struct pair
// and a single top-level function wiring the pipeline stages together
// so a caller (cmd/owlyc, or any other Go program embedding this
// module) never has to touch internal/parser, internal/sema, or
// internal/lower directly.
//
// Unlike Transform(input string, options TransformOptions), Compile
// takes a token.Stream alongside the source text instead of tokenizing
// internally: the tokenizer is an external collaborator (spec section
// 6), so turning sourceText into tokens is the caller's job, typically
// via internal/token.ReadPersisted or a hand-written lexer satisfying
// token.Stream. sourceText is still required so diagnostics can quote
// the offending line.
package compiler

import (
	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/config"
	"github.com/OwlyNest/owlyc/internal/diag"
	"github.com/OwlyNest/owlyc/internal/ir"
	"github.com/OwlyNest/owlyc/internal/lower"
	"github.com/OwlyNest/owlyc/internal/parser"
	"github.com/OwlyNest/owlyc/internal/sema"
	"github.com/OwlyNest/owlyc/internal/token"
	"github.com/OwlyNest/owlyc/internal/types"
)

// Location pinpoints one diagnostic in the source it came from: the
// print-agnostic sibling of diag.Msg, which is built to stream straight
// to a terminal rather than hand back to a library caller.
type Location struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

// Message is one diagnostic, stripped of the color/terminal-width
// concerns diag.Msg.String carries.
type Message struct {
	Text     string
	Location *Location
}

// Options is Compile's per-call input: config.Options supplies the
// project-wide defaults (pointer width, error policy, whether to emit
// IR), and Sourcefile names the input for diagnostics.
type Options struct {
	config.Options
	Sourcefile string
}

// Result is Compile's output, mirroring pkg/api.TransformResult's
// Errors/Warnings-plus-payload shape. Program and Module are nil once a
// stage fails to produce one: a parse error leaves both nil, a semantic
// error leaves Module nil.
type Result struct {
	Errors   []Message
	Warnings []Message

	Program *ast.Program
	Module  *ir.Module

	// IR holds ir.Module.String()'s textual dump when Options.EmitIR is
	// set; empty otherwise, including when Module is nil.
	IR string
}

// Compile runs parse -> analyze -> lower over ts, stopping early (with
// Module left nil) at the first stage that reports an error so later
// stages never have to handle a program sema already rejected.
func Compile(sourceText string, ts token.Stream, options Options) Result {
	prettyPath := options.Sourcefile
	if prettyPath == "" {
		prettyPath = "<input>"
	}

	opts := options.Options
	if opts.PointerSize == 0 {
		opts = config.Default()
	}

	log := diag.NewDeferLog()
	source := &diag.Source{PrettyPath: prettyPath, IdentifierName: prettyPath, Contents: sourceText}

	program, err := parser.New(log, source, ts).Parse()
	result := Result{
		Errors:   collectMessages(log, diag.Error),
		Warnings: collectMessages(log, diag.Warning),
	}
	if err != nil {
		return result
	}
	result.Program = &program

	reg := types.NewRegistry(opts.PointerSize, opts.PointerAlign)
	sema.New(log, source, reg).Analyze(&program)

	result.Errors = collectMessages(log, diag.Error)
	result.Warnings = collectMessages(log, diag.Warning)
	if log.HasErrors() || (opts.TreatWarningsAsErrors && len(result.Warnings) > 0) {
		return result
	}

	mod := lower.New(reg).LowerProgram(&program, prettyPath)
	result.Module = mod
	if opts.EmitIR {
		result.IR = mod.String()
	}
	return result
}

func collectMessages(log diag.Log, kind diag.MsgKind) []Message {
	var out []Message
	for _, msg := range log.Done() {
		if msg.Kind != kind {
			continue
		}
		out = append(out, toMessage(msg))
	}
	return out
}

func toMessage(msg diag.Msg) Message {
	m := Message{Text: msg.Text}
	if msg.Source == nil {
		return m
	}

	contents := msg.Source.Contents
	start := int(msg.Start)
	if start > len(contents) {
		start = len(contents)
	}
	lineCount, columnCount, lineStart := diag.ComputeLineAndColumn(contents[:start])

	lineEnd := len(contents)
	for i := lineStart; i < len(contents); i++ {
		if c := contents[i]; c == '\n' || c == '\r' {
			lineEnd = i
			break
		}
	}

	m.Location = &Location{
		File:     msg.Source.PrettyPath,
		Line:     lineCount + 1,
		Column:   columnCount,
		Length:   int(msg.Length),
		LineText: contents[lineStart:lineEnd],
	}
	return m
}
