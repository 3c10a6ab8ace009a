package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OwlyNest/owlyc/internal/config"
	"github.com/OwlyNest/owlyc/internal/exitcode"
	"github.com/OwlyNest/owlyc/internal/token"
	"github.com/OwlyNest/owlyc/pkg/compiler"
)

// cliFlags holds the command-line overrides that take precedence over
// whatever owly.toml (or config.Default()) already supplied, the same
// override-a-config-file role esbuild's flag parsing plays over
// BuildOptions zero values -- except here there are few enough flags
// that spf13/cobra's declarative registration replaces esbuild's
// hand-rolled pkg/cli/args.go parser outright.
type cliFlags struct {
	configPath   string
	emitIR       bool
	maxErrors    int
	werror       bool
	color        string
	pointerSize  uint32
	pointerAlign uint32
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "owlyc <tokens-file>",
		Short: "Parse, analyze, and lower an Owly token stream to SSA IR",
		Long: `owlyc reads a token stream persisted in the
TAG, "lexeme"; format (internal/token.ReadPersisted) and runs it
through the parser, semantic analyzer, and IR lowering pipeline.

Tokenizing source text is not owlyc's job: the parser is built against
a token.Stream contract so any conforming tokenizer can feed it. This
binary only knows how to read the persisted fixture format; production
use is expected to come from a library caller of pkg/compiler with its
own lexer.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "owly.toml", "path to an owly.toml project file")
	cmd.Flags().BoolVar(&flags.emitIR, "emit-ir", false, "print the lowered module's textual IR dump")
	cmd.Flags().IntVar(&flags.maxErrors, "max-errors", 0, "override the project's max_errors (0 keeps it)")
	cmd.Flags().BoolVar(&flags.werror, "werror", false, "treat warnings as errors")
	cmd.Flags().StringVar(&flags.color, "color", "", "override the project's color setting (auto | never | always)")
	cmd.Flags().Uint32Var(&flags.pointerSize, "pointer-size", 0, "override the project's pointer_size")
	cmd.Flags().Uint32Var(&flags.pointerAlign, "pointer-align", 0, "override the project's pointer_align")

	return cmd
}

func runBuild(cmd *cobra.Command, tokensPath string, flags *cliFlags) error {
	opts, err := config.Load(flags.configPath)
	if err != nil {
		return exitcode.Set(err, 1)
	}
	applyOverrides(&opts, flags)

	contents, err := os.ReadFile(tokensPath)
	if err != nil {
		return exitcode.Set(err, 1)
	}

	tokens, err := token.ReadPersisted(strings.NewReader(string(contents)))
	if err != nil {
		return exitcode.Set(fmt.Errorf("reading %s: %w", tokensPath, err), 1)
	}

	result := compiler.Compile(string(contents), token.NewSliceStream(tokens), compiler.Options{
		Options:    opts,
		Sourcefile: tokensPath,
	})

	printDiagnostics(cmd.OutOrStdout(), result.Warnings, "warning")
	printDiagnostics(cmd.ErrOrStderr(), result.Errors, "error")

	if result.Module == nil {
		return exitcode.Set(fmt.Errorf("%s: compilation failed", tokensPath), 1)
	}

	if opts.EmitIR {
		fmt.Fprint(cmd.OutOrStdout(), result.Module.String())
	}
	return nil
}

func applyOverrides(opts *config.Options, flags *cliFlags) {
	if flags.maxErrors != 0 {
		opts.MaxErrors = flags.maxErrors
	}
	if flags.werror {
		opts.TreatWarningsAsErrors = true
	}
	if flags.color != "" {
		opts.Color = config.ColorMode(flags.color)
	}
	if flags.pointerSize != 0 {
		opts.PointerSize = flags.pointerSize
	}
	if flags.pointerAlign != 0 {
		opts.PointerAlign = flags.pointerAlign
	}
	if flags.emitIR {
		opts.EmitIR = true
	}
}

func printDiagnostics(w io.Writer, msgs []compiler.Message, kind string) {
	for _, m := range msgs {
		if m.Location != nil {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", m.Location.File, m.Location.Line, m.Location.Column, kind, m.Text)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", kind, m.Text)
	}
}
