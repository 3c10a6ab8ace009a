// Package config is Owly's compile-options layer: the same knobs
// pkg/api.BuildOptions/TransformOptions bundle for esbuild (target,
// error limit, log level, color), but for Owly these are read from an
// optional owly.toml project file via github.com/BurntSushi/toml
// instead of threaded entirely through CLI flags, since a C-like
// compiler's pointer width and warning policy are project-wide settings
// more than per-invocation ones.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/OwlyNest/owlyc/internal/diag"
)

// ColorMode mirrors diag.StderrColor but is spelled as a TOML-friendly
// string ("auto" | "never" | "always") rather than an enum, since a text
// config file shouldn't need to know the numeric encoding.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorNever  ColorMode = "never"
	ColorAlways ColorMode = "always"
)

// Options is the project-wide configuration layer: the default target
// and diagnostics policy every compilation in a project should share,
// loaded once from owly.toml and then individually overridable by
// command-line flags (cmd/owlyc does that override).
type Options struct {
	// PointerSize/PointerAlign pick the target Registry's pointer width
	// (spec section 4.2's cross-compilation Open Question). Default to
	// an LP64 host: 8-byte pointers, 8-byte aligned.
	PointerSize  uint32 `toml:"pointer_size"`
	PointerAlign uint32 `toml:"pointer_align"`

	// MaxErrors is an error limit with the meaning of
	// diag.StderrOptions.MaxErrors (0 disables the cap). compiler.Compile
	// collects diagnostics in a deferred log and does not apply it.
	MaxErrors int `toml:"max_errors"`

	// TreatWarningsAsErrors promotes every warning to an error for the
	// purposes of HasErrors and the process exit code.
	TreatWarningsAsErrors bool `toml:"treat_warnings_as_errors"`

	// IncludeSource has the meaning of diag.StderrOptions.IncludeSource
	// (print the offending source line under a message). Neither
	// compiler.Compile nor cmd/owlyc reads it; owlyc prints only
	// file:line:column and the message text.
	IncludeSource bool `toml:"include_source"`

	Color ColorMode `toml:"color"`

	// EmitIR requests a textual dump of the lowered module alongside the
	// compile result, for --emit-ir and for tests that want to assert on
	// IR shape without reaching into internal/ir directly.
	EmitIR bool `toml:"emit_ir"`
}

// Default returns the options a fresh project gets with no owly.toml at
// all: an LP64 host target, a 20-error limit, and source-annotated
// diagnostics -- the same defaults esbuild's own CLI falls back to when
// no flag overrides a BuildOptions field.
func Default() Options {
	return Options{
		PointerSize:   8,
		PointerAlign:  8,
		MaxErrors:     20,
		IncludeSource: true,
		Color:         ColorAuto,
	}
}

// Load reads owly.toml at path, merging it over Default(). A missing
// file is not an error -- most invocations have no project file at all
// and should just get the defaults -- but a present, malformed one is.
func Load(path string) (Options, error) {
	opts := Default()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return opts, nil
		}
		return Options{}, fmt.Errorf("config: %w", err)
	}

	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return opts, nil
}

// StderrColor translates the TOML-friendly ColorMode into the enum
// diag.NewStderrLog expects.
func (o Options) StderrColor() diag.StderrColor {
	switch o.Color {
	case ColorNever:
		return diag.ColorNever
	case ColorAlways:
		return diag.ColorAlways
	default:
		return diag.ColorIfTerminal
	}
}
