// Package diag is Owly's diagnostics package, adapted from an earlier
// snapshot of esbuild's own logging package
// (internal/logging/logging.go) kept in the retrieval pack alongside the
// current internal/logger/logger.go. Logging is designed to look and feel
// like clang's error format: errors are streamed as they happen, each
// carries the contents of the offending source line, and the count is
// limited by default (spec section 7, "Propagation policy").
package diag

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/OwlyNest/owlyc/internal/ast"
)

type Log struct {
	addMsg    func(Msg)
	hasErrors func() bool
	done      func() []Msg
}

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Note
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "?"
	}
}

// Msg is one diagnostic. ID ties it back to the taxonomy entry in
// msg_ids.go (spec section 7's "Error taxonomy"); it's NoID (whose name
// is the empty string) for ad hoc messages that don't correspond to a
// cataloged ID.
type Msg struct {
	Source *Source
	Start  int32
	Length int32
	Text   string
	Kind   MsgKind
	ID     ID
}

// Source is the file a diagnostic points into. Owly compiles one source
// at a time (spec section 5: "No state is shared between compilations"),
// so unlike esbuild's bundler-era Source there is no namespace/virtual-
// module concept here — just a path and its contents.
type Source struct {
	Index          uint32
	PrettyPath     string
	IdentifierName string
	Contents       string
}

func (s *Source) TextForRange(r ast.Range) string {
	return s.Contents[r.Loc.Start : r.Loc.Start+r.Len]
}

func plural(prefix string, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, prefix)
	}
	return fmt.Sprintf("%d %ss", count, prefix)
}

func errorAndWarningSummary(errors int, warnings int) string {
	switch {
	case errors == 0:
		return plural("warning", warnings)
	case warnings == 0:
		return plural("error", errors)
	default:
		return fmt.Sprintf("%s and %s",
			plural("warning", warnings),
			plural("error", errors))
	}
}

type TerminalInfo struct {
	IsTTY           bool
	UseColorEscapes bool
	Width           int
}

// StderrOptions controls a Log created by NewStderrLog. TreatWarningsAsErrors
// mirrors the same-named internal/config.Options field: it promotes every
// Warning to an Error for the purposes of HasErrors and the exit code,
// without changing how the message prints.
type StderrOptions struct {
	IncludeSource         bool
	MaxErrors             int
	Color                 StderrColor
	LogLevel              LogLevel
	TreatWarningsAsErrors bool
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

// NewStderrLog builds a Log that streams messages to stderr as they
// arrive, matching spec section 5's "semantic errors are accumulated on
// the context... reports them with a short message to diagnostic output."
func NewStderrLog(options StderrOptions) Log {
	var mutex sync.Mutex
	var msgs []Msg
	terminalInfo := GetTerminalInfo(os.Stderr)
	errors := 0
	warnings := 0
	errorLimitWasHit := false

	switch options.Color {
	case ColorNever:
		terminalInfo.UseColorEscapes = false
	case ColorAlways:
		terminalInfo.UseColorEscapes = SupportsColorEscapes
	}

	countsAsError := func(kind MsgKind) bool {
		return kind == Error || (kind == Warning && options.TreatWarningsAsErrors)
	}

	return Log{
		addMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)

			if errorLimitWasHit {
				return
			}

			if countsAsError(msg.Kind) {
				errors++
			} else if msg.Kind == Warning {
				warnings++
			}

			switch msg.Kind {
			case Error:
				if options.LogLevel <= LevelError {
					writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
				}
			case Warning:
				if options.LogLevel <= LevelWarning {
					writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
				}
			case Note:
				if options.LogLevel <= LevelInfo {
					writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
				}
			}

			if options.MaxErrors != 0 && errors >= options.MaxErrors {
				errorLimitWasHit = true
				if options.LogLevel <= LevelError {
					fmt.Fprintf(os.Stderr, "%s reached (a MaxErrors of 0 disables the limit)\n", errorAndWarningSummary(errors, warnings))
				}
			}
		},
		hasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return errors > 0
		},
		done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()

			if !errorLimitWasHit && options.LogLevel <= LevelInfo && (warnings != 0 || errors != 0) {
				fmt.Fprintf(os.Stderr, "%s\n", errorAndWarningSummary(errors, warnings))
			}

			return msgs
		},
	}
}

// NewDeferLog builds a Log that collects messages silently, for tests and
// for library callers of pkg/compiler that want to format diagnostics
// themselves instead of letting them go straight to stderr.
func NewDeferLog() Log {
	var msgs []Msg
	var mutex sync.Mutex
	var hasErrors bool

	return Log{
		addMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		hasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			return msgs
		},
	}
}

const colorReset = "\033[0m"
const colorRed = "\033[31m"
const colorGreen = "\033[32m"
const colorMagenta = "\033[35m"
const colorBold = "\033[1m"
const colorResetBold = "\033[0;1m"

func (msg Msg) String(options StderrOptions, terminalInfo TerminalInfo) string {
	kind := msg.Kind.String()
	kindColor := colorRed
	if msg.Kind == Warning {
		kindColor = colorMagenta
	}

	if msg.Source == nil {
		if terminalInfo.UseColorEscapes {
			return fmt.Sprintf("%s%s%s: %s%s%s\n",
				colorBold, kindColor, kind,
				colorResetBold, msg.Text,
				colorReset)
		}
		return fmt.Sprintf("%s: %s\n", kind, msg.Text)
	}

	if !options.IncludeSource {
		if terminalInfo.UseColorEscapes {
			return fmt.Sprintf("%s%s: %s%s: %s%s%s\n",
				colorBold, msg.Source.PrettyPath,
				kindColor, kind,
				colorResetBold, msg.Text,
				colorReset)
		}
		return fmt.Sprintf("%s: %s: %s\n", msg.Source.PrettyPath, kind, msg.Text)
	}

	d := detailStruct(msg, terminalInfo)

	if terminalInfo.UseColorEscapes {
		return fmt.Sprintf("%s%s:%d:%d: %s%s: %s%s\n%s%s%s%s%s%s\n%s%s%s%s\n",
			colorBold, d.Path,
			d.Line,
			d.Column,
			kindColor, d.Kind,
			colorResetBold, d.Message,
			colorReset, d.SourceBefore, colorGreen, d.SourceMarked, colorReset, d.SourceAfter,
			colorGreen, d.Indent, d.Marker,
			colorReset)
	}

	return fmt.Sprintf("%s:%d:%d: %s: %s\n%s\n%s%s\n",
		d.Path, d.Line, d.Column, d.Kind, d.Message, d.Source, d.Indent, d.Marker)
}

type MsgDetail struct {
	Path    string
	Line    int
	Column  int
	Kind    string
	Message string

	Source       string
	SourceBefore string
	SourceMarked string
	SourceAfter  string

	Indent string
	Marker string
}

func ComputeLineAndColumn(text string) (lineCount int, columnCount, lastLineStart int) {
	var prevCodePoint rune

	for i, codePoint := range text {
		switch codePoint {
		case '\n':
			lastLineStart = i + 1
			if prevCodePoint != '\r' {
				lineCount++
			}
		case '\r', ' ', ' ':
			lastLineStart = i + 1
		}
		prevCodePoint = codePoint
	}

	columnCount = len(text) - lastLineStart
	return
}

func detailStruct(msg Msg, terminalInfo TerminalInfo) MsgDetail {
	contents := msg.Source.Contents
	lineCount, columnCount, lineStart := ComputeLineAndColumn(contents[0:msg.Start])
	lineEnd := len(contents)

loop:
	for i, codePoint := range contents[lineStart:] {
		switch codePoint {
		case '\r', '\n', ' ', ' ':
			lineEnd = lineStart + i
			break loop
		}
	}

	spacesPerTab := 2
	lineText := renderTabStops(contents[lineStart:lineEnd], spacesPerTab)
	indent := strings.Repeat(" ", len(renderTabStops(contents[lineStart:msg.Start], spacesPerTab)))
	marker := "^"
	markerStart := len(indent)
	markerEnd := len(indent)

	if msg.Length > 0 {
		markerEnd = len(renderTabStops(contents[lineStart:msg.Start+msg.Length], spacesPerTab))
	}

	if markerStart > len(lineText) {
		markerStart = len(lineText)
	}
	if markerEnd > len(lineText) {
		markerEnd = len(lineText)
	}
	if markerEnd < markerStart {
		markerEnd = markerStart
	}

	width := terminalInfo.Width
	if width < 1 {
		width = 80
	}
	if len(lineText) > width {
		sliceStart := (markerStart + markerEnd - width) / 2
		if sliceStart > markerStart-width/5 {
			sliceStart = markerStart - width/5
		}
		if sliceStart < 0 {
			sliceStart = 0
		}
		if sliceStart > len(lineText)-width {
			sliceStart = len(lineText) - width
		}
		sliceEnd := sliceStart + width

		slicedLine := lineText[sliceStart:sliceEnd]
		markerStart -= sliceStart
		markerEnd -= sliceStart
		if markerStart < 0 {
			markerStart = 0
		}
		if markerEnd > len(slicedLine) {
			markerEnd = len(slicedLine)
		}

		if len(slicedLine) > 3 && sliceStart > 0 {
			slicedLine = "..." + slicedLine[3:]
			if markerStart < 3 {
				markerStart = 3
			}
		}
		if len(slicedLine) > 3 && sliceEnd < len(lineText) {
			slicedLine = slicedLine[:len(slicedLine)-3] + "..."
			if markerEnd > len(slicedLine)-3 {
				markerEnd = len(slicedLine) - 3
			}
			if markerEnd < markerStart {
				markerEnd = markerStart
			}
		}

		indent = strings.Repeat(" ", markerStart)
		lineText = slicedLine
	}

	if markerEnd-markerStart > 1 {
		marker = strings.Repeat("~", markerEnd-markerStart)
	}

	return MsgDetail{
		Path:    msg.Source.PrettyPath,
		Line:    lineCount + 1,
		Column:  columnCount,
		Kind:    msg.Kind.String(),
		Message: msg.Text,

		Source:       lineText,
		SourceBefore: lineText[:markerStart],
		SourceMarked: lineText[markerStart:markerEnd],
		SourceAfter:  lineText[markerEnd:],

		Indent: indent,
		Marker: marker,
	}
}

func renderTabStops(withTabs string, spacesPerTab int) string {
	if !strings.ContainsRune(withTabs, '\t') {
		return withTabs
	}

	withoutTabs := strings.Builder{}
	count := 0

	for _, c := range withTabs {
		if c == '\t' {
			spaces := spacesPerTab - count%spacesPerTab
			for i := 0; i < spaces; i++ {
				withoutTabs.WriteRune(' ')
				count++
			}
		} else {
			withoutTabs.WriteRune(c)
			count++
		}
	}

	return withoutTabs.String()
}

func (log Log) HasErrors() bool {
	return log.hasErrors()
}

func (log Log) Done() []Msg {
	return log.done()
}

func (log Log) AddError(source *Source, loc ast.Loc, text string) {
	log.addMsg(Msg{Source: source, Start: loc.Start, Text: text, Kind: Error})
}

func (log Log) AddErrorWithID(source *Source, loc ast.Loc, id ID, text string) {
	log.addMsg(Msg{Source: source, Start: loc.Start, Text: text, Kind: Error, ID: id})
}

func (log Log) AddWarning(source *Source, loc ast.Loc, text string) {
	log.addMsg(Msg{Source: source, Start: loc.Start, Text: text, Kind: Warning})
}

func (log Log) AddWarningWithID(source *Source, loc ast.Loc, id ID, text string) {
	log.addMsg(Msg{Source: source, Start: loc.Start, Text: text, Kind: Warning, ID: id})
}

func (log Log) AddRangeError(source *Source, r ast.Range, text string) {
	log.addMsg(Msg{Source: source, Start: r.Loc.Start, Length: r.Len, Text: text, Kind: Error})
}

func (log Log) AddRangeWarning(source *Source, r ast.Range, text string) {
	log.addMsg(Msg{Source: source, Start: r.Loc.Start, Length: r.Len, Text: text, Kind: Warning})
}

func (log Log) AddRangeErrorWithID(source *Source, r ast.Range, id ID, text string) {
	log.addMsg(Msg{Source: source, Start: r.Loc.Start, Length: r.Len, Text: text, Kind: Error, ID: id})
}

func (log Log) AddRangeWarningWithID(source *Source, r ast.Range, id ID, text string) {
	log.addMsg(Msg{Source: source, Start: r.Loc.Start, Length: r.Len, Text: text, Kind: Warning, ID: id})
}
