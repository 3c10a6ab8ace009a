package token

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/OwlyNest/owlyc/internal/ast"
)

// keywords maps a lexeme to its keyword Kind; anything else lexed as an
// identifier-shaped word stays TIdentifier. The persisted reader below
// uses it to map upper-case tag names to kinds; KeywordOrIdentifier
// exposes it to other packages, though no package in this module calls
// that function.
var keywords = map[string]Kind{
	"var":      TVar,
	"func":     TFunc,
	"return":   TReturn,
	"if":       TIf,
	"else":     TElse,
	"while":    TWhile,
	"do":       TDo,
	"for":      TFor,
	"switch":   TSwitch,
	"case":     TCase,
	"default":  TDefault,
	"break":    TBreak,
	"continue": TContinue,
	"enum":     TEnum,
	"struct":   TStruct,
	"union":    TUnion,
	"typedef":  TTypedef,
	"arr":      TArr,
	"sizeof":   TSizeof,
	"void":     TVoid,
	"bool":     TBool,
	"true":     TTrue,
	"false":    TFalse,
	"const":    TConst,
	"volatile": TVolatile,
	"inline":   TInline,
	"restrict": TRestrict,
	"auto":     TAuto,
	"register": TRegister,
	"static":   TStatic,
	"extern":   TExtern,
	"signed":   TSigned,
	"unsigned": TUnsigned,
	"short":    TShort,
	"long":     TLong,
}

// KeywordOrIdentifier resolves a raw identifier lexeme to its keyword Kind,
// or TIdentifier if it isn't a reserved word.
func KeywordOrIdentifier(lexeme string) Kind {
	if k, ok := keywords[lexeme]; ok {
		return k
	}
	return TIdentifier
}

// tagNames is the inverse of a closed set of persisted-format tag
// spellings. Unknown tag strings map to TUnknown, matching spec section
// 6: "unknown tag strings map to the unknown tag."
var tagNames = buildTagNames()

func buildTagNames() map[string]Kind {
	m := map[string]Kind{
		"EOF": TEOF, "IDENTIFIER": TIdentifier, "INT": TIntLiteral,
		"FLOAT": TFloatLiteral, "CHAR": TCharLiteral, "STRING": TStringLiteral,
		"LPAREN": TLParen, "RPAREN": TRParen, "LBRACE": TLBrace, "RBRACE": TRBrace,
		"LBRACKET": TLBracket, "RBRACKET": TRBracket, "SEMICOLON": TSemicolon,
		"COMMA": TComma, "COLON": TColon, "QUESTION": TQuestion, "DOT": TDot,
		"ARROW": TArrow, "ELLIPSIS": TEllipsis,
		"PLUS": TPlus, "MINUS": TMinus, "STAR": TStar, "SLASH": TSlash,
		"PERCENT": TPercent, "AMP": TAmp, "PIPE": TPipe, "CARET": TCaret,
		"TILDE": TTilde, "BANG": TBang, "LESS": TLess, "GREATER": TGreater,
		"LESSEQUALS": TLessEquals, "GREATEREQUALS": TGreaterEquals,
		"EQUALSEQUALS": TEqualsEquals, "BANGEQUALS": TBangEquals,
		"AMPAMP": TAmpAmp, "PIPEPIPE": TPipePipe, "SHL": TShl, "SHR": TShr,
		"PLUSPLUS": TPlusPlus, "MINUSMINUS": TMinusMinus,
		"EQUALS": TEquals, "PLUSEQUALS": TPlusEquals, "MINUSEQUALS": TMinusEquals,
		"STAREQUALS": TStarEquals, "SLASHEQUALS": TSlashEquals,
		"PERCENTEQUALS": TPercentEquals, "AMPEQUALS": TAmpEquals,
		"PIPEEQUALS": TPipeEquals, "CARETEQUALS": TCaretEquals,
		"SHLEQUALS": TShlEquals, "SHREQUALS": TShrEquals,
	}
	for word, kind := range keywords {
		m[strings.ToUpper(word)] = kind
	}
	return m
}

// ReadPersisted parses the reference implementation's test fixture format:
// one record per line, `TAG, "lexeme";`, terminated by end-of-file (spec
// section 6). There is no off-the-shelf parser for this one-off,
// three-field-per-line record shape proportionate to pull in — it's a
// dozen lines of bufio.Scanner, so it stays on the standard library rather
// than reaching for a general-purpose parsing library to read it.
func ReadPersisted(r io.Reader) ([]Token, error) {
	var tokens []Token
	scanner := bufio.NewScanner(r)
	lineNo := 0
	var offset int32
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		offset += int32(len(scanner.Text())) + 1
		if line == "" {
			continue
		}
		tok, err := parsePersistedLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		tok.Loc = ast.Loc{Start: offset - int32(len(line)) - 1}
		tokens = append(tokens, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func parsePersistedLine(line string) (Token, error) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	commaIdx := strings.Index(line, ",")
	if commaIdx < 0 {
		return Token{}, fmt.Errorf("malformed persisted token record %q", line)
	}
	tag := strings.TrimSpace(line[:commaIdx])
	rest := strings.TrimSpace(line[commaIdx+1:])
	lexeme, err := unquote(rest)
	if err != nil {
		return Token{}, fmt.Errorf("malformed persisted token record %q: %w", line, err)
	}
	kind, ok := tagNames[tag]
	if !ok {
		kind = TUnknown
	}
	return Token{Kind: kind, Lexeme: lexeme}, nil
}

func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("expected a quoted lexeme, got %q", s)
	}
	return s[1 : len(s)-1], nil
}
