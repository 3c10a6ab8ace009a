package ast

// Loc is the 0-based byte offset of a token or node from the start of the
// source file, matching the position a token carries when it comes off the
// lexer. Kept as a plain offset rather than a line/column pair so that
// diagnostics can recompute line/column lazily against the source text, the
// way a clang-style error reporter does.
type Loc struct {
	Start int32
}

// Range extends a Loc with a length, covering the source text of a lexeme
// or a larger syntactic span (e.g. an entire expression).
type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}
