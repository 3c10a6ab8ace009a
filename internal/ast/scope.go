package ast

import "github.com/OwlyNest/owlyc/internal/types"

// ScopeKind tags what kind of construct introduced a Scope, mirroring
// js_ast.ScopeKind in esbuild's internal/js_ast/js_ast.go but trimmed to
// the constructs spec section 4.3 actually creates scopes for.
type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeStruct
	ScopeUnion
	ScopeEnum
)

// Scope is a node in the scope tree (spec section 3, "Symbol table"): a
// parent pointer, an ordered list of children, and an ordered list of
// symbols declared directly in it.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	Symbols  []*Symbol
}

// PushChild creates and links a new child scope, matching pass 1's
// "pushing/popping scopes exactly as the constructs demand" (spec section
// 4.3). The child is appended to Children in declaration order, which is
// also the order passes 2 and 3 must enter them in (spec section 9).
func (s *Scope) PushChild(kind ScopeKind) *Scope {
	child := &Scope{Kind: kind, Parent: s}
	s.Children = append(s.Children, child)
	return child
}

// Lookup searches s and then its ancestors for a symbol named name,
// implementing the "recursive lookup" half of spec section 2's symbol
// table description.
func (s *Scope) Lookup(name string) *Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym := scope.LookupCurrent(name); sym != nil {
			return sym
		}
	}
	return nil
}

// LookupCurrent searches only s itself, implementing the "current-scope
// lookup" half of spec section 2.
func (s *Scope) LookupCurrent(name string) *Symbol {
	for _, sym := range s.Symbols {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Declare adds sym to s, enforcing P1 ("at most one symbol in S directly
// bears the name N"). It returns the existing symbol (and false) on a
// collision so the caller can report a redefinition diagnostic; the
// caller is responsible for NOT adding the new declaration's symbol to the
// scope when this happens, per spec section 7 ("the second declaration is
// discarded").
func (s *Scope) Declare(sym *Symbol) (*Symbol, bool) {
	if existing := s.LookupCurrent(sym.Name); existing != nil {
		return existing, false
	}
	sym.Scope = s
	s.Symbols = append(s.Symbols, sym)
	return sym, true
}

// SymbolKind identifies what a Symbol denotes.
type SymbolKind uint8

const (
	SymVariable SymbolKind = iota
	SymFunction
	SymParameter
	SymTypedef
	SymStruct
	SymUnion
	SymEnum
	SymEnumMember
)

// Symbol is an entry in a Scope (spec section 3). Decl is a non-owning
// back-reference to the declaring AST node; the AST owns the node, the
// scope tree owns the Symbol, and the two point at each other without
// either side keeping the other alive by reference counting (spec section
// 9's "arena ownership ... back references are non-owning").
type Symbol struct {
	Kind  SymbolKind
	Name  string
	Decl  *Stmt
	Scope *Scope
	Type  *types.Type

	// Extra, kind-specific data.
	Params  []*Symbol // SymFunction: resolved parameter symbols, in order
	Members []*Symbol // SymEnum: its member symbols, in declaration order

	// IsConstant/ConstValue hold a SymEnumMember's resolved value (SPEC_FULL
	// section 12), so internal/lower can materialize a reference to it as
	// an immediate constant instead of a memory load.
	IsConstant bool
	ConstValue int64
}
