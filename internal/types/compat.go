package types

// Equal reports whether a and b are structurally identical, ignoring
// qualifiers. internal/lower's cast-opcode selection uses it to turn a
// cast between identical shapes into a no-op.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KBuiltin:
		return a.Builtin.Name == b.Builtin.Name
	case KPointer:
		return Equal(a.Pointer.Base, b.Pointer.Base)
	case KArray:
		return a.Array.Count == b.Array.Count && Equal(a.Array.Elem, b.Array.Elem)
	case KStruct:
		return a.Struct == b.Struct || sameTag(a.Struct.Decl, a.Struct.Name, b.Struct.Decl, b.Struct.Name)
	case KUnion:
		return a.Union == b.Union || sameTag(a.Union.Decl, a.Union.Name, b.Union.Decl, b.Union.Name)
	case KEnum:
		return a.Enum == b.Enum || sameTag(a.Enum.Decl, a.Enum.Name, b.Enum.Decl, b.Enum.Name)
	case KFunction:
		return functionsCompatible(a.Function, b.Function, Equal)
	default:
		return false
	}
}

func sameTag(declA interface{}, nameA string, declB interface{}, nameB string) bool {
	if declA != nil && declB != nil {
		return declA == declB
	}
	return nameA != "" && nameA == nameB
}

// Compatible implements the type-compatibility rules from spec section
// 4.3: identical pointer identity is always compatible; two builtin
// numeric types are compatible (the caller decides separately whether a
// narrowing warning is owed); pointers are compatible if their bases are
// compatible, with void* universally compatible; an enum is compatible
// with any integral builtin; struct/union/enum are compatible with each
// other iff they share a declaration or tag name; functions are
// compatible iff return and parameter types are pairwise compatible.
func Compatible(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	if a.Kind == KBuiltin && b.Kind == KBuiltin {
		return true
	}
	if (a.Kind == KEnum && b.Kind == KBuiltin && b.IsIntegral()) || (b.Kind == KEnum && a.Kind == KBuiltin && a.IsIntegral()) {
		return true
	}
	if a.Kind == KPointer && b.Kind == KPointer {
		if a.Pointer.Base.IsVoid() || b.Pointer.Base.IsVoid() {
			return true
		}
		return Compatible(a.Pointer.Base, b.Pointer.Base)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KStruct:
		return sameTag(a.Struct.Decl, a.Struct.Name, b.Struct.Decl, b.Struct.Name)
	case KUnion:
		return sameTag(a.Union.Decl, a.Union.Name, b.Union.Decl, b.Union.Name)
	case KEnum:
		return sameTag(a.Enum.Decl, a.Enum.Name, b.Enum.Decl, b.Enum.Name)
	case KArray:
		return Compatible(a.Array.Elem, b.Array.Elem)
	case KFunction:
		return functionsCompatible(a.Function, b.Function, Compatible)
	default:
		return false
	}
}

func functionsCompatible(a, b *Function, cmp func(a, b *Type) bool) bool {
	if a.Variadic != b.Variadic || len(a.Params) != len(b.Params) {
		return false
	}
	if !cmp(a.Return, b.Return) {
		return false
	}
	for i := range a.Params {
		if !cmp(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}

// IsNarrowing reports whether assigning a value of type from to a
// variable of type to loses precision: float-to-integer, or a wider
// builtin into a narrower one. Used to produce the narrowing warning from
// spec section 4.3 ("warn on narrowing (float→int, larger→smaller
// integer)").
func IsNarrowing(from, to *Type) bool {
	if from == nil || to == nil || from.Kind != KBuiltin || to.Kind != KBuiltin {
		return false
	}
	if from.Builtin.IsFloating && !to.Builtin.IsFloating {
		return true
	}
	if !from.Builtin.IsFloating && !to.Builtin.IsFloating {
		return from.Builtin.Size > to.Builtin.Size
	}
	if from.Builtin.IsFloating && to.Builtin.IsFloating {
		return from.Builtin.Size > to.Builtin.Size
	}
	return false
}
