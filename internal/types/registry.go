package types

// Registry is the type registry component from spec section 4.2: a small
// library of constructors for builtins, pointers, arrays, structs/unions/
// enums, and functions, parameterized by the target pointer width so that
// an implementation targeting cross-compilation can vary it (spec's Open
// Question on pointer width, resolved here as a Registry field instead of
// a compile-time constant).
type Registry struct {
	PointerSize  uint32
	PointerAlign uint32

	builtins map[string]*Builtin
}

// NewRegistry constructs a registry for a host with the given pointer
// width. Builtin integer/float sizes follow the common LP64/ILP32 widths;
// only the pointer width is a parameter, matching spec section 4.2's
// "Builtin sizes and alignments come from the host platform's native
// widths for the requested category."
func NewRegistry(pointerSize, pointerAlign uint32) *Registry {
	r := &Registry{PointerSize: pointerSize, PointerAlign: pointerAlign}
	r.builtins = map[string]*Builtin{
		"void":      {Name: "void", Size: 0, Align: 1},
		"bool":      {Name: "bool", Size: 1, Align: 1, IsSigned: false},
		"char":      {Name: "char", Size: 1, Align: 1, IsSigned: true},
		"short":     {Name: "short", Size: 2, Align: 2, IsSigned: true},
		"int":       {Name: "int", Size: 4, Align: 4, IsSigned: true},
		"long":      {Name: "long", Size: int64SizeForPlatform(pointerSize), Align: int64SizeForPlatform(pointerSize), IsSigned: true},
		"long long": {Name: "long long", Size: 8, Align: 8, IsSigned: true},
		"float":     {Name: "float", Size: 4, Align: 4, IsFloating: true, IsSigned: true},
		"double":    {Name: "double", Size: 8, Align: 8, IsFloating: true, IsSigned: true},
	}
	// Every signed builtin above has an unsigned counterpart with the same
	// size/alignment, which internal/sema picks when a TypeSpec's Sign is
	// unsigned.
	for _, name := range []string{"char", "short", "int", "long", "long long"} {
		b := *r.builtins[name]
		b.Name = "unsigned " + name
		b.IsSigned = false
		r.builtins[b.Name] = &b
	}
	return r
}

func int64SizeForPlatform(pointerSize uint32) uint32 {
	// "long" matches pointer width on the traditional LP64/ILP32 split.
	return pointerSize
}

// Builtin looks up (or, for the canonical spelling, constructs) the
// builtin named name. Unknown names return nil; the caller (the resolver
// in internal/sema) is responsible for reporting an unknown-type-name
// diagnostic.
func (r *Registry) Builtin(name string) *Type {
	b, ok := r.builtins[name]
	if !ok {
		return nil
	}
	return &Type{Kind: KBuiltin, Builtin: b}
}

// Pointer wraps base in a pointer type. Pointer size/alignment are fixed
// at the registry's native pointer width regardless of the pointee.
func (r *Registry) Pointer(base *Type) *Type {
	return &Type{Kind: KPointer, Pointer: &Pointer{Base: base, Size: r.PointerSize, Align: r.PointerAlign}}
}

// PointerDepth applies N pointer wraps in a row, per spec section 4.2 step
// 2 ("Apply pointer depth by wrapping N times in a pointer type").
func (r *Registry) PointerDepth(base *Type, depth int) *Type {
	t := base
	for i := 0; i < depth; i++ {
		t = r.Pointer(t)
	}
	return t
}

// Array constructs an array type from an element type and a list of
// constant dimensions, computing total element count and size per P6.
func (r *Registry) Array(elem *Type, dims []int64) *Type {
	count := int64(1)
	for _, d := range dims {
		count *= d
	}
	return &Type{Kind: KArray, Array: &Array{Elem: elem, Dims: append([]int64(nil), dims...), Count: count}}
}

// Function constructs a function type from a return type and ordered
// parameter types.
func (r *Registry) Function(ret *Type, params []*Type, variadic bool) *Type {
	return &Type{Kind: KFunction, Function: &Function{Return: ret, Params: append([]*Type(nil), params...), Variadic: variadic}}
}

// NewStruct lays out members in declaration order per P4: align the
// running offset up to each member's alignment before placing it, then
// round the final size up to the struct's own alignment. Zero-member
// structs have size 0 and alignment 1, per spec section 4.2.
func (r *Registry) NewStruct(name string, decl interface{}, members []Field) *Type {
	s := &Struct{Name: name, Decl: decl, Complete: true}
	var offset, align uint32 = 0, 1
	for i := range members {
		m := &members[i]
		memberAlign := m.Type.Align()
		if memberAlign == 0 {
			memberAlign = 1
		}
		offset = alignUp(offset, memberAlign)
		m.Offset = offset
		offset += m.Type.Size()
		if memberAlign > align {
			align = memberAlign
		}
	}
	s.Members = members
	s.Align = align
	s.Size = alignUp(offset, align)
	return &Type{Kind: KStruct, Struct: s}
}

// NewOpaqueStruct constructs an incomplete struct type for a forward
// declaration or a tag used before its body is seen; size/align are left
// at zero and Complete is false, so sizeof on it is rejected per spec
// section 4.3 ("incomplete type used where a complete one is required").
func (r *Registry) NewOpaqueStruct(name string, decl interface{}) *Type {
	return &Type{Kind: KStruct, Struct: &Struct{Name: name, Decl: decl, Complete: false}}
}

// NewUnion lays out members per P5: size is the max member size, alignment
// is the max member alignment, with a floor of 1 for an empty union.
func (r *Registry) NewUnion(name string, decl interface{}, members []Field) *Type {
	u := &Union{Name: name, Decl: decl, Members: members, Complete: true, Align: 1}
	for _, m := range members {
		if sz := m.Type.Size(); sz > u.Size {
			u.Size = sz
		}
		if al := m.Type.Align(); al > u.Align {
			u.Align = al
		}
	}
	return &Type{Kind: KUnion, Union: u}
}

func (r *Registry) NewOpaqueUnion(name string, decl interface{}) *Type {
	return &Type{Kind: KUnion, Union: &Union{Name: name, Decl: decl, Align: 1}}
}

// NewEnum constructs an enum type with a 4-byte signed integer base.
func (r *Registry) NewEnum(name string, decl interface{}) *Type {
	return &Type{Kind: KEnum, Enum: &Enum{Name: name, Decl: decl, Base: r.Builtin("int")}}
}

func alignUp(offset, align uint32) uint32 {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

// SizeOfPointer returns the fixed pointer size/alignment this registry
// was constructed with; internal/lower uses this to give every alloca'd
// stack slot's pointer type the target pointer width.
func (r *Registry) SizeOfPointer() (size, align uint32) {
	return r.PointerSize, r.PointerAlign
}
