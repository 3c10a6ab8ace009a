package ast

import "github.com/OwlyNest/owlyc/internal/types"

type StorageClass uint8

const (
	StorageNone StorageClass = iota
	StorageAuto
	StorageRegister
	StorageStatic
	StorageExtern
)

type Sign uint8

const (
	SignDefault Sign = iota
	SignSigned
	SignUnsigned
)

type Length uint8

const (
	LengthDefault Length = iota
	LengthShort
	LengthLong
	LengthLongLong
)

// TypeSpec is the type specifier record the parser builds (spec section
// 4.1): accumulated storage class, sign, length, qualifier flags, and
// pointer depth, plus either a base name or a nested struct/union/enum
// declaration (spec section 3: "a base name... OR a nested declaration").
type TypeSpec struct {
	Loc Loc

	Storage      StorageClass
	Sign         Sign
	Length       Length
	Const        bool
	Volatile     bool
	Inline       bool
	Restrict     bool
	PointerDepth int

	// Exactly one of BaseName or NestedDecl is set once parsing completes;
	// if neither was given explicitly the parser defaults BaseName to "int".
	BaseName   string
	NestedDecl *Stmt // *SEnumDecl, *SStructDecl, or *SUnionDecl

	Resolved *types.Type
}
