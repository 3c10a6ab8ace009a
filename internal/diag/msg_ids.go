package diag

// ID catalogs the diagnostic kinds the semantic analyzer and lowering
// pipeline can raise, mirroring the purpose of esbuild's internal/logger
// msg_ids.go: a flat registry of stable names that tooling (and tests) can
// switch on without parsing message text. Spec section 7's "Error
// taxonomy" groups diagnostics the same way these constants are grouped
// below.
type ID uint16

const (
	NoID ID = iota

	// Lexical/syntactic.
	IDUnexpectedToken
	IDUnterminatedLiteral
	IDInvalidNumericLiteral

	// Declarations (P1, P2).
	IDDuplicateDeclaration
	IDUndefinedIdentifier
	IDUndefinedType
	IDIncompleteType
	IDRecursiveTypedef

	// Type checking (spec 4.3).
	IDTypeMismatch
	IDNarrowingConversion
	IDInvalidOperandType
	IDNotAnLValue
	IDNotAddressable
	IDArgumentCountMismatch
	IDArgumentTypeMismatch
	IDNotCallable
	IDNoSuchMember
	IDMemberOfNonAggregate
	IDNotAnArrayOrPointer
	IDVoidExpression

	// Control flow.
	IDBreakOutsideLoop
	IDContinueOutsideLoop
	IDReturnTypeMismatch
	IDMissingReturn

	// Constant-expression rules (SPEC_FULL section 12).
	IDNonConstantInitializer
	IDNonConstantEnumValue

	// Limits/propagation (spec section 7).
	IDErrorLimitReached
)

var idNames = map[ID]string{
	NoID: "",

	IDUnexpectedToken:       "unexpected-token",
	IDUnterminatedLiteral:   "unterminated-literal",
	IDInvalidNumericLiteral: "invalid-numeric-literal",

	IDDuplicateDeclaration: "duplicate-declaration",
	IDUndefinedIdentifier:  "undefined-identifier",
	IDUndefinedType:        "undefined-type",
	IDIncompleteType:       "incomplete-type",
	IDRecursiveTypedef:     "recursive-typedef",

	IDTypeMismatch:          "type-mismatch",
	IDNarrowingConversion:   "narrowing-conversion",
	IDInvalidOperandType:    "invalid-operand-type",
	IDNotAnLValue:           "not-an-lvalue",
	IDNotAddressable:        "not-addressable",
	IDArgumentCountMismatch: "argument-count-mismatch",
	IDArgumentTypeMismatch:  "argument-type-mismatch",
	IDNotCallable:           "not-callable",
	IDNoSuchMember:          "no-such-member",
	IDMemberOfNonAggregate:  "member-of-non-aggregate",
	IDNotAnArrayOrPointer:   "not-an-array-or-pointer",
	IDVoidExpression:        "void-expression",

	IDBreakOutsideLoop:    "break-outside-loop",
	IDContinueOutsideLoop: "continue-outside-loop",
	IDReturnTypeMismatch:  "return-type-mismatch",
	IDMissingReturn:       "missing-return",

	IDNonConstantInitializer: "non-constant-initializer",
	IDNonConstantEnumValue:   "non-constant-enum-value",

	IDErrorLimitReached: "error-limit-reached",
}

func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return "unknown"
}
