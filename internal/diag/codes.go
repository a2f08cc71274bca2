package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Семантические
	SemaInfo                   Code = 3000
	SemaDuplicateSymbol        Code = 3002
	SemaShadowSymbol           Code = 3004
	SemaUnresolvedSymbol       Code = 3005
	SemaTypeMismatch           Code = 3010
	SemaNotCallable            Code = 3011
	SemaUnknownMember          Code = 3012
	SemaPrivateMember          Code = 3013
	SemaImmutableAssign        Code = 3014
	SemaInvalidOperand         Code = 3015
	SemaCannotDeduceReturn     Code = 3016
	SemaInvalidType            Code = 3017
	SemaNoOverload             Code = 3046
	SemaAmbiguousOverload      Code = 3047
	SemaInvalidCopier          Code = 3060
	SemaPrivateCopier          Code = 3061
	SemaRecursiveInstantiation Code = 3070
	SemaPlaceholderEscape      Code = 3071

	IOLoadFileError Code = 4001
	IOFixtureError  Code = 4002

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                "Unknown error",
	SemaInfo:                   "Semantic information",
	SemaDuplicateSymbol:        "Duplicate symbol",
	SemaShadowSymbol:           "Variable shadows outer variable",
	SemaUnresolvedSymbol:       "Unresolved symbol",
	SemaTypeMismatch:           "Type mismatch",
	SemaNotCallable:            "Expression is not callable",
	SemaUnknownMember:          "Unknown member",
	SemaPrivateMember:          "Private member access",
	SemaImmutableAssign:        "Assignment to immutable variable",
	SemaInvalidOperand:         "Invalid operand",
	SemaCannotDeduceReturn:     "Cannot deduce return type",
	SemaInvalidType:            "Invalid type",
	SemaNoOverload:             "No matching overload",
	SemaAmbiguousOverload:      "Ambiguous overload",
	SemaInvalidCopier:          "Invalid copier",
	SemaPrivateCopier:          "Private copier",
	SemaRecursiveInstantiation: "Recursive template instantiation",
	SemaPlaceholderEscape:      "Template placeholder escaped instantiation",
	IOLoadFileError:            "I/O load file error",
	IOFixtureError:             "Malformed syntax tree document",
	ObsInfo:                    "Observability information",
	ObsTimings:                 "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
