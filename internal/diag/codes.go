package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Input loading
	LoadInfo         Code = 1000
	LoadFileMissing  Code = 1001
	LoadUnknownExt   Code = 1002
	LoadBadPluginDir Code = 1003

	// EVT binding declarations
	EvtInfo               Code = 2000
	EvtUnexpectedToken    Code = 2001
	EvtExpectSemicolon    Code = 2002
	EvtExpectIdentifier   Code = 2003
	EvtBadPort            Code = 2004
	EvtBadAnalyzerKind    Code = 2005
	EvtBadArgument        Code = 2006
	EvtDuplicateAnalyzer  Code = 2007
	EvtUnterminatedString Code = 2008

	// Module compilation
	CompileInfo             Code = 3000
	CompileExpectModule     Code = 3001
	CompileUnexpectedToken  Code = 3002
	CompileExpectType       Code = 3003
	CompileDuplicateDecl    Code = 3004
	CompileUnresolvedType   Code = 3005
	CompileExpectSemicolon  Code = 3006
	CompileExpectFieldName  Code = 3007
	CompileBadEnumLabel     Code = 3008
	CompileExpectIdentifier Code = 3009

	// Glue resolution
	GlueInfo           Code = 4000
	GlueUnknownUnit    Code = 4001
	GlueNotAUnit       Code = 4002
	GlueUnknownField   Code = 4003
	GlueUnknownExport  Code = 4004
	GlueMissingParse   Code = 4005
	GlueDuplicateEvent Code = 4006
	GlueBadArgument    Code = 4007
)

func (c Code) String() string {
	return fmt.Sprintf("GC%04d", uint16(c))
}
