package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003

	// Синтаксис .mir
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectIdentifier  Code = 2002
	SynExpectType        Code = 2003
	SynExpectPlace       Code = 2004
	SynExpectOperand     Code = 2005
	SynExpectSemicolon   Code = 2006
	SynExpectBlock       Code = 2007
	SynUnknownType       Code = 2008
	SynDuplicateType     Code = 2009
	SynUnknownLocal      Code = 2010
	SynDuplicateLocal    Code = 2011
	SynLocalOutOfOrder   Code = 2012
	SynUnknownBlock      Code = 2013
	SynDuplicateBlock    Code = 2014
	SynUnknownVariant    Code = 2015
	SynUnknownStatement  Code = 2016
	SynUnknownTerminator Code = 2017
	SynMissingTerminator Code = 2018
	SynBadNumber         Code = 2019
	SynDuplicateFunction Code = 2020

	// Проверка IR
	ValInfo             Code = 3000
	ValNoBlocks         Code = 3001
	ValBadLocal         Code = 3002
	ValBadBlock         Code = 3003
	ValBadArgCount      Code = 3004
	ValSetDiscriminant  Code = 3005
	ValBadSubslice      Code = 3006
	ValBadProjection    Code = 3007
	ValBadConstantIndex Code = 3008
	ValUnterminated     Code = 3009

	// Перемещения
	MoveInfo                 Code = 4000
	MoveBorrowedContent      Code = 4001
	MoveInteriorOfDrop       Code = 4002
	MoveInteriorOfSlice      Code = 4003
	MoveInteriorOfArrayIndex Code = 4004
	MoveInternalError        Code = 4005

	// Ошибки I/O
	IOLoadFileError Code = 5001
	IOCacheError    Code = 5002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		LexInfo:                  "Lexical information",
		LexUnknownChar:           "Unknown character",
		LexUnterminatedString:    "Unterminated string",
		LexBadNumber:             "Bad number literal",
		SynInfo:                  "Syntax information",
		SynUnexpectedToken:       "Unexpected token",
		SynExpectIdentifier:      "Expected identifier",
		SynExpectType:            "Expected type",
		SynExpectPlace:           "Expected place",
		SynExpectOperand:         "Expected operand",
		SynExpectSemicolon:       "Expected ';'",
		SynExpectBlock:           "Expected basic block",
		SynUnknownType:           "Unknown type name",
		SynDuplicateType:         "Duplicate type declaration",
		SynUnknownLocal:          "Unknown local",
		SynDuplicateLocal:        "Duplicate local declaration",
		SynLocalOutOfOrder:       "Locals must be numbered consecutively",
		SynUnknownBlock:          "Unknown basic block",
		SynDuplicateBlock:        "Duplicate basic block",
		SynUnknownVariant:        "Unknown enum variant",
		SynUnknownStatement:      "Unknown statement",
		SynUnknownTerminator:     "Unknown terminator",
		SynMissingTerminator:     "Basic block has no terminator",
		SynBadNumber:             "Number out of range",
		SynDuplicateFunction:     "Duplicate function",
		ValInfo:                  "IR validation information",
		ValNoBlocks:              "Body has no basic blocks",
		ValBadLocal:              "Reference to an undeclared local",
		ValBadBlock:              "Jump to an undeclared basic block",
		ValBadArgCount:           "Argument count exceeds locals",
		ValSetDiscriminant:       "SetDiscriminant is not allowed before drop elaboration",
		ValBadSubslice:           "Malformed subslice",
		ValBadProjection:         "Ill-typed projection",
		ValBadConstantIndex:      "Malformed constant index",
		ValUnterminated:          "Basic block has no terminator",
		MoveInfo:                 "Move information",
		MoveBorrowedContent:      "Cannot move out of borrowed content",
		MoveInteriorOfDrop:       "Cannot move out of type with destructor",
		MoveInteriorOfSlice:      "Cannot move out of slice",
		MoveInteriorOfArrayIndex: "Cannot move out of array with non-constant index",
		MoveInternalError:        "Internal error while gathering moves",
		IOLoadFileError:          "I/O load file error",
		IOCacheError:             "Disk cache error",
		ObsInfo:                  "Observability information",
		ObsTimings:               "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("VAL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("MOV%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// IsMove reports whether c belongs to the MOV group.
func (c Code) IsMove() bool { return c >= MoveInfo && c < MoveInfo+1000 }

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
