package lg

import (
	"errors"
	"fmt"
)

// ErrCode is the stable identifier of a parse or collation failure
type ErrCode string

// Structural failures
const (
	CodeInvalidTemplate          ErrCode = "INVALID_TEMPLATE"
	CodeInvalidSpaceInTemplate   ErrCode = "INVALID_SPACE_IN_TEMPLATE_NAME"
	CodeInvalidVariation         ErrCode = "INVALID_VARIATION"
	CodeInvalidEntityDefinition  ErrCode = "INVALID_ENTITY_DEFINITION"
	CodeInvalidCondition         ErrCode = "INVALID_CONDITION"
	CodeEntityWithReservedWord   ErrCode = "ENTITY_WITH_RESERVED_KEYWORD"
	CodeNestedEntityReference    ErrCode = "NESTED_ENTITY_REFERENCE"
	CodeNestedTemplateReference  ErrCode = "NESTED_TEMPLATE_REFERENCE"
	CodeInvalidCallbackDef       ErrCode = "INVALID_CALLBACK_FUNTION_DEF"
	CodeInvalidCallbackName      ErrCode = "INVALID_CALLBACK_FUNTION_NAME"
	CodeDuplicateIncompatibleDef ErrCode = "DUPLICATE_INCOMPATIBE_ENTITY_DEF"
)

// Codes returns every error code in declaration order
func Codes() []ErrCode {
	return []ErrCode{
		CodeInvalidTemplate,
		CodeInvalidSpaceInTemplate,
		CodeInvalidVariation,
		CodeInvalidEntityDefinition,
		CodeInvalidCondition,
		CodeEntityWithReservedWord,
		CodeNestedEntityReference,
		CodeNestedTemplateReference,
		CodeInvalidCallbackDef,
		CodeInvalidCallbackName,
		CodeDuplicateIncompatibleDef,
	}
}

// Describe returns a one line explanation of the code
func (c ErrCode) Describe() string {
	switch c {
	case CodeInvalidTemplate:
		return "template header without a name, or content outside a template"
	case CodeInvalidSpaceInTemplate:
		return "template name contains whitespace"
	case CodeInvalidVariation:
		return "variation is empty or malformed"
	case CodeInvalidEntityDefinition:
		return "entity declaration is malformed"
	case CodeInvalidCondition:
		return "CASE header without a condition"
	case CodeEntityWithReservedWord:
		return "entity name is a reserved keyword"
	case CodeNestedEntityReference:
		return "entity placeholder nested inside another placeholder"
	case CodeNestedTemplateReference:
		return "template reference nested inside another template reference"
	case CodeInvalidCallbackDef:
		return "callback function used outside of {}"
	case CodeInvalidCallbackName:
		return "unknown callback function"
	case CodeDuplicateIncompatibleDef:
		return "entity redefined with a different type"
	}
	return "unknown error code"
}

// Error is a parse or collation failure carrying a stable code
type Error struct {
	Code ErrCode
	File string
	Line int // 1-based, 0 when not tied to a line
	Msg  string
}

// Errorf creates an Error with a formatted message
func Errorf(code ErrCode, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface
func (e *Error) Error() string {
	loc := e.File
	if e.Line > 0 {
		if loc != "" {
			loc = fmt.Sprintf("%s:%d", loc, e.Line)
		} else {
			loc = fmt.Sprintf("line %d", e.Line)
		}
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Msg)
}

// WithLine returns a copy of the error tied to a source line
func (e *Error) WithLine(line int) *Error {
	c := *e
	c.Line = line
	return &c
}

// WithFile returns a copy of the error tied to a source file
func (e *Error) WithFile(file string) *Error {
	c := *e
	c.File = file
	return &c
}

// CodeOf extracts the code from err, looking through wrapped errors
func CodeOf(err error) (ErrCode, bool) {
	var lgErr *Error
	if errors.As(err, &lgErr) {
		return lgErr.Code, true
	}
	return "", false
}
