// Package yamlerr defines the stable error taxonomy shared by the schema,
// value, and engine packages.
package yamlerr

import "fmt"

// Kind enumerates the stable error kinds a load, save, free, or copy
// operation can fail with.
type Kind int

const (
	// OK means no error occurred.
	OK Kind = iota

	// Misuse errors: the caller passed something the engine cannot work with.
	NullData
	NullConfig
	NullMemFn
	NullSchema

	// Schema errors: the schema itself is structurally invalid.
	BadTypeInSchema
	InvalidDataSize
	BadMinMaxSchema
	SequenceFixedCount
	BadBitValInSchema
	BadBitfield

	// Input errors: the YAML document does not satisfy the schema.
	InvalidValue
	InvalidBase64
	StringLengthMin
	StringLengthMax
	MappingFieldMissing
	InvalidKey
	SequenceEntriesMin
	SequenceEntriesMax
	UnexpectedEvent
	InvalidAlias

	// Runtime errors.
	AllocFailed
	Parser
	DataValidErr
	DataTargetNonNullPtrReq
)

var kindNames = [...]string{
	OK:                      "ok",
	NullData:                "null data pointer",
	NullConfig:              "null configuration",
	NullMemFn:               "null memory allocation function",
	NullSchema:              "null schema",
	BadTypeInSchema:         "bad type in schema",
	InvalidDataSize:         "invalid data size in schema",
	BadMinMaxSchema:         "bad min/max in schema",
	SequenceFixedCount:      "sequence-fixed schema has mismatched min/max",
	BadBitValInSchema:       "bad bitfield value in schema",
	BadBitfield:             "overlapping or malformed bitfield definition",
	InvalidValue:            "invalid value",
	InvalidBase64:           "invalid base64 value",
	StringLengthMin:         "string length is below the schema minimum",
	StringLengthMax:         "string length is above the schema maximum",
	MappingFieldMissing:     "required mapping field is missing",
	InvalidKey:              "unexpected mapping key",
	SequenceEntriesMin:      "sequence has too few entries",
	SequenceEntriesMax:      "sequence has too many entries",
	UnexpectedEvent:         "unexpected YAML event for the current schema node",
	InvalidAlias:            "alias refers to an unknown anchor",
	AllocFailed:             "memory allocation failed",
	Parser:                  "YAML parser error",
	DataValidErr:            "validation callback rejected the value",
	DataTargetNonNullPtrReq: "a non-nullable pointer slot was null",
}

// String renders the stable, human-readable form of a Kind. It is the value
// returned by Strerror.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) || kindNames[k] == "" {
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
	return kindNames[k]
}

// Strerror returns the static human-readable string for kind, per the
// public strerror operation.
func Strerror(kind Kind) string {
	return kind.String()
}

// Error is the concrete error type every engine operation returns. It
// carries the offending schema/document path and, when known, the source
// position in the YAML document.
type Error struct {
	Kind   Kind
	Path   string
	Line   int
	Column int
	Msg    string
}

// New builds an *Error with an optional formatted message.
func New(kind Kind, path string, line, column int, format string, args ...any) *Error {
	msg := kind.String()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Path: path, Line: line, Column: column, Msg: msg}
}

func (e *Error) Error() string {
	if e.Line > 0 || e.Column > 0 {
		return fmt.Sprintf("%s: %s (line %d, column %d)", e.Path, e.Msg, e.Line, e.Column)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Msg)
	}
	return e.Msg
}

// Is lets errors.Is match on Kind alone, so callers can write
// errors.Is(err, yamlerr.New(yamlerr.InvalidKey, "", 0, 0, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
