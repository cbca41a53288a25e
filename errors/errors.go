package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode Phase = "decode" // bytes to tags
	PhaseEncode Phase = "encode" // tags to bytes
	PhaseMutate Phase = "mutate" // tree edits
	PhaseLoad   Phase = "load"   // file open/read
	PhaseSave   Phase = "save"   // file write/replace
	PhaseParse  Phase = "parse"  // textual value input
	PhaseConfig Phase = "config" // configuration loading
	PhaseExport Phase = "export" // JSON/YAML/CBOR output
	PhaseQuery  Phase = "query"  // tree queries
)

// Kind categorizes the error
type Kind string

const (
	KindIO               Kind = "io"
	KindDecompression    Kind = "decompression"
	KindTruncatedInput   Kind = "truncated_input"
	KindUnknownTagType   Kind = "unknown_tag_type"
	KindMalformedList    Kind = "malformed_list"
	KindParse            Kind = "parse"
	KindTypeMismatch     Kind = "type_mismatch"
	KindListTypeMismatch Kind = "list_type_mismatch"
	KindDuplicateKey     Kind = "duplicate_key"
	KindPathNotFound     Kind = "path_not_found"
	KindOverflow         Kind = "overflow"
	KindInvalidInput     Kind = "invalid_input"
	KindInvalidData      Kind = "invalid_data"
	KindUnsupported      Kind = "unsupported"
)

// Sentinels for errors.Is. They carry no phase, so they match any
// error of the same kind.
var (
	ErrIO               = &Error{Kind: KindIO}
	ErrDecompression    = &Error{Kind: KindDecompression}
	ErrTruncatedInput   = &Error{Kind: KindTruncatedInput}
	ErrUnknownTagType   = &Error{Kind: KindUnknownTagType}
	ErrMalformedList    = &Error{Kind: KindMalformedList}
	ErrParse            = &Error{Kind: KindParse}
	ErrTypeMismatch     = &Error{Kind: KindTypeMismatch}
	ErrListTypeMismatch = &Error{Kind: KindListTypeMismatch}
	ErrDuplicateKey     = &Error{Kind: KindDuplicateKey}
	ErrPathNotFound     = &Error{Kind: KindPathNotFound}
	ErrOverflow         = &Error{Kind: KindOverflow}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrInvalidData      = &Error{Kind: KindInvalidData}
	ErrUnsupported      = &Error{Kind: KindUnsupported}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Path      string
	Detail    string
	Offset    int64
	HasOffset bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.HasOffset {
		b.WriteString(" (byte ")
		b.WriteString(strconv.FormatInt(e.Offset, 10))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. An empty Phase on the
// target matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Phase == "" || t.Phase == e.Phase
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the tag path
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset in the input stream
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	b.err.HasOffset = true
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Is forwards to the standard library so callers importing this package
// do not need a second errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Convenience constructors for common error patterns

// Truncated creates a truncated input error
func Truncated(offset int64, want int, what string) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindTruncatedInput,
		Offset:    offset,
		HasOffset: true,
		Detail:    fmt.Sprintf("need %d more byte(s) for %s", want, what),
		Value:     want,
	}
}

// Decompression creates a compressed-framing error
func Decompression(scheme string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDecompression,
		Detail: fmt.Sprintf("malformed %s stream", scheme),
		Cause:  cause,
	}
}

// UnknownTagType creates an unknown tag type error
func UnknownTagType(offset int64, id byte) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindUnknownTagType,
		Offset:    offset,
		HasOffset: true,
		Detail:    fmt.Sprintf("unknown tag type id %d", id),
		Value:     id,
	}
}

// MalformedList creates a malformed list error
func MalformedList(offset int64, path, detail string) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindMalformedList,
		Path:      path,
		Offset:    offset,
		HasOffset: true,
		Detail:    detail,
	}
}

// PathNotFound creates a path resolution error
func PathNotFound(phase Phase, path, segment string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPathNotFound,
		Path:   path,
		Detail: fmt.Sprintf("segment %s does not resolve", segment),
		Value:  segment,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// ListTypeMismatch creates a list element type mismatch error
func ListTypeMismatch(phase Phase, path, listType, elemType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindListTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("list of %s cannot hold %s", listType, elemType),
	}
}

// DuplicateKey creates a duplicate compound key error
func DuplicateKey(phase Phase, path, key string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateKey,
		Path:   path,
		Detail: fmt.Sprintf("name %q already exists", key),
		Value:  key,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what, input string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindParse,
		Detail: fmt.Sprintf("parse %s from %q", what, input),
		Value:  input,
		Cause:  cause,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// IO wraps a file system error
func IO(phase Phase, op, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: fmt.Sprintf("%s %s", op, name),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath returns a copy of err with Path set when err is an *Error
// without one. Other errors are returned unchanged.
func WithPath(err error, path string) error {
	var e *Error
	if !stderrors.As(err, &e) || e.Path != "" {
		return err
	}
	cp := *e
	cp.Path = path
	return &cp
}
