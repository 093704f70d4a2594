package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies why an analysis failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindRecordFormat
	KindParse
	KindOverflow
	KindSource
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindRecordFormat:
		return "record format"
	case KindParse:
		return "parse"
	case KindOverflow:
		return "overflow"
	case KindSource:
		return "source"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrIO           = errors.New("io error")
	ErrRecordFormat = errors.New("record format error")
	ErrParse        = errors.New("parse error")
	ErrOverflow     = errors.New("overflow error")
	ErrSource       = errors.New("source error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindRecordFormat:
		return ErrRecordFormat
	case KindParse:
		return ErrParse
	case KindOverflow:
		return ErrOverflow
	case KindSource:
		return ErrSource
	default:
		return nil
	}
}

// Error is the single error type returned by the parser and analyzers.
// Row and Field are 1-based; zero means "not applicable".
type Error struct {
	Kind     Kind
	Location string
	Row      int
	Field    int
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.sentinel()
	if msg == nil {
		msg = errors.New("error")
	}
	s := msg.Error()
	if e.Location != "" {
		s += ": " + e.Location
	}
	if e.Row > 0 {
		s += fmt.Sprintf(": row %d", e.Row)
	}
	if e.Field > 0 {
		s += fmt.Sprintf(" field %d", e.Field)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IOError wraps a failure to open or read location.
func IOError(location string, err error) error {
	return &Error{Kind: KindIO, Location: location, Err: err}
}

// SourceError reports a location that no source can serve.
func SourceError(location, msg string) error {
	return &Error{Kind: KindSource, Location: location, Msg: msg}
}

// ParseError reports a value that is not a non-negative 32-bit integer.
func ParseError(location string, row, field int, err error) error {
	return &Error{Kind: KindParse, Location: location, Row: row, Field: field, Err: err}
}
