// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package errkind classifies the errors this module returns so callers can
// branch on failure category (spec §7) without parsing error strings.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is one of the error categories a DBPF/QFS/Exemplar/LTEXT operation
// can fail with.
type Kind int

const (
	// InvalidHeader covers signature/version/index-size mismatches.
	InvalidHeader Kind = iota
	// UnsupportedCompressionFormat covers a missing QFS signature.
	UnsupportedCompressionFormat
	// TruncatedInput covers a stream ending before the expected byte count.
	TruncatedInput
	// MalformedRecord covers structurally invalid records (bad key type,
	// unknown property tag, missing text delimiter, and so on).
	MalformedRecord
	// NotFound covers a failed TGI lookup.
	NotFound
	// InvalidArgument covers forbidden inputs (nil/empty, over-length
	// strings, empty value lists).
	InvalidArgument
	// LogicError covers violated internal invariants.
	LogicError
)

var names = [...]string{
	"invalid header",
	"unsupported compression format",
	"truncated input",
	"malformed record",
	"not found",
	"invalid argument",
	"logic error",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return "unknown error"
	}
	return names[k]
}

// Error is the concrete error type returned by this module. Op names the
// failing operation (e.g. "dbpf.Open", "qfs.Decompress"); Err, when set, is
// the proximate cause and is reachable through Unwrap.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New builds an *Error. err may be nil when the Kind itself is the whole
// story (e.g. NotFound).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err is (or wraps) an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
