// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package dbpf

import "github.com/sc4pak/go-dbpf/errkind"

// Error is returned by every failing operation in this package, and by
// the qfs, exemplar, and ltext subpackages it wraps results from.
type Error = errkind.Error

// Kind classifies why an operation failed.
type Kind = errkind.Kind

// The error kinds this package's operations can fail with.
const (
	InvalidHeader                 = errkind.InvalidHeader
	UnsupportedCompressionFormat  = errkind.UnsupportedCompressionFormat
	TruncatedInput                = errkind.TruncatedInput
	MalformedRecord               = errkind.MalformedRecord
	NotFound                      = errkind.NotFound
	InvalidArgument               = errkind.InvalidArgument
	LogicError                    = errkind.LogicError
)

// IsNotFound reports whether err is a NotFound error, as returned by
// GetEntry for an unknown TGI.
func IsNotFound(err error) bool { return errkind.Is(err, errkind.NotFound) }
