// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package qfs

import (
	"github.com/pkg/errors"

	"github.com/sc4pak/go-dbpf/errkind"
)

// Header flag bits tested against the first signature byte.
const (
	// signatureMask and signatureValue implement the comparison
	// (flags & 0x3E) == 0x10. Bits 0x01, 0x40 and 0x80 are left out of the
	// mask, so flag variants such as 0x11, 0x50 and 0x90 - which several
	// DBPF files in the wild carry - are accepted alongside plain 0x10.
	signatureMask  = 0x3E
	signatureValue = 0x10
	signatureByte2 = 0xFB

	flagLargeSizeFields  = 0x80 // 4-byte size fields instead of 3-byte
	flagCompressedSizeOn = 0x01 // an extra compressed-size field follows the signature
)

// frameKind distinguishes where the signature was found.
type frameKind int

const (
	frameBare     frameKind = iota // signature at offset 0
	framePrefixed                  // signature at offset 4, preceded by a 4-byte LE length
)

// header describes a parsed QFS header: where the opcode stream starts and
// how large the decompressed output is.
type header struct {
	kind              frameKind
	flags             byte
	opcodesStart      int
	uncompressedSize  int
	largeSizeFields   bool
	hasCompressedSize bool
}

// parseHeader locates and decodes a QFS header in src, trying the bare
// framing first and then the prefixed framing.
func parseHeader(src []byte) (*header, error) {
	if h, err := tryParseHeaderAt(src, 0, frameBare); err == nil {
		return h, nil
	}
	if h, err := tryParseHeaderAt(src, 4, framePrefixed); err == nil {
		return h, nil
	}
	return nil, errkind.New(errkind.UnsupportedCompressionFormat, "qfs.Decompress",
		errors.New("no QFS signature at offset 0 or 4"))
}

func tryParseHeaderAt(src []byte, sigOff int, kind frameKind) (*header, error) {
	if len(src) < sigOff+2 {
		return nil, errors.New("input too short for signature")
	}
	flags := src[sigOff]
	if flags&signatureMask != signatureValue || src[sigOff+1] != signatureByte2 {
		return nil, errors.New("signature mismatch")
	}

	pos := sigOff + 2
	large := flags&flagLargeSizeFields != 0
	hasCompressedSize := flags&flagCompressedSizeOn != 0
	sizeFieldLen := 3
	if large {
		sizeFieldLen = 4
	}

	if hasCompressedSize {
		if len(src) < pos+sizeFieldLen {
			return nil, errors.New("input too short for compressed-size field")
		}
		pos += sizeFieldLen
	}

	if len(src) < pos+sizeFieldLen {
		return nil, errors.New("input too short for uncompressed-size field")
	}
	uncompressedSize := int(readBigEndian(src[pos : pos+sizeFieldLen]))
	pos += sizeFieldLen

	return &header{
		kind:              kind,
		flags:             flags,
		opcodesStart:      pos,
		uncompressedSize:  uncompressedSize,
		largeSizeFields:   large,
		hasCompressedSize: hasCompressedSize,
	}, nil
}

func readBigEndian(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = (v << 8) | uint32(c)
	}
	return v
}

func writeBigEndian(v uint32, width int) []byte {
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
