// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package qfs

import (
	"github.com/pkg/errors"

	"github.com/sc4pak/go-dbpf/errkind"
)

// Decompress expands a QFS/RefPack compressed blob. It accepts both bare
// (signature at offset 0) and length-prefixed (signature at offset 4)
// framing.
func Decompress(src []byte) ([]byte, error) {
	h, err := parseHeader(src)
	if err != nil {
		return nil, err
	}

	dst := make([]byte, h.uncompressedSize)
	srcPos := h.opcodesStart
	dstPos := 0

	for srcPos < len(src) {
		if dstPos >= len(dst) {
			// Some archives pad a trailing EOF opcode after the buffer is
			// already full; nothing further to decode.
			break
		}

		b0 := int(src[srcPos])

		var plain, copyCount, copyOffset, opLen int

		switch {
		case b0 < 0x80: // 2-byte op
			opLen = 2
			if srcPos+opLen > len(src) {
				return nil, truncated("2-byte opcode")
			}
			b1 := int(src[srcPos+1])
			plain = b0 & 0x03
			copyCount = ((b0 & 0x1C) >> 2) + 3
			copyOffset = ((b0 & 0x60) << 3) + b1 + 1

		case b0 < 0xC0: // 3-byte op
			opLen = 3
			if srcPos+opLen > len(src) {
				return nil, truncated("3-byte opcode")
			}
			b1 := int(src[srcPos+1])
			b2 := int(src[srcPos+2])
			plain = (b1 & 0xC0) >> 6
			copyCount = (b0 & 0x3F) + 4
			copyOffset = ((b1 & 0x3F) << 8) + b2 + 1

		case b0 < 0xE0: // 4-byte op
			opLen = 4
			if srcPos+opLen > len(src) {
				return nil, truncated("4-byte opcode")
			}
			b1 := int(src[srcPos+1])
			b2 := int(src[srcPos+2])
			b3 := int(src[srcPos+3])
			plain = b0 & 0x03
			copyCount = ((b0 & 0x0C) << 6) + b3 + 5
			copyOffset = ((b0 & 0x10) << 12) + (b1 << 8) + b2 + 1

		case b0 < 0xFC: // literal run, 1-byte op
			opLen = 1
			plain = ((b0 & 0x1F) << 2) + 4

		default: // EOF, 1-byte op
			opLen = 1
			plain = b0 & 0x03
		}

		srcPos += opLen

		if srcPos+plain > len(src) {
			return nil, truncated("literal payload")
		}
		if dstPos+plain+copyCount > len(dst) {
			return nil, malformed("opcode writes past the declared uncompressed size")
		}

		copy(dst[dstPos:dstPos+plain], src[srcPos:srcPos+plain])
		srcPos += plain
		dstPos += plain

		if copyCount > 0 {
			if copyOffset < 1 || copyOffset > dstPos {
				return nil, malformed("copy offset precedes the start of the output")
			}
			// Overlapping self-copy: must proceed byte by byte, since a
			// copy can reference bytes written earlier in this same run.
			src := dstPos - copyOffset
			for i := 0; i < copyCount; i++ {
				dst[dstPos+i] = dst[src+i]
			}
			dstPos += copyCount
		}

		if b0 >= 0xFC {
			break
		}
	}

	if dstPos != len(dst) {
		return nil, malformed("decoded size does not match the declared uncompressed size")
	}

	return dst, nil
}

func truncated(what string) error {
	return errkind.New(errkind.TruncatedInput, "qfs.Decompress", errors.New(what))
}

func malformed(what string) error {
	return errkind.New(errkind.MalformedRecord, "qfs.Decompress", errors.New(what))
}
