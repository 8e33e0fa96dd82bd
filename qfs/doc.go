// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package qfs implements the QFS/RefPack byte-oriented LZ77 compression
codec used inside DBPF archive entries.

QFS is Electronic Arts' in-house LZ77 variant: a 5-to-9 byte header
(depending on framing) followed by an opcode stream of 1-to-4 byte
control codes that each emit a run of literal bytes, an optional
back-reference copy, or both.

# Framing

A compressed blob carries its QFS signature (0x10, 0xFB, possibly ORed
with extra flag bits in the first byte) either at offset 0 ("bare") or
offset 4 ("prefixed", where bytes 0-3 are an outer little-endian
compressed-length field ignored by the decoder). [Decompress] accepts
both; [Compress] emits bare framing by default and prefixed framing when
asked.

# Usage

	compressed, ok := qfs.Compress(data, qfs.WithLengthPrefix(true))
	if !ok {
		// data did not shrink; store it uncompressed instead.
	}

	original, err := qfs.Decompress(compressed)
*/
package qfs
