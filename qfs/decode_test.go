// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package qfs

import (
	"bytes"
	"testing"
)

func bareHeader(uncompressedSize int) []byte {
	h := make([]byte, 5)
	h[0] = signatureValue
	h[1] = signatureByte2
	copy(h[2:5], writeBigEndian(uint32(uncompressedSize), 3))
	return h
}

func TestDecompressOverlappingCopy(t *testing.T) {
	// 2-byte op with plain=1, copy_count=3, copy_offset=1: writes a single
	// literal byte then repeats it three more times by copying one byte
	// behind the cursor at each step, exercising the byte-by-byte
	// overlapping-copy path rather than a bulk copy.
	opcodes := []byte{0x01, 0x00, 'A', 0xFC}
	src := append(bareHeader(4), opcodes...)

	got, err := Decompress(src)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	want := []byte("AAAA")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecompressLiteralRun(t *testing.T) {
	lit := bytes.Repeat([]byte{'x'}, 8)
	opcodes := append([]byte{0xE1}, lit...)
	opcodes = append(opcodes, 0xFC)
	src := append(bareHeader(len(lit)), opcodes...)

	got, err := Decompress(src)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, lit) {
		t.Fatalf("got %q, want %q", got, lit)
	}
}

func TestDecompressPrefixedFraming(t *testing.T) {
	opcodes := []byte{0xFC, 'h', 'i'}
	// EOF opcode 0xFE carries 2 trailing literal bytes.
	opcodes[0] = 0xFE
	bare := append(bareHeader(2), opcodes...)
	prefixed := make([]byte, 4+len(bare))
	for i, b := range bare {
		prefixed[4+i] = b
	}
	// the 4-byte prefix value itself is not validated by the decoder.
	src := prefixed

	got, err := Decompress(src)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, []byte("hi")) {
		t.Fatalf("got %q, want %q", got, "hi")
	}
}

func TestDecompressTruncatedOpcode(t *testing.T) {
	src := append(bareHeader(10), 0x00) // 2-byte op missing its second byte
	if _, err := Decompress(src); err == nil {
		t.Fatal("expected an error for a truncated opcode")
	}
}

func TestDecompressCopyOffsetBeforeStart(t *testing.T) {
	// plain=0, copy_count=3, copy_offset=5 while nothing has been written yet.
	opcodes := []byte{0x00, 0x04, 0xFC}
	src := append(bareHeader(3), opcodes...)
	if _, err := Decompress(src); err == nil {
		t.Fatal("expected an error for a copy offset preceding the output start")
	}
}

func TestDecompressRejectsMissingSignature(t *testing.T) {
	src := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if _, err := Decompress(src); err == nil {
		t.Fatal("expected an error for a missing QFS signature")
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	// declares 10 bytes of output but the opcode stream only produces 2.
	opcodes := []byte{0xFE, 'h', 'i'}
	src := append(bareHeader(10), opcodes...)
	if _, err := Decompress(src); err == nil {
		t.Fatal("expected an error when decoded size does not match the header")
	}
}
