// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package qfs

import (
	"bytes"
	"testing"
)

// BenchmarkCompress benchmarks the hash-chain LZ77 search on data with a
// realistic mix of repeated structure, the codec's hot path inside a save.
func BenchmarkCompress(b *testing.B) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 2000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := Compress(data); !ok {
			b.Fatal("Compress reported not-compressible")
		}
	}
}

// BenchmarkDecompress benchmarks opcode-stream decoding, the hot path
// inside GetEntry/UncompressedBytes.
func BenchmarkDecompress(b *testing.B) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 2000)
	compressed, ok := Compress(data)
	if !ok {
		b.Fatal("Compress reported not-compressible")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decompress(compressed); err != nil {
			b.Fatal(err)
		}
	}
}
