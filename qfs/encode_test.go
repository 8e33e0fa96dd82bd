// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package qfs

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"repeated byte":            bytes.Repeat([]byte{'A'}, 4000),
		"repeated pattern":         bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 200),
		"mostly random":            randomBytes(5000, 1),
		"long common tail":         append(randomBytes(2000, 2), bytes.Repeat([]byte{0}, 3000)...),
		"just above minimum size": bytes.Repeat([]byte{'z'}, minInputSize+4),
		"small with repeat":       append([]byte("ab"), bytes.Repeat([]byte("cd"), 10)...),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			compressed, ok := Compress(data)
			if !ok {
				t.Fatalf("Compress reported not-compressible for %d bytes", len(data))
			}
			if len(compressed) >= len(data) {
				t.Fatalf("compressed size %d did not shrink original %d", len(compressed), len(data))
			}

			got, err := Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(data))
			}
		})
	}
}

func TestCompressLengthPrefixFraming(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 500)
	compressed, ok := Compress(data, WithLengthPrefix(true))
	if !ok {
		t.Fatal("Compress reported not-compressible")
	}

	got, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("round trip mismatch with length-prefixed framing")
	}
}

func TestCompressRejectsUndersizedInput(t *testing.T) {
	if _, ok := Compress([]byte("short")); ok {
		t.Fatal("expected Compress to reject input below the minimum size")
	}
}

func TestCompressIncompressibleInputFallsBack(t *testing.T) {
	data := randomBytes(2000, 42)
	if _, ok := Compress(data); ok {
		t.Skip("random data happened to compress; hash collisions made it find spurious matches")
	}
}

func randomBytes(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b)
	return b
}
