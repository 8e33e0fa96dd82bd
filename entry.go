// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package dbpf

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/sc4pak/go-dbpf/qfs"
)

// Entry is a handle to one archive record's payload. Decompression is
// performed at most once and cached for the Entry's lifetime;
// UncompressedBytes always returns a fresh copy so a caller can mutate
// its result without disturbing the cache.
type Entry struct {
	tgi TGI

	data       []byte // stored bytes: compressed if `compressed`, plain otherwise
	compressed bool

	// shouldCompress only applies to entries built by Add; it is consulted
	// once, at the next Save, and then has no further effect.
	shouldCompress bool

	uncompressedCache []byte
}

// TGI returns the entry's type/group/instance triple.
func (e *Entry) TGI() TGI { return e.tgi }

// IsCompressed reports whether the entry's stored bytes are QFS-compressed.
func (e *Entry) IsCompressed() bool { return e.compressed }

// UncompressedBytes returns a copy of the entry's decompressed payload,
// invoking the QFS decoder on first call and caching the result.
func (e *Entry) UncompressedBytes() ([]byte, error) {
	if !e.compressed {
		out := make([]byte, len(e.data))
		copy(out, e.data)
		return out, nil
	}

	if e.uncompressedCache == nil {
		raw, err := qfs.Decompress(e.data)
		if err != nil {
			return nil, errors.Wrap(err, "dbpf.Entry.UncompressedBytes")
		}
		e.uncompressedCache = raw
	}

	out := make([]byte, len(e.uncompressedCache))
	copy(out, e.uncompressedCache)
	return out, nil
}

// serialize returns the bytes this entry should be written as at save
// time, compressing on demand when shouldCompress is set and the QFS
// encoder can shrink the payload. The second return value reports
// whether the returned bytes are compressed.
func (e *Entry) serialize(logger *slog.Logger) ([]byte, bool) {
	if e.compressed {
		return e.data, true
	}
	if e.shouldCompress {
		compressed, ok := qfs.Compress(e.data)
		if ok {
			logger.Debug("dbpf: entry compressed", "tgi", e.tgi.String(),
				"original", len(e.data), "compressed", len(compressed))
			e.data = compressed
			e.compressed = true
			return e.data, true
		}
		logger.Debug("dbpf: entry did not shrink under compression, storing raw",
			"tgi", e.tgi.String(), "size", len(e.data))
	}
	return e.data, false
}

// newAddedEntry builds the payload for a record passed to Add. It always
// starts uncompressed in memory; shouldCompress governs what happens at
// the next Save.
func newAddedEntry(tgi TGI, data []byte, shouldCompress bool) *Entry {
	return &Entry{tgi: tgi, data: data, shouldCompress: shouldCompress}
}
