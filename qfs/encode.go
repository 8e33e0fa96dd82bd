// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package qfs

import (
	"context"
	"encoding/binary"
	"log/slog"
)

const (
	minMatch      = 3
	maxMatch      = 1028
	niceLength    = 258
	goodLength    = 32
	maxChain      = 4096
	maxWindow     = 131072
	minInputSize  = 10
	maxInputSize  = 16_777_215
	maxLiteralRun = 112 // 0xE0..0xFB carry runs of 4,8,...,112
)

// options holds Compress's caller-tunable behavior.
type options struct {
	lengthPrefix bool
	logger       *slog.Logger
}

// Option configures Compress.
type Option func(*options)

// WithLengthPrefix requests the 4-byte little-endian total-length framing
// ahead of the QFS header, the framing DBPF itself uses for entry payloads.
func WithLengthPrefix(enabled bool) Option {
	return func(o *options) { o.lengthPrefix = enabled }
}

// WithLogger attaches a logger for debug-level compression diagnostics.
// The default is a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// discardHandler is a slog.Handler equivalent to the standard library's
// slog.DiscardHandler (added in Go 1.24); this module targets an older
// toolchain that lacks it.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

// Compress encodes src as QFS/RefPack. It reports ok=false, with a nil
// slice, when src is outside the compressible size range (spec:
// 10 <= len(src) <= 16_777_215) or the LZ77 search could not shrink it;
// callers must fall back to storing src uncompressed in either case.
func Compress(src []byte, opts ...Option) (dst []byte, ok bool) {
	o := &options{logger: slog.New(discardHandler{})}
	for _, opt := range opts {
		opt(o)
	}

	n := len(src)
	if n < minInputSize || n > maxInputSize {
		o.logger.Debug("qfs: input outside compressible size range", "size", n)
		return nil, false
	}

	// reserved counts the bytes that will sit in front of the opcode
	// stream in the final stored blob: the 5-byte QFS header, plus the
	// 4-byte length prefix when requested. The give-up budget below is
	// charged against the whole blob, not just the opcode body, so
	// Compress never returns ok=true for a result that is not actually
	// smaller than src.
	reserved := 5
	if o.lengthPrefix {
		reserved += 4
	}

	body, ok := encodeOpcodes(src, reserved)
	if !ok {
		o.logger.Debug("qfs: lz77 search could not shrink input", "size", n)
		return nil, false
	}

	header := make([]byte, 5)
	header[0] = signatureValue
	header[1] = signatureByte2
	copy(header[2:5], writeBigEndian(uint32(n), 3))

	blob := make([]byte, 0, len(header)+len(body))
	blob = append(blob, header...)
	blob = append(blob, body...)

	if !o.lengthPrefix {
		return blob, true
	}

	out := make([]byte, 4+len(blob))
	binary.LittleEndian.PutUint32(out, uint32(len(blob)))
	copy(out[4:], blob)
	return out, true
}

// encodeOpcodes runs the LZ77 hash-chain search over src and emits the
// opcode stream (without the 5-byte QFS header). reserved is the number
// of header/framing bytes that precede the opcode stream in the final
// stored blob; the search gives up as soon as the opcode stream plus
// reserved would no longer be smaller than src. ok is false when no
// budget remains or the search could not shrink the input within it.
func encodeOpcodes(src []byte, reserved int) ([]byte, bool) {
	n := len(src)

	windowSize := nextPow2(n)
	if windowSize > maxWindow {
		windowSize = maxWindow
	}
	hashSize := windowSize / 2
	if hashSize < 32 {
		hashSize = 32
	}
	shift := hashShift(hashSize)
	hashMask := uint32(hashSize - 1)
	windowMask := int32(windowSize - 1)

	head := make([]int32, hashSize)
	for i := range head {
		head[i] = -1
	}
	prev := make([]int32, windowSize)

	var rollingHash uint32
	insert := func(p int) int32 {
		if p+2 >= n {
			return -1
		}
		rollingHash = ((rollingHash << shift) ^ uint32(src[p+2])) & hashMask
		match := head[rollingHash]
		prev[int32(p)&windowMask] = match
		head[rollingHash] = int32(p)
		return match
	}

	findMatch := func(p int, chainHead int32) (length, offset int) {
		if chainHead < 0 {
			return 0, 0
		}
		chainLimit := maxChain
		candidate := chainHead
		for chainLimit > 0 && candidate >= 0 {
			dist := p - int(candidate)
			if dist <= 0 || dist > windowSize {
				break
			}
			l := matchLength(src, p, int(candidate), n)
			if l >= minMatch && l > length &&
				(dist <= 1024 || (dist <= 16384 && l >= 4) || (dist <= windowSize && l >= 5)) {
				length = l
				offset = dist
				if length >= goodLength {
					chainLimit = maxChain/4 + 1
				}
				if length >= niceLength {
					break
				}
			}
			candidate = prev[candidate&windowMask]
			chainLimit--
		}
		return length, offset
	}

	budget := n - reserved - 1
	if budget < 1 {
		return nil, false
	}
	out := make([]byte, 0, budget)

	var pendingLiteralStart int // bytes [pendingLiteralStart, *) not yet emitted

	flushLiteralsUpTo := func(upTo int) bool {
		remaining := upTo - pendingLiteralStart
		for remaining > 3 {
			run := remaining - remaining%4
			if run > maxLiteralRun {
				run = maxLiteralRun
			}
			if !emitLiteralRun(&out, src[pendingLiteralStart:pendingLiteralStart+run]) {
				return false
			}
			pendingLiteralStart += run
			remaining = upTo - pendingLiteralStart
		}
		return len(out) <= budget
	}

	type match struct {
		start, length, offset int
		valid                 bool
	}
	var prevM match

	emit := func(m match) bool {
		if !flushLiteralsUpTo(m.start) {
			return false
		}
		// emitMatchOp folds the 0-3 leftover literal bytes in
		// [pendingLiteralStart, m.start) into the match opcode itself.
		if !emitMatchOp(&out, src[pendingLiteralStart:m.start], m.length, m.offset) {
			return false
		}
		pendingLiteralStart = m.start + m.length
		return len(out) <= budget
	}

	p := 0
	for p < n {
		chainHead := insert(p)
		length, offset := findMatch(p, chainHead)

		cur := match{start: p, length: length, offset: offset, valid: length > 0}

		if prevM.valid && prevM.length >= minMatch && cur.length <= prevM.length {
			if !emit(prevM) {
				return nil, false
			}
			next := pendingLiteralStart
			for q := p + 1; q < next; q++ {
				insert(q)
			}
			p = next
			prevM = match{}
			continue
		}

		prevM = cur
		p++
	}

	if prevM.valid && prevM.length >= minMatch {
		if !emit(prevM) {
			return nil, false
		}
	}

	if !flushLiteralsUpTo(n) {
		return nil, false
	}

	if !emitEOF(&out, src[pendingLiteralStart:n]) {
		return nil, false
	}

	if len(out) > budget {
		return nil, false
	}
	return out, true
}

func matchLength(src []byte, p, j, n int) int {
	length := 0
	for p+length < n && length < maxMatch {
		if src[p+length] != src[j+length] {
			break
		}
		length++
	}
	return length
}

// emitLiteralRun emits a single literal-run opcode (0xE0..0xFB) covering
// exactly len(lit) bytes, which must be a multiple of 4 in [4,112].
func emitLiteralRun(out *[]byte, lit []byte) bool {
	n := len(lit)
	b0 := byte(0xE0 + (n >> 2) - 1)
	*out = append(*out, b0)
	*out = append(*out, lit...)
	return true
}

// emitMatchOp flushes 0-3 leftover literal bytes (lit) and a back-reference
// copy of the given length/offset using the smallest opcode that fits.
func emitMatchOp(out *[]byte, lit []byte, length, offset int) bool {
	plain := len(lit)
	offsetRaw := offset - 1

	switch {
	case length <= 10 && offsetRaw < 1024:
		b0 := byte(plain + ((length - 3) << 2) + ((offsetRaw >> 3) & 0x60))
		b1 := byte(offsetRaw)
		*out = append(*out, b0, b1)

	case length <= 67 && offsetRaw < 16384:
		b0 := byte(0x80 + (length - 4))
		b1 := byte((plain << 6) + (offsetRaw >> 8))
		b2 := byte(offsetRaw)
		*out = append(*out, b0, b1, b2)

	case length <= maxMatch && offsetRaw < maxWindow:
		b0 := byte(0xC0 + ((offsetRaw>>12)&0x10)+(((length-5)>>6)&0x0C) + plain)
		b1 := byte(offsetRaw >> 8)
		b2 := byte(offsetRaw)
		b3 := byte(length - 5)
		*out = append(*out, b0, b1, b2, b3)

	default:
		return false
	}

	*out = append(*out, lit...)
	return true
}

// emitEOF emits the terminal opcode (0xFC..0xFF), carrying 0-3 trailing
// literal bytes.
func emitEOF(out *[]byte, lit []byte) bool {
	if len(lit) > 3 {
		return false
	}
	*out = append(*out, byte(0xFC+len(lit)))
	*out = append(*out, lit...)
	return true
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// hashShift returns ceil(log2(hashSize)/3), matching the spec's derivation
// (shift=6 for the maximal hashSize=65536 case).
func hashShift(hashSize int) uint {
	bits := 0
	for v := hashSize; v > 1; v >>= 1 {
		bits++
	}
	return uint((bits + 2) / 3)
}
