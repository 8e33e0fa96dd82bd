// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package ltext

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sc4pak/go-dbpf/errkind"
)

const (
	headerSize = 4
	maxLength  = 65535

	encodingActiveCodepage = 0
	encodingUTF8           = 8
	encodingUTF16LE        = 16
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// LText is a decoded localized text record.
type LText struct {
	Value string
}

// FromBytes parses an LTEXT record's wire form: a 4-byte header (23:0
// = character length, 31:24 = encoding) followed by the encoded text.
func FromBytes(raw []byte) (*LText, error) {
	if len(raw) < headerSize {
		return nil, errkind.New(errkind.TruncatedInput, "ltext.FromBytes",
			errors.Errorf("need at least %d header bytes, got %d", headerSize, len(raw)))
	}

	packed := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
	encoding := byte(packed >> 24)
	body := raw[headerSize:]

	var value string
	var err error
	switch encoding {
	case encodingActiveCodepage:
		value, err = decodeWith(charmap.Windows1252.NewDecoder(), body)
	case encodingUTF8:
		if !utf8.Valid(body) {
			return nil, errkind.New(errkind.MalformedRecord, "ltext.FromBytes", errors.New("encoding=8 body is not valid UTF-8"))
		}
		value = string(body)
	case encodingUTF16LE:
		value, err = decodeWith(utf16LE.NewDecoder(), body)
	default:
		return nil, errkind.New(errkind.MalformedRecord, "ltext.FromBytes",
			errors.Errorf("unknown LTEXT encoding %d", encoding))
	}
	if err != nil {
		return nil, errkind.New(errkind.MalformedRecord, "ltext.FromBytes", err)
	}

	return &LText{Value: value}, nil
}

func decodeWith(dec transform.Transformer, body []byte) (string, error) {
	out, _, err := transform.Bytes(dec, body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode serializes the text to its wire form, always as UTF-16LE. It
// fails if the value's character count exceeds 65535.
func (l *LText) Encode() ([]byte, error) {
	runeCount := utf8.RuneCountInString(l.Value)
	if runeCount > maxLength {
		return nil, errkind.New(errkind.InvalidArgument, "ltext.Encode",
			errors.Errorf("value has %d characters, exceeds the %d maximum", runeCount, maxLength))
	}

	encoded, _, err := transform.String(utf16LE.NewEncoder(), l.Value)
	if err != nil {
		return nil, errkind.New(errkind.LogicError, "ltext.Encode", err)
	}

	packed := uint32(runeCount&0xFFFFFF) | uint32(encodingUTF16LE)<<24
	out := make([]byte, headerSize+len(encoded))
	out[0] = byte(packed)
	out[1] = byte(packed >> 8)
	out[2] = byte(packed >> 16)
	out[3] = byte(packed >> 24)
	copy(out[headerSize:], encoded)
	return out, nil
}
