// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package ltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeUTF16(t *testing.T) {
	l := &LText{Value: "Hi"}
	got, err := l.Encode()
	require.NoError(t, err)

	want := []byte{0x02, 0x00, 0x00, 0x10, 'H', 0x00, 'i', 0x00}
	assert.Equal(t, want, got)
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	l := &LText{Value: "Sunnyside Heights"}
	encoded, err := l.Encode()
	require.NoError(t, err)

	decoded, err := FromBytes(encoded)
	require.NoError(t, err)
	assert.Equal(t, l.Value, decoded.Value)
}

func TestDecodeActiveCodepage(t *testing.T) {
	raw := []byte{0x05, 0x00, 0x00, 0x00, 'H', 'e', 'l', 'l', 'o'}
	l, err := FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, "Hello", l.Value)
}

func TestDecodeUTF8(t *testing.T) {
	text := "café"
	raw := append([]byte{0x04, 0x00, 0x00, 0x08}, []byte(text)...)
	l, err := FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, text, l.Value)
}

func TestEncodeRejectsOverLength(t *testing.T) {
	l := &LText{Value: string(make([]rune, maxLength+1))}
	_, err := l.Encode()
	assert.Error(t, err)
}

func TestFromBytesTruncatedHeader(t *testing.T) {
	_, err := FromBytes([]byte{0x01, 0x00})
	assert.Error(t, err)
}

func TestFromBytesUnknownEncoding(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x00, 0x05}
	_, err := FromBytes(raw)
	assert.Error(t, err)
}
