// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package exemplar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := New(false, TGI{Type: 0xA, Group: 0xB, Instance: 0xC})
	e.Set(0x10, UInt32Values{0xDEADBEEF, 0x1})
	e.Set(0x20, StringValue("abc"))
	e.Set(0x30, BoolValues{true})

	encoded, err := e.Encode()
	require.NoError(t, err)

	decoded, err := FromBytes(encoded)
	require.NoError(t, err)

	assert.False(t, decoded.IsCohort)
	assert.Equal(t, e.ParentCohort, decoded.ParentCohort)

	props := decoded.Properties()
	require.Len(t, props, 3)

	wantIDs := []uint32{0x10, 0x20, 0x30}
	for i, p := range props {
		assert.Equal(t, wantIDs[i], p.ID)
	}

	assert.Equal(t, UInt32Values{0xDEADBEEF, 0x1}, props[0].Value)
	assert.Equal(t, StringValue("abc"), props[1].Value)
	assert.Equal(t, BoolValues{true}, props[2].Value)
}

func TestEncodeIsByteIdenticalWhenAlreadySorted(t *testing.T) {
	e := New(true, TGI{Type: 1, Group: 2, Instance: 3})
	e.Set(1, UInt8Values{9})
	e.Set(2, Float32Values{1.5, 2.5})

	encoded, err := e.Encode()
	require.NoError(t, err)

	decoded, err := FromBytes(encoded)
	require.NoError(t, err)
	reencoded, err := decoded.Encode()
	require.NoError(t, err)

	assert.Equal(t, encoded, reencoded)
}

func TestFromBytesUnrecognizedSignature(t *testing.T) {
	_, err := FromBytes([]byte("NOTASIG#"))
	assert.Error(t, err)
}

func TestDecodeTextMissingNewline(t *testing.T) {
	raw := append([]byte("EQZT1###"), []byte("ParentCohort=Key:{0,0,0}")...)
	_, err := FromBytes(raw)
	assert.Error(t, err)
}

func TestDecodeText(t *testing.T) {
	text := "EQZT1###\n" +
		"ParentCohort=Key:{0x0000000B,0x0000000C,0x0000000A}\n" +
		"PropCount=0x2\n" +
		`0x00000010:{"Some Property"}=Uint32:0x1:{0xDEADBEEF}` + "\n" +
		`0x00000020:{"Name"}=String:0x3:{"abc"}` + "\n"

	e, err := FromBytes([]byte(text))
	require.NoError(t, err)
	assert.False(t, e.IsCohort)
	assert.Equal(t, TGI{Type: 0xA, Group: 0xB, Instance: 0xC}, e.ParentCohort)

	v, ok := e.Get(0x10)
	require.True(t, ok)
	assert.Equal(t, UInt32Values{0xDEADBEEF}, v)

	v, ok = e.Get(0x20)
	require.True(t, ok)
	assert.Equal(t, StringValue("abc"), v)
}
