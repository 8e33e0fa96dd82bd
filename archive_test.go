// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package dbpf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAddSaveReopenRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "dbpf_test_")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "a.dat")
	tgi := TGI{Type: 0x6534284A, Group: 0x1, Instance: 0x2}
	// Three repeats of the line give the LZ77 search a >= 3-byte run to
	// match against; "Hello, world!\n" on its own has none and a faithful
	// QFS encoder would correctly refuse to compress it.
	payload := bytes.Repeat([]byte("Hello, world!\n"), 3)

	archive := Create()
	archive.Add(tgi, payload, true)
	require.NoError(t, archive.SaveAs(path))
	archive.Close()

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	entry, err := reopened.GetEntry(tgi)
	require.NoError(t, err)
	assert.True(t, entry.IsCompressed())

	got, err := entry.UncompressedBytes()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestCompressionFallbackBelowMinSize(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "dbpf_test_")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "a.dat")
	tgi := TGI{Type: 1, Group: 2, Instance: 3}
	payload := []byte("012345678") // 9 bytes, below the QFS minimum of 10

	archive := Create()
	archive.Add(tgi, payload, true)
	require.NoError(t, archive.SaveAs(path))

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	entry, err := reopened.GetEntry(tgi)
	require.NoError(t, err)
	assert.False(t, entry.IsCompressed())

	for _, ce := range reopened.CompressionDirectory() {
		assert.NotEqual(t, tgi, ce.TGI, "compression directory should not list an uncompressed entry")
	}
}

func TestDeleteThenSave(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "dbpf_test_")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "a.dat")
	a := TGI{Type: 1, Group: 0, Instance: 1}
	b := TGI{Type: 1, Group: 0, Instance: 2}
	c := TGI{Type: 1, Group: 0, Instance: 3}

	archive := Create()
	archive.Add(a, bytes.Repeat([]byte("A"), 20), false)
	archive.Add(b, bytes.Repeat([]byte("B"), 20), false)
	archive.Add(c, bytes.Repeat([]byte("C"), 20), false)
	require.NoError(t, archive.SaveAs(path))

	archive.Remove(b)
	require.NoError(t, archive.Save())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.GetEntry(b)
	assert.True(t, IsNotFound(err))

	for _, tgi := range []TGI{a, c} {
		_, err := reopened.GetEntry(tgi)
		assert.NoError(t, err)
	}

	assert.Len(t, reopened.Index(), 2)
}

func TestSaveOverSelf(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "dbpf_test_")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "a.dat")
	tgi := TGI{Type: 9, Group: 9, Instance: 9}

	archive := Create()
	archive.Add(tgi, []byte("first version of the payload"), false)
	require.NoError(t, archive.SaveAs(path))

	reopened, err := Open(path)
	require.NoError(t, err)
	reopened.Remove(tgi)
	reopened.Add(tgi, []byte("second version, written over the same file"), false)
	require.NoError(t, reopened.Save())
	reopened.Close()

	final, err := Open(path)
	require.NoError(t, err)
	defer final.Close()

	entry, err := final.GetEntry(tgi)
	require.NoError(t, err)
	got, err := entry.UncompressedBytes()
	require.NoError(t, err)
	assert.Equal(t, "second version, written over the same file", string(got))
}

func TestDuplicateTGISkipsFreshCompressionOnSave(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "dbpf_test_")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "a.dat")
	tgi := TGI{Type: 4, Group: 4, Instance: 4}

	archive := Create()
	archive.Add(tgi, bytes.Repeat([]byte("first"), 10), true)
	archive.Add(tgi, bytes.Repeat([]byte("second"), 10), true)
	require.NoError(t, archive.SaveAs(path))

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.LessOrEqual(t, len(reopened.CompressionDirectory()), 1)
}

func TestGetEntryNotFound(t *testing.T) {
	archive := Create()
	_, err := archive.GetEntry(TGI{Type: 1, Group: 2, Instance: 3})
	assert.True(t, IsNotFound(err))
}

func TestHeaderIndexSizeInvariant(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "dbpf_test_")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "a.dat")
	archive := Create()
	archive.Add(TGI{Type: 1, Group: 1, Instance: 1}, []byte("payload one"), false)
	archive.Add(TGI{Type: 1, Group: 1, Instance: 2}, []byte("payload two"), false)
	require.NoError(t, archive.SaveAs(path))
	defer archive.Close()

	assert.Equal(t, archive.header.IndexEntryCount*indexEntrySize, archive.header.IndexSize)
}
