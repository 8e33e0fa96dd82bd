// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package dbpf

import (
	"encoding/binary"
	"sort"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"

	"github.com/sc4pak/go-dbpf/errkind"
)

// compressionDirectoryTGI is the well-known TGI of the compression
// directory record itself. It is never compressed and never lists itself.
var compressionDirectoryTGI = TGI{Type: 0xE86B1EEF, Group: 0xE86B1EEF, Instance: 0x286B1F03}

const compressionDirectoryEntrySize = 16

// rawCompressionDirectoryEntry is the 16-byte on-disk shape of one
// compression directory record.
type rawCompressionDirectoryEntry struct {
	Type             uint32
	Group            uint32
	Instance         uint32
	UncompressedSize uint32
}

// CompressionEntry is a read-only view of one compression directory
// record, as returned by Archive.CompressionDirectory.
type CompressionEntry struct {
	TGI              TGI
	UncompressedSize uint32
}

// compressionDirectory records which archive entries are QFS-compressed
// and their uncompressed sizes, keyed by TGI.
type compressionDirectory struct {
	entries map[TGI]uint32
}

func newCompressionDirectory() *compressionDirectory {
	return &compressionDirectory{entries: make(map[TGI]uint32)}
}

func parseCompressionDirectory(raw []byte) (*compressionDirectory, error) {
	if len(raw)%compressionDirectoryEntrySize != 0 {
		return nil, errkind.New(errkind.MalformedRecord, "dbpf.parseCompressionDirectory",
			errors.Errorf("size %d is not a multiple of %d", len(raw), compressionDirectoryEntrySize))
	}

	cd := newCompressionDirectory()
	for off := 0; off < len(raw); off += compressionDirectoryEntrySize {
		var rec rawCompressionDirectoryEntry
		if err := restruct.Unpack(raw[off:off+compressionDirectoryEntrySize], binary.LittleEndian, &rec); err != nil {
			return nil, errkind.New(errkind.MalformedRecord, "dbpf.parseCompressionDirectory", err)
		}
		cd.entries[TGI{Type: rec.Type, Group: rec.Group, Instance: rec.Instance}] = rec.UncompressedSize
	}
	return cd, nil
}

func (cd *compressionDirectory) contains(tgi TGI) bool {
	_, ok := cd.entries[tgi]
	return ok
}

func (cd *compressionDirectory) uncompressedSize(tgi TGI) (uint32, bool) {
	v, ok := cd.entries[tgi]
	return v, ok
}

// setIfAbsent records tgi's uncompressed size unless a record for it
// already exists. A TGI shared by more than one surviving entry at save
// time keeps only the first record, avoiding an ambiguous directory.
func (cd *compressionDirectory) setIfAbsent(tgi TGI, size uint32) {
	if _, exists := cd.entries[tgi]; !exists {
		cd.entries[tgi] = size
	}
}

func (cd *compressionDirectory) len() int { return len(cd.entries) }

func (cd *compressionDirectory) bytes() ([]byte, error) {
	tgis := make([]TGI, 0, len(cd.entries))
	for t := range cd.entries {
		tgis = append(tgis, t)
	}
	sort.Slice(tgis, func(i, j int) bool { return tgis[i].less(tgis[j]) })

	out := make([]byte, 0, len(tgis)*compressionDirectoryEntrySize)
	for _, t := range tgis {
		rec := rawCompressionDirectoryEntry{
			Type:             t.Type,
			Group:            t.Group,
			Instance:         t.Instance,
			UncompressedSize: cd.entries[t],
		}
		b, err := restruct.Pack(binary.LittleEndian, &rec)
		if err != nil {
			return nil, errkind.New(errkind.LogicError, "dbpf.compressionDirectory", err)
		}
		out = append(out, b...)
	}
	return out, nil
}
