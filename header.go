// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package dbpf

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"

	"github.com/sc4pak/go-dbpf/errkind"
)

const (
	headerSize = 96

	dbpfSignature = "DBPF"

	supportedMajorVersion      = 1
	supportedMinorVersion      = 0
	supportedIndexMajorVersion = 7
)

// Header is the fixed 96-byte DBPF file header: a 4-byte signature, 14
// little-endian u32 fields, and 36 reserved bytes. A newly created header
// has them all zero; a header read by Open is written back by Save with
// its reserved bytes unchanged.
type Header struct {
	Signature         [4]byte
	MajorVersion      uint32
	MinorVersion      uint32
	Reserved1         uint32
	Reserved2         uint32
	Reserved3         uint32
	DateCreated       uint32
	DateModified      uint32
	IndexMajorVersion uint32
	IndexEntryCount   uint32
	IndexOffset       uint32
	IndexSize         uint32
	HoleEntryCount    uint32
	HoleOffset        uint32
	HoleSize          uint32
	Reserved          [36]byte
}

// newHeader builds the header for a freshly created, never-yet-saved
// archive. date_created is fixed here and never touched again.
func newHeader(now time.Time) *Header {
	h := &Header{
		MajorVersion:      supportedMajorVersion,
		MinorVersion:      supportedMinorVersion,
		IndexMajorVersion: supportedIndexMajorVersion,
		DateCreated:       uint32(now.Unix()),
		DateModified:      uint32(now.Unix()),
	}
	copy(h.Signature[:], dbpfSignature)
	return h
}

func readHeader(raw []byte) (*Header, error) {
	if len(raw) < headerSize {
		return nil, errkind.New(errkind.TruncatedInput, "dbpf.readHeader",
			errors.Errorf("need %d bytes, got %d", headerSize, len(raw)))
	}

	h := &Header{}
	if err := restruct.Unpack(raw[:headerSize], binary.LittleEndian, h); err != nil {
		return nil, errkind.New(errkind.InvalidHeader, "dbpf.readHeader", err)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) validate() error {
	if !bytes.Equal(h.Signature[:], []byte(dbpfSignature)) {
		return errkind.New(errkind.InvalidHeader, "dbpf.readHeader",
			errors.Errorf("signature %q is not %q", h.Signature, dbpfSignature))
	}
	if h.MajorVersion != supportedMajorVersion || h.MinorVersion != supportedMinorVersion {
		return errkind.New(errkind.InvalidHeader, "dbpf.readHeader",
			errors.Errorf("unsupported format version %d.%d", h.MajorVersion, h.MinorVersion))
	}
	if h.IndexMajorVersion != supportedIndexMajorVersion {
		return errkind.New(errkind.InvalidHeader, "dbpf.readHeader",
			errors.Errorf("unsupported index major version %d", h.IndexMajorVersion))
	}
	if h.IndexSize != h.IndexEntryCount*indexEntrySize {
		return errkind.New(errkind.InvalidHeader, "dbpf.readHeader",
			errors.Errorf("index_size %d does not match entries*20 (%d)", h.IndexSize, h.IndexEntryCount*indexEntrySize))
	}
	return nil
}

func (h *Header) bytes() ([]byte, error) {
	b, err := restruct.Pack(binary.LittleEndian, h)
	if err != nil {
		return nil, errkind.New(errkind.LogicError, "dbpf.Header", err)
	}
	return b, nil
}
