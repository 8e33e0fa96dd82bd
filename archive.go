// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package dbpf

import (
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-restruct/restruct"
	"github.com/pkg/errors"

	"github.com/sc4pak/go-dbpf/errkind"
)

// Archive represents a DBPF archive, either backed by a file on disk or
// held entirely in memory until the first Save/SaveAs. It owns the file
// handle it opened or most recently saved to.
type Archive struct {
	path string
	file *os.File

	header         *Header
	index          []*IndexEntry
	compressionDir *compressionDirectory

	dirty  bool
	logger *slog.Logger
}

// Create returns a new, empty archive with no backing file. It becomes
// associated with a path on its first successful Save or SaveAs.
func Create(opts ...Option) *Archive {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	now := time.Now()
	return &Archive{
		header:         newHeader(now),
		compressionDir: newCompressionDirectory(),
		logger:         c.logger,
	}
}

// Open opens an existing DBPF archive for reading. The returned Archive
// owns the file handle until Close or a same-path Save replaces it.
func Open(path string, opts ...Option) (*Archive, error) {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errkind.New(errkind.InvalidArgument, "dbpf.Open", err)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(f, headerBytes); err != nil {
		f.Close()
		return nil, errkind.New(errkind.TruncatedInput, "dbpf.Open", err)
	}
	header, err := readHeader(headerBytes)
	if err != nil {
		f.Close()
		return nil, err
	}

	indexBuf := make([]byte, header.IndexSize)
	if _, err := f.ReadAt(indexBuf, int64(header.IndexOffset)); err != nil {
		f.Close()
		return nil, errkind.New(errkind.TruncatedInput, "dbpf.Open", err)
	}

	index := make([]*IndexEntry, 0, header.IndexEntryCount)
	var compDirLocation, compDirSize uint32
	for off := 0; off < len(indexBuf); off += indexEntrySize {
		var rec rawIndexEntry
		if err := restruct.Unpack(indexBuf[off:off+indexEntrySize], binary.LittleEndian, &rec); err != nil {
			f.Close()
			return nil, errkind.New(errkind.MalformedRecord, "dbpf.Open", err)
		}
		tgi := TGI{Type: rec.Type, Group: rec.Group, Instance: rec.Instance}
		if tgi == compressionDirectoryTGI {
			compDirLocation, compDirSize = rec.Location, rec.FileSize
		}
		index = append(index, &IndexEntry{TGI: tgi, Location: rec.Location, FileSize: rec.FileSize, State: StateNormal})
	}

	compDir := newCompressionDirectory()
	if compDirSize > 0 {
		raw := make([]byte, compDirSize)
		if _, err := f.ReadAt(raw, int64(compDirLocation)); err != nil {
			f.Close()
			return nil, errkind.New(errkind.TruncatedInput, "dbpf.Open", err)
		}
		compDir, err = parseCompressionDirectory(raw)
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	sort.Slice(index, func(i, j int) bool { return index[i].Location < index[j].Location })

	return &Archive{
		path:           path,
		file:           f,
		header:         header,
		index:          index,
		compressionDir: compDir,
		logger:         c.logger,
	}, nil
}

// Add appends a new entry in state New. Duplicate TGIs are permitted but
// discouraged; GetEntry acts on the first match, while Remove marks every
// match.
func (a *Archive) Add(tgi TGI, data []byte, compress bool) {
	a.index = append(a.index, &IndexEntry{
		TGI:   tgi,
		State: StateNew,
		entry: newAddedEntry(tgi, data, compress),
	})
	a.dirty = true
}

// GetEntry looks up the first non-deleted index entry matching tgi and
// returns its payload, reading it from the backing file on first access.
// It fails with a NotFound error if no entry matches.
func (a *Archive) GetEntry(tgi TGI) (*Entry, error) {
	ie := a.findIndexEntry(tgi)
	if ie == nil {
		return nil, errkind.New(errkind.NotFound, "dbpf.Archive.GetEntry", errors.Errorf("no entry with TGI %s", tgi))
	}
	if ie.entry != nil {
		return ie.entry, nil
	}
	if a.file == nil {
		return nil, errkind.New(errkind.LogicError, "dbpf.Archive.GetEntry", errors.New("archive has no backing file to read from"))
	}

	buf := make([]byte, ie.FileSize)
	if _, err := a.file.ReadAt(buf, int64(ie.Location)); err != nil {
		return nil, errkind.New(errkind.TruncatedInput, "dbpf.Archive.GetEntry", err)
	}

	e := &Entry{tgi: tgi, data: buf, compressed: a.compressionDir.contains(tgi)}
	ie.entry = e
	return e, nil
}

// Remove marks every index entry matching tgi as Deleted. Entries are not
// physically discarded until the next Save.
func (a *Archive) Remove(tgi TGI) {
	for _, ie := range a.index {
		if ie.TGI == tgi {
			ie.State = StateDeleted
		}
	}
	a.dirty = true
}

// Index returns a snapshot of the archive's current index entries.
func (a *Archive) Index() []IndexEntry {
	out := make([]IndexEntry, len(a.index))
	for i, ie := range a.index {
		out[i] = *ie
	}
	return out
}

// CompressionDirectory returns a snapshot of the archive's compression
// directory, ordered by TGI.
func (a *Archive) CompressionDirectory() []CompressionEntry {
	out := make([]CompressionEntry, 0, a.compressionDir.len())
	for t, size := range a.compressionDir.entries {
		out = append(out, CompressionEntry{TGI: t, UncompressedSize: size})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TGI.less(out[j].TGI) })
	return out
}

// Dirty reports whether the archive has unsaved Add/Remove calls pending.
func (a *Archive) Dirty() bool { return a.dirty }

// Close releases the archive's backing file handle, if any. It does not
// save pending changes.
func (a *Archive) Close() error {
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	if err != nil {
		return errkind.New(errkind.LogicError, "dbpf.Archive.Close", err)
	}
	return nil
}

// Save writes the archive back to the path it was opened from or most
// recently saved to. It fails if the archive has no associated path yet.
func (a *Archive) Save() error {
	if a.path == "" {
		return errkind.New(errkind.LogicError, "dbpf.Archive.Save", errors.New("archive has no associated path; use SaveAs"))
	}
	return a.saveTo(a.path)
}

// SaveAs writes the archive to path, which becomes its associated path on
// success. Saving over the archive's currently open file is done through
// a temp file and an atomic rename so a failed save never clobbers the
// original.
func (a *Archive) SaveAs(path string) error {
	return a.saveTo(path)
}

func (a *Archive) saveTo(path string) error {
	sameFile := a.file != nil && samePath(a.path, path)

	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "dbpf_*.tmp")
	if err != nil {
		return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if err := a.writeTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
	}

	if sameFile {
		if err := a.file.Close(); err != nil {
			return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
		}
		a.file = nil
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
	}
	a.file = f
	a.path = path
	a.dirty = false
	return nil
}

// writeTo serializes the archive into f in the order described by the
// save pipeline: provisional header, surviving entries in their current
// order, the rebuilt compression directory, the index, then the final
// header.
func (a *Archive) writeTo(f *os.File) error {
	if _, err := f.Write(make([]byte, headerSize)); err != nil {
		return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
	}

	// A TGI shared by more than one surviving entry can have at most one
	// compression-directory record, so entries in that situation are
	// written in their current compressed/uncompressed state rather than
	// freshly (re)compressed, which would otherwise produce two differently
	// sized compressed blobs claiming the same uncompressed size.
	tgiCount := make(map[TGI]int)
	for _, ie := range a.index {
		if ie.State != StateDeleted && ie.TGI != compressionDirectoryTGI {
			tgiCount[ie.TGI]++
		}
	}

	newCompDir := newCompressionDirectory()
	newIndex := make([]*IndexEntry, 0, len(a.index))

	for _, ie := range a.index {
		if ie.State == StateDeleted || ie.TGI == compressionDirectoryTGI {
			continue
		}

		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
		}

		var written int
		switch ie.State {
		case StateNew, StateModified:
			duplicate := tgiCount[ie.TGI] > 1

			var payload []byte
			var compressed bool
			if duplicate {
				payload, compressed = ie.entry.data, ie.entry.compressed
				a.logger.Debug("dbpf: tgi shared by multiple surviving entries, skipping compression",
					"tgi", ie.TGI.String())
			} else {
				payload, compressed = ie.entry.serialize(a.logger)
			}

			if _, err := f.Write(payload); err != nil {
				return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
			}
			written = len(payload)
			if compressed && !duplicate {
				uncompressed, err := ie.entry.UncompressedBytes()
				if err != nil {
					return err
				}
				newCompDir.setIfAbsent(ie.TGI, uint32(len(uncompressed)))
			}

		default: // StateNormal
			if a.file == nil {
				return errkind.New(errkind.LogicError, "dbpf.Archive.Save", errors.New("normal entry has no backing file to copy from"))
			}
			buf := make([]byte, ie.FileSize)
			if _, err := a.file.ReadAt(buf, int64(ie.Location)); err != nil {
				return errkind.New(errkind.TruncatedInput, "dbpf.Archive.Save", err)
			}
			if _, err := f.Write(buf); err != nil {
				return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
			}
			written = len(buf)
			if size, ok := a.compressionDir.uncompressedSize(ie.TGI); ok {
				newCompDir.setIfAbsent(ie.TGI, size)
			}
		}

		newIndex = append(newIndex, &IndexEntry{
			TGI:      ie.TGI,
			Location: uint32(pos),
			FileSize: uint32(written),
			State:    StateNormal,
			entry:    ie.entry,
		})
	}

	if newCompDir.len() > 0 {
		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
		}
		cdBytes, err := newCompDir.bytes()
		if err != nil {
			return err
		}
		if _, err := f.Write(cdBytes); err != nil {
			return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
		}
		newIndex = append(newIndex, &IndexEntry{
			TGI:      compressionDirectoryTGI,
			Location: uint32(pos),
			FileSize: uint32(len(cdBytes)),
			State:    StateNormal,
		})
	}

	indexPos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
	}
	for _, ie := range newIndex {
		rec := rawIndexEntry{Type: ie.TGI.Type, Group: ie.TGI.Group, Instance: ie.TGI.Instance, Location: ie.Location, FileSize: ie.FileSize}
		b, err := restruct.Pack(binary.LittleEndian, &rec)
		if err != nil {
			return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
		}
		if _, err := f.Write(b); err != nil {
			return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
		}
	}

	a.header.IndexEntryCount = uint32(len(newIndex))
	a.header.IndexOffset = uint32(indexPos)
	a.header.IndexSize = uint32(len(newIndex)) * indexEntrySize
	a.header.DateModified = uint32(time.Now().Unix())

	headerBytes, err := a.header.bytes()
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(headerBytes, 0); err != nil {
		return errkind.New(errkind.LogicError, "dbpf.Archive.Save", err)
	}

	a.index = newIndex
	a.compressionDir = newCompDir
	return nil
}

// findIndexEntry returns the first non-deleted index entry matching tgi,
// or nil.
func (a *Archive) findIndexEntry(tgi TGI) *IndexEntry {
	for _, ie := range a.index {
		if ie.TGI == tgi && ie.State != StateDeleted {
			return ie
		}
	}
	return nil
}

func samePath(a, b string) bool {
	pa, errA := filepath.Abs(a)
	pb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return pa == pb
}
