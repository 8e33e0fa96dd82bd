// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package dbpf

// EntryState is the lifecycle state of an index entry between opens and
// saves.
type EntryState int

const (
	// StateNormal is an entry loaded unchanged from the backing file.
	StateNormal EntryState = iota
	// StateNew is an entry added via Add with no on-disk location yet.
	StateNew
	// StateModified is a Normal entry whose payload has since changed.
	// Nothing in this package's public surface currently produces this
	// state; it exists so a future in-place update API has somewhere to
	// route to, and so Save's dispatch already handles it correctly.
	StateModified
	// StateDeleted is an entry marked by Remove; it is dropped at the next
	// Save and never written again.
	StateDeleted
)

const indexEntrySize = 20

// rawIndexEntry is the 20-byte on-disk shape of one index record.
type rawIndexEntry struct {
	Type     uint32
	Group    uint32
	Instance uint32
	Location uint32
	FileSize uint32
}

// IndexEntry describes one record's on-disk location (when known) plus
// its in-memory lifecycle state. The payload itself, when loaded, lives
// in entry.
type IndexEntry struct {
	TGI      TGI
	Location uint32
	FileSize uint32
	State    EntryState

	entry *Entry // nil until GetEntry first materializes the payload
}
