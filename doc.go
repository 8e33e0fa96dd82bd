// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package dbpf provides pure Go support for reading and writing DBPF
(Database Packed File) archives, the indexed blob container format used
by SimCity 4.

DBPF is a typed, indexed archive: a 96-byte header points at an index of
fixed-size records, each identified by a (type, group, instance) triple
(see [TGI]). Individual records may be QFS/RefPack-compressed; which ones
are, and their uncompressed sizes, is tracked in a special compression
directory record alongside the index. Two record formats are available in
the subpackages exemplar and ltext.

# Basic usage

Creating an archive:

	archive := dbpf.Create()
	archive.Add(dbpf.TGI{Type: 0x6534284A, Group: 1, Instance: 2},
		[]byte("Hello, world!\n"), true)
	if err := archive.SaveAs("city.sc4"); err != nil {
		log.Fatal(err)
	}

Reading one back:

	archive, err := dbpf.Open("city.sc4")
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	entry, err := archive.GetEntry(dbpf.TGI{Type: 0x6534284A, Group: 1, Instance: 2})
	if err != nil {
		log.Fatal(err)
	}
	data, err := entry.UncompressedBytes()

This package does not model concurrent access to a single [Archive]; an
archive is owned by one caller at a time.
*/
package dbpf
