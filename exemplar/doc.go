// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package exemplar implements the Exemplar/Cohort record format: a typed
property bag keyed by 32-bit ID, found inside DBPF archive entries.

A record carries an 8-byte signature identifying it as a binary or text
exemplar or cohort, a parent cohort reference, and an ordered collection
of [Property] values drawn from a closed set of wire types. Decoding
accepts both the binary and text wire forms; [Exemplar.Encode] only ever
produces the binary form.

This package defines its own [TGI] rather than importing the root
archive package's, so it stays a leaf package with nothing calling back
into it.
*/
package exemplar
