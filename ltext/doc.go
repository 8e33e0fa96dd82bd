// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package ltext implements the LTEXT record: a single localized string
stored behind a 4-byte header of character length and encoding.

Three encodings are recognized on read (active-codepage, UTF-8,
UTF-16LE); [LText.Encode] always emits UTF-16LE, the only form the game
itself writes.
*/
package ltext
