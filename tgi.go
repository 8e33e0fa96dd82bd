// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package dbpf

import "fmt"

// TGI identifies a DBPF record by its (type, group, instance) triple.
// Equality is structural over all three fields, which makes TGI usable
// directly as a map key.
type TGI struct {
	Type     uint32
	Group    uint32
	Instance uint32
}

// Empty is the zero-valued TGI.
var Empty = TGI{}

func (t TGI) String() string {
	return fmt.Sprintf("%08X-%08X-%08X", t.Type, t.Group, t.Instance)
}

// less orders TGIs by Type, then Group, then Instance. Used to produce a
// deterministic on-disk order for records that have no other natural
// ordering (the compression directory).
func (t TGI) less(o TGI) bool {
	if t.Type != o.Type {
		return t.Type < o.Type
	}
	if t.Group != o.Group {
		return t.Group < o.Group
	}
	return t.Instance < o.Instance
}
