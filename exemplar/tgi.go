// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package exemplar

import "fmt"

// TGI identifies a DBPF record by its (type, group, instance) triple. It
// mirrors the root package's TGI field-for-field; this package keeps its
// own copy so it does not need to import the root package to describe a
// parent cohort reference.
type TGI struct {
	Type     uint32
	Group    uint32
	Instance uint32
}

func (t TGI) String() string {
	return fmt.Sprintf("%08X-%08X-%08X", t.Type, t.Group, t.Instance)
}
