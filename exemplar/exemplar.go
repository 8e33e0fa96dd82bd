// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package exemplar

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/sc4pak/go-dbpf/errkind"
)

const signatureSize = 8

var (
	binaryExemplarSignature = []byte("EQZB1###")
	binaryCohortSignature   = []byte("CQZB1###")
	textExemplarSignature   = []byte("EQZT1###")
	textCohortSignature     = []byte("CQZT1###")
)

const (
	keyTypeSingle = 0x00
	keyTypeArray  = 0x80
)

// Exemplar is a parsed Exemplar or Cohort record: a parent reference plus
// an ordered bag of typed properties. A cohort and an exemplar are
// structurally identical; IsCohort records which signature produced this
// value.
type Exemplar struct {
	IsCohort     bool
	ParentCohort TGI

	properties map[uint32]PropertyValue
}

// New returns an empty exemplar (or cohort, if isCohort) with the given
// parent reference.
func New(isCohort bool, parent TGI) *Exemplar {
	return &Exemplar{IsCohort: isCohort, ParentCohort: parent, properties: make(map[uint32]PropertyValue)}
}

// Set assigns the property with the given ID, replacing any existing
// value.
func (e *Exemplar) Set(id uint32, v PropertyValue) {
	if e.properties == nil {
		e.properties = make(map[uint32]PropertyValue)
	}
	e.properties[id] = v
}

// Get returns the property with the given ID, if present.
func (e *Exemplar) Get(id uint32) (PropertyValue, bool) {
	v, ok := e.properties[id]
	return v, ok
}

// Delete removes the property with the given ID, if present.
func (e *Exemplar) Delete(id uint32) {
	delete(e.properties, id)
}

// Properties returns the exemplar's properties ordered ascending by ID.
func (e *Exemplar) Properties() []Property {
	out := make([]Property, 0, len(e.properties))
	for id, v := range e.properties {
		out = append(out, Property{ID: id, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FromBytes parses an exemplar or cohort record, in either its binary or
// text wire form, identified by its 8-byte signature.
func FromBytes(raw []byte) (*Exemplar, error) {
	if len(raw) < signatureSize {
		return nil, errkind.New(errkind.TruncatedInput, "exemplar.FromBytes",
			errors.Errorf("need at least %d signature bytes, got %d", signatureSize, len(raw)))
	}

	sig := raw[:signatureSize]
	switch {
	case bytes.Equal(sig, binaryExemplarSignature):
		return decodeBinary(raw[signatureSize:], false)
	case bytes.Equal(sig, binaryCohortSignature):
		return decodeBinary(raw[signatureSize:], true)
	case bytes.Equal(sig, textExemplarSignature):
		return decodeText(raw, false)
	case bytes.Equal(sig, textCohortSignature):
		return decodeText(raw, true)
	default:
		return nil, errkind.New(errkind.MalformedRecord, "exemplar.FromBytes",
			errors.Errorf("unrecognized exemplar signature %q", sig))
	}
}

func decodeBinary(body []byte, isCohort bool) (*Exemplar, error) {
	r := bytes.NewReader(body)

	var parentRaw [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &parentRaw); err != nil {
		return nil, errkind.New(errkind.TruncatedInput, "exemplar.decodeBinary", err)
	}
	parent := TGI{Type: parentRaw[0], Group: parentRaw[1], Instance: parentRaw[2]}

	var propertyCount int32
	if err := binary.Read(r, binary.LittleEndian, &propertyCount); err != nil {
		return nil, errkind.New(errkind.TruncatedInput, "exemplar.decodeBinary", err)
	}
	if propertyCount < 0 {
		return nil, errkind.New(errkind.MalformedRecord, "exemplar.decodeBinary",
			errors.Errorf("negative property_count %d", propertyCount))
	}

	e := New(isCohort, parent)
	for i := int32(0); i < propertyCount; i++ {
		id, value, err := decodeProperty(r)
		if err != nil {
			return nil, err
		}
		e.Set(id, value)
	}
	return e, nil
}

func decodeProperty(r *bytes.Reader) (uint32, PropertyValue, error) {
	var head struct {
		ID       uint32
		DataType uint16
		KeyType  uint16
		Unused   uint8
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return 0, nil, errkind.New(errkind.TruncatedInput, "exemplar.decodeProperty", err)
	}

	repCount := int32(1)
	if head.KeyType == keyTypeArray {
		if err := binary.Read(r, binary.LittleEndian, &repCount); err != nil {
			return 0, nil, errkind.New(errkind.TruncatedInput, "exemplar.decodeProperty", err)
		}
	} else if head.KeyType != keyTypeSingle {
		return 0, nil, errkind.New(errkind.MalformedRecord, "exemplar.decodeProperty",
			errors.Errorf("unknown key type 0x%02X", head.KeyType))
	}
	if repCount < 0 {
		return 0, nil, errkind.New(errkind.MalformedRecord, "exemplar.decodeProperty",
			errors.Errorf("negative rep_count %d", repCount))
	}

	value, err := readValues(r, PropertyDataType(head.DataType), int(repCount))
	if err != nil {
		return 0, nil, err
	}
	return head.ID, value, nil
}

func readValues(r *bytes.Reader, dt PropertyDataType, repCount int) (PropertyValue, error) {
	switch dt {
	case Boolean:
		raw := make([]byte, repCount)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, errkind.New(errkind.TruncatedInput, "exemplar.readValues", err)
		}
		out := make(BoolValues, repCount)
		for i, b := range raw {
			out[i] = b != 0
		}
		return out, nil
	case UInt8:
		raw := make([]byte, repCount)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, errkind.New(errkind.TruncatedInput, "exemplar.readValues", err)
		}
		return UInt8Values(raw), nil
	case UInt16:
		out := make(UInt16Values, repCount)
		if err := binary.Read(r, binary.LittleEndian, &out); err != nil {
			return nil, errkind.New(errkind.TruncatedInput, "exemplar.readValues", err)
		}
		return out, nil
	case UInt32:
		out := make(UInt32Values, repCount)
		if err := binary.Read(r, binary.LittleEndian, &out); err != nil {
			return nil, errkind.New(errkind.TruncatedInput, "exemplar.readValues", err)
		}
		return out, nil
	case SInt32:
		out := make(SInt32Values, repCount)
		if err := binary.Read(r, binary.LittleEndian, &out); err != nil {
			return nil, errkind.New(errkind.TruncatedInput, "exemplar.readValues", err)
		}
		return out, nil
	case SInt64:
		out := make(SInt64Values, repCount)
		if err := binary.Read(r, binary.LittleEndian, &out); err != nil {
			return nil, errkind.New(errkind.TruncatedInput, "exemplar.readValues", err)
		}
		return out, nil
	case Float32:
		out := make(Float32Values, repCount)
		if err := binary.Read(r, binary.LittleEndian, &out); err != nil {
			return nil, errkind.New(errkind.TruncatedInput, "exemplar.readValues", err)
		}
		return out, nil
	case String:
		raw := make([]byte, repCount)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, errkind.New(errkind.TruncatedInput, "exemplar.readValues", err)
		}
		return StringValue(raw), nil
	default:
		return nil, errkind.New(errkind.MalformedRecord, "exemplar.readValues",
			errors.Errorf("unknown property data type 0x%04X", uint16(dt)))
	}
}

// Encode serializes the exemplar to its binary wire form. The property
// collection is always written in ascending ID order; the text form is
// read-only and has no corresponding encoder.
func (e *Exemplar) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if e.IsCohort {
		buf.Write(binaryCohortSignature)
	} else {
		buf.Write(binaryExemplarSignature)
	}

	parentRaw := [3]uint32{e.ParentCohort.Type, e.ParentCohort.Group, e.ParentCohort.Instance}
	if err := binary.Write(&buf, binary.LittleEndian, parentRaw); err != nil {
		return nil, errkind.New(errkind.LogicError, "exemplar.Encode", err)
	}

	props := e.Properties()
	if err := binary.Write(&buf, binary.LittleEndian, int32(len(props))); err != nil {
		return nil, errkind.New(errkind.LogicError, "exemplar.Encode", err)
	}
	for _, p := range props {
		if err := encodeProperty(&buf, p); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeProperty(buf *bytes.Buffer, p Property) error {
	if p.Value == nil {
		return errkind.New(errkind.LogicError, "exemplar.Encode",
			errors.Errorf("property 0x%08X has a nil value", p.ID))
	}

	array := isArray(p.Value)
	keyType := uint16(keyTypeSingle)
	if array {
		keyType = keyTypeArray
	}

	head := struct {
		ID       uint32
		DataType uint16
		KeyType  uint16
		Unused   uint8
	}{ID: p.ID, DataType: uint16(p.Value.DataType()), KeyType: keyType}
	if err := binary.Write(buf, binary.LittleEndian, head); err != nil {
		return errkind.New(errkind.LogicError, "exemplar.Encode", err)
	}

	if array {
		if err := binary.Write(buf, binary.LittleEndian, int32(p.Value.count())); err != nil {
			return errkind.New(errkind.LogicError, "exemplar.Encode", err)
		}
	}

	return writeValues(buf, p.Value)
}

func writeValues(buf *bytes.Buffer, v PropertyValue) error {
	var err error
	switch vv := v.(type) {
	case BoolValues:
		raw := make([]byte, len(vv))
		for i, b := range vv {
			if b {
				raw[i] = 1
			}
		}
		_, err = buf.Write(raw)
	case UInt8Values:
		_, err = buf.Write(vv)
	case UInt16Values:
		err = binary.Write(buf, binary.LittleEndian, vv)
	case UInt32Values:
		err = binary.Write(buf, binary.LittleEndian, vv)
	case SInt32Values:
		err = binary.Write(buf, binary.LittleEndian, vv)
	case SInt64Values:
		err = binary.Write(buf, binary.LittleEndian, vv)
	case Float32Values:
		err = binary.Write(buf, binary.LittleEndian, vv)
	case StringValue:
		_, err = buf.WriteString(string(vv))
	default:
		return errkind.New(errkind.LogicError, "exemplar.Encode", errors.Errorf("unhandled property value type %T", v))
	}
	if err != nil {
		return errkind.New(errkind.LogicError, "exemplar.Encode", err)
	}
	return nil
}
