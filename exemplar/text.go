// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package exemplar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sc4pak/go-dbpf/errkind"
)

// Text-form exemplars are never written by this package; decodeText only
// exists so a text exemplar read from disk can be inspected or converted
// to the binary form via Encode.

var (
	parentCohortLineRe = regexp.MustCompile(`^ParentCohort=Key:\{(?:0[xX])?([0-9A-Fa-f]+),(?:0[xX])?([0-9A-Fa-f]+),(?:0[xX])?([0-9A-Fa-f]+)\}$`)
	propCountLineRe    = regexp.MustCompile(`^PropCount=(?:0[xX])?([0-9A-Fa-f]+)$`)
	propertyLineRe     = regexp.MustCompile(`^0[xX]([0-9A-Fa-f]{8}):\{"[^"]*"\}=([A-Za-z0-9]+):(?:0[xX])?([0-9A-Fa-f]+):\{(.*)\}$`)
)

func decodeText(raw []byte, isCohort bool) (*Exemplar, error) {
	if len(raw) <= signatureSize || raw[signatureSize] != '\n' {
		return nil, errkind.New(errkind.MalformedRecord, "exemplar.decodeText",
			errors.New("missing newline after the 8-byte signature"))
	}

	lines := strings.Split(string(raw[signatureSize+1:]), "\n")
	if len(lines) < 2 {
		return nil, errkind.New(errkind.MalformedRecord, "exemplar.decodeText",
			errors.New("missing ParentCohort/PropCount header lines"))
	}

	parent, err := parseParentCohortLine(strings.TrimRight(lines[0], "\r"))
	if err != nil {
		return nil, err
	}
	count, err := parsePropCountLine(strings.TrimRight(lines[1], "\r"))
	if err != nil {
		return nil, err
	}

	e := New(isCohort, parent)
	for i := 0; i < count && 2+i < len(lines); i++ {
		line := strings.TrimRight(lines[2+i], "\r")
		if line == "" {
			continue
		}
		id, value, err := parsePropertyLine(line)
		if err != nil {
			return nil, err
		}
		e.Set(id, value)
	}
	return e, nil
}

// parseParentCohortLine reads the line's non-standard field order: group,
// instance, type.
func parseParentCohortLine(line string) (TGI, error) {
	m := parentCohortLineRe.FindStringSubmatch(line)
	if m == nil {
		return TGI{}, errkind.New(errkind.MalformedRecord, "exemplar.decodeText",
			errors.Errorf("malformed ParentCohort line %q", line))
	}
	group, _ := strconv.ParseUint(m[1], 16, 32)
	instance, _ := strconv.ParseUint(m[2], 16, 32)
	typ, _ := strconv.ParseUint(m[3], 16, 32)
	return TGI{Type: uint32(typ), Group: uint32(group), Instance: uint32(instance)}, nil
}

func parsePropCountLine(line string) (int, error) {
	m := propCountLineRe.FindStringSubmatch(line)
	if m == nil {
		return 0, errkind.New(errkind.MalformedRecord, "exemplar.decodeText",
			errors.Errorf("malformed PropCount line %q", line))
	}
	n, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return 0, errkind.New(errkind.MalformedRecord, "exemplar.decodeText", err)
	}
	return int(n), nil
}

func parsePropertyLine(line string) (uint32, PropertyValue, error) {
	m := propertyLineRe.FindStringSubmatch(line)
	if m == nil {
		return 0, nil, errkind.New(errkind.MalformedRecord, "exemplar.decodeText",
			errors.Errorf("malformed property line %q", line))
	}

	id, _ := strconv.ParseUint(m[1], 16, 32)
	typeName := m[2]
	repCount, err := strconv.ParseUint(m[3], 16, 32)
	if err != nil {
		return 0, nil, errkind.New(errkind.MalformedRecord, "exemplar.decodeText", err)
	}
	if repCount == 0 {
		repCount = 1
	}

	value, err := parseTextValues(typeName, int(repCount), m[4])
	if err != nil {
		return 0, nil, err
	}
	return uint32(id), value, nil
}

func parseTextValues(typeName string, repCount int, body string) (PropertyValue, error) {
	if typeName == "String" {
		return StringValue(strings.Trim(body, `"`)), nil
	}

	parts := strings.Split(body, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) != repCount {
		return nil, errkind.New(errkind.MalformedRecord, "exemplar.decodeText",
			errors.Errorf("property declares rep_count %d but lists %d values", repCount, len(parts)))
	}

	switch typeName {
	case "Bool":
		out := make(BoolValues, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseUint(trimHexPrefix(p), 16, 8)
			if err != nil {
				return nil, textValueError(typeName, p, err)
			}
			out[i] = v != 0
		}
		return out, nil
	case "Uint8":
		out := make(UInt8Values, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseUint(trimHexPrefix(p), 16, 8)
			if err != nil {
				return nil, textValueError(typeName, p, err)
			}
			out[i] = uint8(v)
		}
		return out, nil
	case "Uint16":
		out := make(UInt16Values, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseUint(trimHexPrefix(p), 16, 16)
			if err != nil {
				return nil, textValueError(typeName, p, err)
			}
			out[i] = uint16(v)
		}
		return out, nil
	case "Uint32":
		out := make(UInt32Values, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseUint(trimHexPrefix(p), 16, 32)
			if err != nil {
				return nil, textValueError(typeName, p, err)
			}
			out[i] = uint32(v)
		}
		return out, nil
	case "Sint32":
		out := make(SInt32Values, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseInt(trimHexPrefix(p), 16, 32)
			if err != nil {
				return nil, textValueError(typeName, p, err)
			}
			out[i] = int32(v)
		}
		return out, nil
	case "Sint64":
		out := make(SInt64Values, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseInt(trimHexPrefix(p), 16, 64)
			if err != nil {
				return nil, textValueError(typeName, p, err)
			}
			out[i] = v
		}
		return out, nil
	case "Float32":
		out := make(Float32Values, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 32)
			if err != nil {
				return nil, textValueError(typeName, p, err)
			}
			out[i] = float32(v)
		}
		return out, nil
	default:
		return nil, errkind.New(errkind.MalformedRecord, "exemplar.decodeText",
			errors.Errorf("unknown property type name %q", typeName))
	}
}

func trimHexPrefix(s string) string {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func textValueError(typeName, value string, err error) error {
	return errkind.New(errkind.MalformedRecord, "exemplar.decodeText",
		errors.Errorf("parsing %s value %q: %v", typeName, value, err))
}
