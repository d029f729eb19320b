package m3u8

/*
 This file defines the attribute-list grammar of HLS tags.
*/

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind is the syntactic type of an attribute value.
type ValueKind uint8

const (
	KindEnumerated     ValueKind = iota // enumerated-string, e.g. METHOD=AES-128
	KindQuotedString                    // quoted-string, e.g. URI="key.bin"
	KindDecimalInteger                  // decimal-integer, e.g. BANDWIDTH=1280000
	KindDecimalFloat                    // signed-decimal-floating-point, e.g. TIME-OFFSET=-2.5
	KindHexSequence                     // hexadecimal-sequence, e.g. IV=0x1A2B
	KindResolution                      // decimal-resolution, e.g. RESOLUTION=1280x720
)

func (k ValueKind) String() string {
	switch k {
	case KindEnumerated:
		return "enumerated-string"
	case KindQuotedString:
		return "quoted-string"
	case KindDecimalInteger:
		return "decimal-integer"
	case KindDecimalFloat:
		return "decimal-floating-point"
	case KindHexSequence:
		return "hexadecimal-sequence"
	case KindResolution:
		return "decimal-resolution"
	}
	return "unknown"
}

// Value is an attribute value. Raw excludes the quotes of a quoted-string
// and includes the 0x prefix of a hexadecimal-sequence.
type Value struct {
	Kind ValueKind
	Raw  string
}

// Attribute is one NAME=VALUE pair of an attribute list.
type Attribute struct {
	Name  string
	Value Value
}

// AttributeList keeps attributes in their order of appearance, unknown
// names included.
type AttributeList []Attribute

// Get returns the first attribute with the given name.
func (l AttributeList) Get(name string) (Value, bool) {
	for _, a := range l {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// ParseAttributeList parses a payload of the form KEY=VALUE,KEY="VALUE",...
// Commas inside quoted strings do not separate attributes.
func ParseAttributeList(payload string) (AttributeList, error) {
	var list AttributeList
	i, n := 0, len(payload)
	fail := func(reason string) error {
		return &MalformedAttributeListError{Payload: payload, Offset: i, Reason: reason}
	}
	for i < n {
		for i < n && payload[i] == ' ' {
			i++
		}
		start := i
		for i < n && payload[i] != '=' && payload[i] != ',' && payload[i] != '"' {
			i++
		}
		if i == n || payload[i] != '=' {
			return nil, fail("missing '='")
		}
		name := strings.TrimSpace(payload[start:i])
		if name == "" {
			return nil, fail("empty attribute name")
		}
		i++ // '='

		var v Value
		if i < n && payload[i] == '"' {
			i++
			start = i
			for i < n && payload[i] != '"' {
				if payload[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			if i == n {
				return nil, fail("unbalanced quotes")
			}
			v = Value{Kind: KindQuotedString, Raw: payload[start:i]}
			i++ // closing quote
			for i < n && payload[i] == ' ' {
				i++
			}
			if i < n && payload[i] != ',' {
				return nil, fail("unexpected character after quoted string")
			}
		} else {
			start = i
			for i < n && payload[i] != ',' {
				if payload[i] == '"' {
					return nil, fail("unbalanced quotes")
				}
				i++
			}
			raw := strings.TrimSpace(payload[start:i])
			if raw == "" {
				return nil, fail("empty value for " + name)
			}
			v = Value{Kind: classifyToken(raw), Raw: raw}
		}
		list = append(list, Attribute{Name: name, Value: v})
		if i < n {
			i++ // ','
		}
	}
	return list, nil
}

// classifyToken returns the kind of an unquoted attribute value.
func classifyToken(s string) ValueKind {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') && isHex(s[2:]) {
		return KindHexSequence
	}
	if w, h, ok := strings.Cut(s, "x"); ok && isDigits(w) && isDigits(h) {
		return KindResolution
	}
	if isDigits(s) {
		return KindDecimalInteger
	}
	if isDecimalFloat(s) {
		return KindDecimalFloat
	}
	return KindEnumerated
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return s != ""
}

func isDecimalFloat(s string) bool {
	s = strings.TrimPrefix(s, "-")
	whole, frac, dot := strings.Cut(s, ".")
	if !dot {
		return isDigits(whole)
	}
	return (whole == "" || isDigits(whole)) && isDigits(frac)
}

func (v Value) String() string {
	return v.Raw
}

func (v Value) expect(kinds ...ValueKind) error {
	for _, k := range kinds {
		if v.Kind == k {
			return nil
		}
	}
	return fmt.Errorf("expected %s, got %s %q", kinds[0], v.Kind, v.Raw)
}

// Uint returns a decimal-integer value.
func (v Value) Uint() (uint64, error) {
	if err := v.expect(KindDecimalInteger); err != nil {
		return 0, err
	}
	return strconv.ParseUint(v.Raw, 10, 64)
}

// Int returns a decimal-integer value that fits an int64.
func (v Value) Int() (int64, error) {
	if err := v.expect(KindDecimalInteger); err != nil {
		return 0, err
	}
	return strconv.ParseInt(v.Raw, 10, 64)
}

// Float returns a decimal-integer or decimal-floating-point value.
func (v Value) Float() (float64, error) {
	if err := v.expect(KindDecimalFloat, KindDecimalInteger); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(v.Raw, 64)
}

// Bool returns true for YES and false for NO.
func (v Value) Bool() (bool, error) {
	switch {
	case v.Kind == KindEnumerated && v.Raw == "YES":
		return true, nil
	case v.Kind == KindEnumerated && v.Raw == "NO":
		return false, nil
	}
	return false, fmt.Errorf("value %q: %w", v.Raw, ErrNotYesOrNo)
}

// Resolution returns a decimal-resolution value.
func (v Value) Resolution() (Resolution, error) {
	if err := v.expect(KindResolution); err != nil {
		return Resolution{}, err
	}
	w, h, _ := strings.Cut(v.Raw, "x")
	width, err := strconv.ParseUint(w, 10, 64)
	if err != nil {
		return Resolution{}, err
	}
	height, err := strconv.ParseUint(h, 10, 64)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Width: width, Height: height}, nil
}
