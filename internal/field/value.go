package field

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind enumerates the representable value shapes.
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindString  Kind = "string"
	KindEnum    Kind = "enum"
	KindInt     Kind = "int"
	KindBool    Kind = "bool"
	KindSet     Kind = "set"
)

// Value is an immutable tagged union for field values.
// The zero Value is the explicit unknown state.
type Value struct {
	kind Kind
	str  string
	num  int64
	flag bool
	set  []string
}

// Unknown returns the explicit unknown value.
func Unknown() Value {
	return Value{kind: KindUnknown}
}

// String wraps a free-form string value.
func String(value string) Value {
	return Value{kind: KindString, str: value}
}

// Enum wraps a canonical-key value.
func Enum(key string) Value {
	return Value{kind: KindEnum, str: key}
}

// Int wraps an integer value.
func Int(value int64) Value {
	return Value{kind: KindInt, num: value}
}

// Bool wraps a boolean value.
func Bool(value bool) Value {
	return Value{kind: KindBool, flag: value}
}

// Set wraps an ordered string set; duplicates are dropped, order preserved.
func Set(values ...string) Value {
	seen := make(map[string]struct{}, len(values))
	ordered := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		ordered = append(ordered, v)
	}
	return Value{kind: KindSet, set: ordered}
}

// Kind reports the value shape. The zero Value reports KindUnknown.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindUnknown
	}
	return v.kind
}

// IsUnknown reports whether the value is the explicit unknown state.
func (v Value) IsUnknown() bool {
	return v.Kind() == KindUnknown
}

// Str returns the string payload for string and enum values.
func (v Value) Str() string {
	return v.str
}

// Num returns the integer payload.
func (v Value) Num() int64 {
	return v.num
}

// Flag returns the boolean payload.
func (v Value) Flag() bool {
	return v.flag
}

// Members returns a copy of the set payload.
func (v Value) Members() []string {
	cp := make([]string, len(v.set))
	copy(cp, v.set)
	return cp
}

// Equal reports whether two values carry the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindUnknown:
		return true
	case KindString, KindEnum:
		return v.str == other.str
	case KindInt:
		return v.num == other.num
	case KindBool:
		return v.flag == other.flag
	case KindSet:
		if len(v.set) != len(other.set) {
			return false
		}
		for i := range v.set {
			if v.set[i] != other.set[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Display renders a human-readable form for reports and tables.
func (v Value) Display() string {
	switch v.Kind() {
	case KindUnknown:
		return "(unknown)"
	case KindString, KindEnum:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindSet:
		return strings.Join(v.set, ", ")
	default:
		return ""
	}
}

type valueJSON struct {
	Kind   Kind     `json:"kind"`
	String *string  `json:"string,omitempty"`
	Int    *int64   `json:"int,omitempty"`
	Bool   *bool    `json:"bool,omitempty"`
	Set    []string `json:"set,omitempty"`
}

// MarshalJSON encodes the value with an explicit kind tag.
func (v Value) MarshalJSON() ([]byte, error) {
	payload := valueJSON{Kind: v.Kind()}
	switch v.Kind() {
	case KindString, KindEnum:
		s := v.str
		payload.String = &s
	case KindInt:
		n := v.num
		payload.Int = &n
	case KindBool:
		b := v.flag
		payload.Bool = &b
	case KindSet:
		payload.Set = v.Members()
	}
	return json.Marshal(payload)
}

// UnmarshalJSON decodes a tagged value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var payload valueJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	switch payload.Kind {
	case KindUnknown, "":
		*v = Unknown()
	case KindString:
		if payload.String == nil {
			return fmt.Errorf("field value: string kind without payload")
		}
		*v = String(*payload.String)
	case KindEnum:
		if payload.String == nil {
			return fmt.Errorf("field value: enum kind without payload")
		}
		*v = Enum(*payload.String)
	case KindInt:
		if payload.Int == nil {
			return fmt.Errorf("field value: int kind without payload")
		}
		*v = Int(*payload.Int)
	case KindBool:
		if payload.Bool == nil {
			return fmt.Errorf("field value: bool kind without payload")
		}
		*v = Bool(*payload.Bool)
	case KindSet:
		*v = Set(payload.Set...)
	default:
		return fmt.Errorf("field value: unsupported kind %q", payload.Kind)
	}
	return nil
}

// Values is a field-keyed value map with deterministic JSON encoding.
type Values map[Key]Value

// Clone returns a copy of the map.
func (m Values) Clone() Values {
	if m == nil {
		return nil
	}
	cp := make(Values, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// SortedKeys returns the map keys in lexical order.
func (m Values) SortedKeys() []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
