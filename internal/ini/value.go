package ini

import (
	"strconv"
	"strings"
)

// ValueKind classifies how a stored value reads by convention.
type ValueKind string

const (
	KindText  ValueKind = "text"
	KindBool  ValueKind = "bool"
	KindInt   ValueKind = "int"
	KindFloat ValueKind = "float"
)

// Typed is a boundary view of a text value. The Document never stores it.
type Typed struct {
	Kind  ValueKind
	Text  string
	Bool  bool
	Int   int64
	Float float64
}

// Any returns the Go value matching Kind, for encoders such as JSON.
func (t Typed) Any() any {
	switch t.Kind {
	case KindBool:
		return t.Bool
	case KindInt:
		return t.Int
	case KindFloat:
		return t.Float
	default:
		return t.Text
	}
}

// Interpret reads value as bool ("True"/"False", any case), integer, float or
// text, in that order. "1" and "0" are integers; callers that know a key is a
// toggle can use Bool on the result themselves.
func Interpret(value string) Typed {
	t := Typed{Kind: KindText, Text: value}
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "true":
		t.Kind, t.Bool = KindBool, true
		return t
	case "false":
		t.Kind, t.Bool = KindBool, false
		return t
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		t.Kind, t.Int = KindInt, i
		return t
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !strings.ContainsAny(v, "xXnN") {
		t.Kind, t.Float = KindFloat, f
		return t
	}
	return t
}
