package itemset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind selects how raw item tokens are interpreted.
type Kind int

const (
	// KindInt parses tokens as base-10 signed 64-bit integers.
	KindInt Kind = iota
	// KindString keeps tokens as NFC-normalized text.
	KindString
)

// String returns the flag/config spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts "int" or "string" into a Kind.
// An empty string yields KindInt.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "int":
		return KindInt, nil
	case "string":
		return KindString, nil
	default:
		return KindInt, fmt.Errorf("invalid item kind %q: must be int or string", s)
	}
}

// Label is an external item identifier in canonical form.
//
// Integer labels compare numerically and render as JSON numbers.
// String labels compare byte-wise on their NFC form and render as JSON strings.
type Label struct {
	text    string
	n       int64
	numeric bool
}

// IntLabel returns the label for integer item n.
func IntLabel(n int64) Label {
	return Label{text: strconv.FormatInt(n, 10), n: n, numeric: true}
}

// StringLabel returns the label for text item s.
func StringLabel(s string) Label {
	return Label{text: norm.NFC.String(s)}
}

// ParseLabel interprets a raw token according to kind.
// Surrounding whitespace is ignored.
func ParseLabel(raw string, kind Kind) (Label, error) {
	tok := strings.TrimSpace(raw)
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return Label{}, err
		}
		return IntLabel(n), nil
	case KindString:
		if tok == "" {
			return Label{}, fmt.Errorf("empty item")
		}
		return StringLabel(tok), nil
	default:
		return Label{}, fmt.Errorf("unsupported item kind %v", kind)
	}
}

// String returns the canonical text of the label.
func (l Label) String() string {
	return l.text
}

// Int returns the integer value and whether the label is numeric.
func (l Label) Int() (int64, bool) {
	return l.n, l.numeric
}

// Compare orders labels: numeric labels before text labels, numeric labels by
// value, text labels byte-wise.
func (l Label) Compare(o Label) int {
	switch {
	case l.numeric && o.numeric:
		switch {
		case l.n < o.n:
			return -1
		case l.n > o.n:
			return 1
		}
		return 0
	case l.numeric:
		return -1
	case o.numeric:
		return 1
	}
	return strings.Compare(l.text, o.text)
}

// MarshalJSON renders numeric labels as numbers and text labels as strings.
func (l Label) MarshalJSON() ([]byte, error) {
	if l.numeric {
		return []byte(l.text), nil
	}
	return json.Marshal(l.text)
}
