package entity

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Card is one digitised business card.
type Card struct {
	Name   string   `json:"name" parquet:"name"`
	Phones []string `json:"phones" parquet:"phones,list"`
	Email  string   `json:"email" parquet:"email"`
	Other  []string `json:"other" parquet:"other,list"`
}

// Normalize replaces nil sequences with empty ones so the card always
// serialises with [] rather than null.
func (c *Card) Normalize() {
	if c.Phones == nil {
		c.Phones = []string{}
	}
	if c.Other == nil {
		c.Other = []string{}
	}
}

// Clone returns a deep copy.
func (c Card) Clone() Card {
	out := Card{Name: c.Name, Email: c.Email}
	out.Phones = append(make([]string, 0, len(c.Phones)), c.Phones...)
	out.Other = append(make([]string, 0, len(c.Other)), c.Other...)
	return out
}

// Field names an editable card field.
type Field string

const (
	FieldName   Field = "name"
	FieldPhones Field = "phones"
	FieldEmail  Field = "email"
	FieldOther  Field = "other"
)

// FieldKind says whether a field holds one string or a sequence of strings.
type FieldKind int

const (
	Scalar FieldKind = iota
	List
)

func (k FieldKind) String() string {
	if k == List {
		return "list"
	}
	return "scalar"
}

var fieldKinds = map[Field]FieldKind{
	FieldName:   Scalar,
	FieldPhones: List,
	FieldEmail:  Scalar,
	FieldOther:  List,
}

// Fields lists the card fields in display order.
func Fields() []Field {
	return []Field{FieldName, FieldPhones, FieldEmail, FieldOther}
}

// ParseField resolves a field name case-insensitively.
func ParseField(s string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	_, ok := fieldKinds[f]
	return f, ok
}

// KindOf reports the declared kind of f. Unknown fields report ok=false.
func KindOf(f Field) (FieldKind, bool) {
	k, ok := fieldKinds[f]
	return k, ok
}

// SplitList turns edited text into sequence values: split on ';', trim, drop empties.
func SplitList(value string) []string {
	parts := strings.Split(value, constants.ListDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Set writes value into field f according to the field's declared kind.
func (c *Card) Set(f Field, value string) error {
	kind, ok := KindOf(f)
	if !ok {
		return fmt.Errorf("unknown field %q", f)
	}
	if kind == List {
		switch f {
		case FieldPhones:
			c.Phones = SplitList(value)
		case FieldOther:
			c.Other = SplitList(value)
		}
		return nil
	}
	switch f {
	case FieldName:
		c.Name = strings.TrimSpace(value)
	case FieldEmail:
		c.Email = strings.TrimSpace(value)
	}
	return nil
}

// Text renders field f as editable text, lists joined with "; ".
func (c Card) Text(f Field) string {
	switch f {
	case FieldName:
		return c.Name
	case FieldEmail:
		return c.Email
	case FieldPhones:
		return strings.Join(c.Phones, constants.ListJoiner)
	case FieldOther:
		return strings.Join(c.Other, constants.ListJoiner)
	}
	return ""
}
