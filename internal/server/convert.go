package server

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

func stringsToAny(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

// cardToStruct renders a card in its JSON field layout.
func cardToStruct(c entity.Card) (*structpb.Struct, error) {
	c = c.Clone()
	return structpb.NewStruct(map[string]any{
		"name":   c.Name,
		"phones": stringsToAny(c.Phones),
		"email":  c.Email,
		"other":  stringsToAny(c.Other),
	})
}

// CardFromStruct is the inverse of the wire rendering used by ListCards.
func CardFromStruct(s *structpb.Struct) entity.Card {
	var c entity.Card
	f := s.GetFields()
	c.Name = f["name"].GetStringValue()
	c.Email = f["email"].GetStringValue()
	c.Phones = listStrings(f["phones"])
	c.Other = listStrings(f["other"])
	c.Normalize()
	return c
}

func listStrings(v *structpb.Value) []string {
	out := []string{}
	for _, item := range v.GetListValue().GetValues() {
		out = append(out, item.GetStringValue())
	}
	return out
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func intField(s *structpb.Struct, key string) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", common.ErrInvalidInput, key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != float64(int(n.NumberValue)) {
		return 0, fmt.Errorf("%w: %s must be an integer", common.ErrInvalidInput, key)
	}
	return int(n.NumberValue), nil
}
