package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

func TestRegexExtractor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want entity.Card
	}{
		{
			name: "typical card",
			text: "John Smith\nAcme Corp\njohn@acme.com\n+1 415-555-0100",
			want: entity.Card{
				Name:   "John Smith",
				Phones: []string{"+1 415-555-0100"},
				Email:  "john@acme.com",
				Other:  []string{"Acme Corp"},
			},
		},
		{
			name: "empty text",
			text: "",
			want: entity.Card{Name: "N/A", Phones: []string{}, Email: "N/A", Other: []string{}},
		},
		{
			name: "whitespace only",
			text: "  \n\t\n   ",
			want: entity.Card{Name: "N/A", Phones: []string{}, Email: "N/A", Other: []string{}},
		},
		{
			name: "no capitalised line falls back to first candidate",
			text: "jane doe\nsales team",
			want: entity.Card{Name: "jane doe", Phones: []string{}, Email: "N/A", Other: []string{"sales team"}},
		},
		{
			name: "tie keeps earlier line",
			text: "Acme Corp\nJane Doe",
			want: entity.Card{Name: "Acme Corp", Phones: []string{}, Email: "N/A", Other: []string{"Jane Doe"}},
		},
		{
			name: "line containing a phone is not a name",
			text: "Tel: +44 20 7946 0958\nMaria Garcia Lopez",
			want: entity.Card{
				Name:   "Maria Garcia Lopez",
				Phones: []string{"+44 20 7946 0958"},
				Email:  "N/A",
				Other:  []string{"Tel: +44 20 7946 0958"},
			},
		},
		{
			name: "multiple emails and phones",
			text: "Dr. Ana Silva\n555-123-4567\nANA@Example.ORG\n555 987 6543\nana.silva@mail.co\nwww.example.org",
			want: entity.Card{
				Name:   "Dr. Ana Silva",
				Phones: []string{"555-123-4567", "555 987 6543"},
				Email:  "ANA@Example.ORG",
				Other:  []string{"www.example.org"},
			},
		},
		{
			name: "lines are trimmed",
			text: "   Bob Stone   \r\n  Stone & Co  ",
			want: entity.Card{Name: "Bob Stone", Phones: []string{}, Email: "N/A", Other: []string{"Stone & Co"}},
		},
	}
	x := NewRegexExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, x.Extract(tt.text))
		})
	}
}

// Adjacent phone lines merge: the pattern allows a newline as a separator.
func TestRegexExtractorAdjacentPhoneLines(t *testing.T) {
	c := NewRegexExtractor().Extract("555-123-4567\n555 987 6543")
	assert.Equal(t, []string{"555-123-4567\n555"}, c.Phones)
}

func TestRegexExtractorIsIdempotent(t *testing.T) {
	x := NewRegexExtractor()
	inputs := []string{
		"",
		"John Smith\nAcme Corp\njohn@acme.com\n+1 415-555-0100",
		"@@@\n12\n+\n((((\n",
		"ÄÖÜ ñ 漢字\n\x00\x01",
	}
	for _, in := range inputs {
		a, err := json.Marshal(x.Extract(in))
		require.NoError(t, err)
		b, err := json.Marshal(x.Extract(in))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}
}

func TestRegexExtractorNeverReturnsNilSequences(t *testing.T) {
	x := NewRegexExtractor()
	for _, in := range []string{"", "x", "a@b.co", "+1 415 555 0100"} {
		c := x.Extract(in)
		assert.NotNil(t, c.Phones, in)
		assert.NotNil(t, c.Other, in)
		assert.NotEmpty(t, c.Name, in)
		assert.NotEmpty(t, c.Email, in)
		b, err := json.Marshal(c)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "null")
	}
}
