package extract

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/llm/anthropic"
	"github.com/joseph-ayodele/cardscan/internal/llm/gemini"
	"github.com/joseph-ayodele/cardscan/internal/llm/openai"
	"github.com/joseph-ayodele/cardscan/internal/llm/providers"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

const sampleText = "John Smith\nAcme Corp\njohn@acme.com\n+1 415-555-0100"

// fakeVendor answers every provider's endpoint with the same completion.
type fakeVendor struct {
	completion string
	status     int
	hits       atomic.Int32
	lastBody   atomic.Value
}

func (f *fakeVendor) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		b, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(b))
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		c, _ := json.Marshal(f.completion)
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":`+string(c)+`}}]}`)
		case strings.HasSuffix(r.URL.Path, "/messages"):
			_, _ = io.WriteString(w, `{"content":[{"type":"text","text":`+string(c)+`}]}`)
		case strings.HasSuffix(r.URL.Path, ":generateContent"):
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":`+string(c)+`}]}}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestAI(t *testing.T, v *fakeVendor) *AIExtractor {
	t.Helper()
	srv := httptest.NewServer(v.handler(t))
	t.Cleanup(srv.Close)
	reg := providers.NewRegistry(providers.Config{
		OpenAI:    openai.Config{BaseURL: srv.URL + "/v1"},
		Anthropic: anthropic.Config{BaseURL: srv.URL + "/v1"},
		Gemini:    gemini.Config{BaseURL: srv.URL + "/v1beta"},
	})
	return NewAIExtractor(reg, srv.Client(), AIConfig{LenientOptional: true}, nil)
}

func TestAIExtractorProviders(t *testing.T) {
	v := &fakeVendor{completion: "```json\n{\"name\":\"John Smith\",\"phones\":[\"+1 415-555-0100\"],\"email\":\"john@acme.com\",\"other\":[\"Acme Corp\",\"CEO\"]}\n```"}
	ai := newTestAI(t, v)
	want := &entity.Card{
		Name:   "John Smith",
		Phones: []string{"+1 415-555-0100"},
		Email:  "john@acme.com",
		Other:  []string{"Acme Corp", "CEO"},
	}
	for _, p := range constants.Providers() {
		t.Run(string(p), func(t *testing.T) {
			card, err := ai.Extract(context.Background(), sampleText, session.Credential{Provider: p, Key: "sk-whatever"})
			require.NoError(t, err)
			assert.Equal(t, want, card)
			assert.Contains(t, v.lastBody.Load().(string), "John Smith\\nAcme Corp")
		})
	}
}

func TestAIExtractorFailsSoft(t *testing.T) {
	cred := session.Credential{Provider: constants.OpenAI, Key: "sk-x"}
	tests := []struct {
		name   string
		vendor *fakeVendor
	}{
		{"server error", &fakeVendor{status: http.StatusInternalServerError}},
		{"unauthorized", &fakeVendor{status: http.StatusUnauthorized}},
		{"prose completion", &fakeVendor{completion: "Sorry, I cannot read this card."}},
		{"wrong shape", &fakeVendor{completion: `{"name":42}`}},
		{"array", &fakeVendor{completion: `["John"]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := newTestAI(t, tt.vendor).Extract(context.Background(), sampleText, cred)
			assert.Nil(t, card)
			assert.Error(t, err)
		})
	}
}

func TestAIExtractorNoKey(t *testing.T) {
	v := &fakeVendor{completion: "{}"}
	card, err := newTestAI(t, v).Extract(context.Background(), sampleText, session.Credential{Provider: constants.OpenAI})
	assert.Nil(t, card)
	assert.Error(t, err)
	assert.Equal(t, int32(0), v.hits.Load())
}

func TestDecodeCard(t *testing.T) {
	card, err := DecodeCard(`{"name":"A"}`, false, nil)
	require.NoError(t, err)
	assert.Equal(t, &entity.Card{Name: "A", Phones: []string{}, Other: []string{}}, card)

	_, err = DecodeCard(`{"name":"A","phones":"555 0100"}`, false, nil)
	require.Error(t, err)

	card, err = DecodeCard(`{"name":"A","phones":"555 0100"}`, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"555 0100"}, card.Phones)

	_, err = DecodeCard("not json at all", true, nil)
	require.Error(t, err)
}
