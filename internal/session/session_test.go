package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/cardscan/constants"
)

func TestStore(t *testing.T) {
	s := New()

	c := s.Get(DefaultID)
	assert.Equal(t, constants.OpenAI, c.Provider)
	assert.False(t, c.HasKey())

	s.SetProvider(DefaultID, constants.Gemini)
	s.SetKey(DefaultID, "  AIzaKey  ")
	c = s.Get(DefaultID)
	assert.Equal(t, constants.Gemini, c.Provider)
	assert.Equal(t, "AIzaKey", c.Key)
	assert.True(t, c.HasKey())

	s.ClearKey(DefaultID)
	c = s.Get(DefaultID)
	assert.Equal(t, constants.Gemini, c.Provider)
	assert.False(t, c.HasKey())

	s.End(DefaultID)
	assert.Equal(t, Credential{Provider: constants.OpenAI}, s.Get(DefaultID))
	assert.Equal(t, 0, s.Len())
}

func TestStoreIsolatesSessions(t *testing.T) {
	s := New()
	s.SetKey("a", "sk-a")
	s.SetKey("b", "sk-b")
	assert.Equal(t, "sk-a", s.Get("a").Key)
	assert.Equal(t, "sk-b", s.Get("b").Key)
	s.End("a")
	assert.Empty(t, s.Get("a").Key)
	assert.Equal(t, "sk-b", s.Get("b").Key)
}

func TestStoreConcurrent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			s.SetKey(id, "k")
			_ = s.Get(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, s.Len())
}
