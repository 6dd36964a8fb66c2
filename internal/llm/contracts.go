package llm

import (
	"context"
	"net/http"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Provider is one LLM vendor's request/response contract. Implementations
// build a single non-streaming completion request and pull the completion
// text back out of the vendor's response envelope.
type Provider interface {
	Name() constants.Provider
	BuildRequest(ctx context.Context, prompt, secret string) (*http.Request, error)
	ParseCompletion(body []byte) (string, error)
}
