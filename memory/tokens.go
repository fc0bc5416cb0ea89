package memory

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// text-embedding-3-* accept at most 8191 input tokens.
const maxEmbeddingTokens = 8191

var cl100k = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	return tiktoken.GetEncoding("cl100k_base")
})

// truncateTokens cuts text to at most limit cl100k tokens. Short inputs and
// environments where the encoding is unavailable are returned as is.
func truncateTokens(text string, limit int) string {
	// a token is at least one byte
	if limit <= 0 || len(text) <= limit {
		return text
	}

	enc, err := cl100k()
	if err != nil {
		return text
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= limit {
		return text
	}
	return enc.Decode(tokens[:limit])
}
