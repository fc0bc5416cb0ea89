package tool

import (
	"context"
	"fmt"
)

type MockSearchRequest struct {
	Topic string `json:"topic" jsonschema_description:"Topic to search for"`
}

// RegisterMockSearch registers the offline "search" tool used by the
// minimal agent and by demos without a search API key.
func RegisterMockSearch(r *Registry) error {
	return RegisterFunc(r, "search", "Search for information about a topic. Args: topic.", func(ctx context.Context, req MockSearchRequest) (string, error) {
		return fmt.Sprintf("Information about %s: [Mock search result]", req.Topic), nil
	})
}
