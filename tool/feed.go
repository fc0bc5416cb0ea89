package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/habiliai/spoar/tool/rss"
)

type (
	ReadFeedRequest struct {
		URL   string `json:"url" jsonschema_description:"RSS or Atom feed URL"`
		Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum number of items, 0 for all"`
	}

	SearchFeedsRequest struct {
		URLs     []string `json:"urls" jsonschema_description:"Feed URLs to search"`
		Query    string   `json:"query" jsonschema_description:"Text to look for in titles and descriptions"`
		MaxItems int      `json:"max_items,omitempty" jsonschema_description:"Maximum number of items, 0 for all"`
	}
)

func formatFeedItems(items []rss.Item) string {
	if len(items) == 0 {
		return "No feed items found."
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s - %s", item.Title, item.Link))
	}
	return strings.Join(lines, "\n")
}

func RegisterFeeds(r *Registry, reader *rss.Reader) error {
	if err := RegisterFunc(r,
		"read_feed",
		"Read the latest items of an RSS/Atom feed. Args: url, limit.",
		func(ctx context.Context, req ReadFeedRequest) (string, error) {
			items, err := reader.ReadFeed(ctx, req.URL)
			if err != nil {
				return "", err
			}
			if req.Limit > 0 && len(items) > req.Limit {
				items = items[:req.Limit]
			}
			return formatFeedItems(items), nil
		},
	); err != nil {
		return err
	}

	return RegisterFunc(r,
		"search_feeds",
		"Search several RSS/Atom feeds for matching items. Args: urls, query, max_items.",
		func(ctx context.Context, req SearchFeedsRequest) (string, error) {
			feeds := reader.ReadMultipleFeeds(ctx, req.URLs)

			var found []rss.Item
			for _, u := range req.URLs {
				found = append(found, rss.Search(feeds[u], req.Query)...)
			}
			if req.MaxItems > 0 && len(found) > req.MaxItems {
				found = found[:req.MaxItems]
			}
			return formatFeedItems(found), nil
		},
	)
}
