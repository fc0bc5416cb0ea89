// Package rss reads RSS and Atom feeds for the feed tools.
package rss

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/habiliai/spoar/errors"
	"github.com/mmcdole/gofeed"
)

const defaultTimeout = 30 * time.Second

type (
	Reader struct {
		parser  *gofeed.Parser
		timeout time.Duration
		allowed []string
	}

	Item struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Link        string    `json:"link"`
		Published   time.Time `json:"published"`
		Author      string    `json:"author,omitempty"`
		Categories  []string  `json:"categories,omitempty"`
	}

	Option func(*Reader)
)

// WithAllowedPrefixes restricts the feeds that may be read to URLs starting
// with one of prefixes. No prefixes means any URL.
func WithAllowedPrefixes(prefixes ...string) Option {
	return func(r *Reader) {
		r.allowed = append(r.allowed, prefixes...)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *Reader) {
		r.timeout = d
	}
}

func NewReader(opts ...Option) *Reader {
	r := &Reader{
		parser:  gofeed.NewParser(),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reader) Allowed(feedURL string) bool {
	if len(r.allowed) == 0 {
		return true
	}
	for _, prefix := range r.allowed {
		if strings.HasPrefix(feedURL, prefix) {
			return true
		}
	}
	return false
}

func (r *Reader) ReadFeed(ctx context.Context, feedURL string) ([]Item, error) {
	if !r.Allowed(feedURL) {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "feed %s is not in the allow list", feedURL)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse feed")
	}

	items := make([]Item, 0, len(feed.Items))
	for _, fi := range feed.Items {
		item := Item{
			Title:       fi.Title,
			Description: fi.Description,
			Link:        fi.Link,
			Categories:  fi.Categories,
		}
		if fi.PublishedParsed != nil {
			item.Published = *fi.PublishedParsed
		}
		if fi.Author != nil {
			item.Author = fi.Author.Name
		}
		items = append(items, item)
	}

	return items, nil
}

// ReadMultipleFeeds reads feeds concurrently. Feeds that fail are left out.
func (r *Reader) ReadMultipleFeeds(ctx context.Context, feedURLs []string) map[string][]Item {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string][]Item, len(feedURLs))
	)
	for _, feedURL := range feedURLs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := r.ReadFeed(ctx, feedURL)
			if err != nil {
				return
			}
			mu.Lock()
			results[feedURL] = items
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}

// Search returns the items whose title or description contains query,
// ignoring case.
func Search(items []Item, query string) []Item {
	query = strings.ToLower(query)

	var found []Item
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), query) ||
			strings.Contains(strings.ToLower(item.Description), query) {
			found = append(found, item)
		}
	}
	return found
}
