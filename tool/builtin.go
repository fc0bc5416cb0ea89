package tool

import (
	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/knowledge"
	"github.com/habiliai/spoar/tool/rss"
)

// Dependencies carries the collaborators built-in tools are backed by. A nil
// field makes the matching tool unavailable.
type Dependencies struct {
	Knowledge *knowledge.Base
	WebSearch WebSearcher
	Scraper   Scraper
	Feeds     *rss.Reader
}

// BuiltinNames lists the tools RegisterBuiltin knows. read_feed also
// registers search_feeds.
var BuiltinNames = []string{
	"calculate",
	"search",
	"search_knowledge_base",
	"web_search",
	"scrape_url",
	"read_feed",
}

func RegisterBuiltin(r *Registry, name string, deps Dependencies) error {
	switch name {
	case "calculate":
		return RegisterCalculate(r)
	case "search":
		return RegisterMockSearch(r)
	case "search_knowledge_base":
		if deps.Knowledge == nil {
			return errors.Wrapf(errors.ErrInvalidParams, "tool %s needs a knowledge base", name)
		}
		return RegisterKnowledgeBase(r, deps.Knowledge)
	case "web_search":
		if deps.WebSearch == nil {
			return errors.Wrapf(errors.ErrInvalidParams, "tool %s needs a web search client", name)
		}
		return RegisterWebSearch(r, deps.WebSearch)
	case "scrape_url":
		if deps.Scraper == nil {
			return errors.Wrapf(errors.ErrInvalidParams, "tool %s needs a scraper", name)
		}
		return RegisterScrape(r, deps.Scraper)
	case "read_feed", "search_feeds":
		if r.Has("read_feed") {
			return nil
		}
		reader := deps.Feeds
		if reader == nil {
			reader = rss.NewReader()
		}
		return RegisterFeeds(r, reader)
	default:
		return errors.Wrapf(errors.ErrToolNotFound, "unknown built-in tool %s", name)
	}
}
