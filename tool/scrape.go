package tool

import (
	"context"
	"net/url"

	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/internal/stringutils"
	firecrawl "github.com/mendableai/firecrawl-go"
)

const maxScrapeChars = 4000

type (
	// Scraper is the subset of the Firecrawl client the scrape tool needs.
	Scraper interface {
		ScrapeURL(url string, params *firecrawl.ScrapeParams) (*firecrawl.FirecrawlDocument, error)
	}

	ScrapeRequest struct {
		URL string `json:"url" jsonschema_description:"Absolute http(s) URL of the page to read"`
	}
)

func NewFirecrawlScraper(apiKey, apiURL string) (Scraper, error) {
	app, err := firecrawl.NewFirecrawlApp(apiKey, apiURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create firecrawl client")
	}
	return app, nil
}

func RegisterScrape(r *Registry, scraper Scraper) error {
	return RegisterFunc(r,
		"scrape_url",
		"Read a web page as markdown. Args: url.",
		func(ctx context.Context, req ScrapeRequest) (string, error) {
			u, err := url.Parse(req.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return "", errors.Wrapf(errors.ErrInvalidParams, "invalid url %q", req.URL)
			}

			doc, err := scraper.ScrapeURL(req.URL, &firecrawl.ScrapeParams{
				Formats: []string{"markdown"},
			})
			if err != nil {
				return "", errors.Wrapf(err, "failed to scrape %s", req.URL)
			}
			if doc == nil || doc.Markdown == "" {
				return "", errors.Errorf("no content retrieved from %s", req.URL)
			}

			return stringutils.Ellipsize(doc.Markdown, maxScrapeChars), nil
		},
	)
}
