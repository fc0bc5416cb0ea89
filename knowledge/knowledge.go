package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/habiliai/spoar/errors"
	"github.com/mokiat/gog"
	"github.com/samber/lo"
)

const (
	// MaxResults is the number of documents Search returns at most.
	MaxResults = 3

	NoWordsResult = "No relevant documents found in the internal knowledge base."
)

type (
	Document struct {
		Title    string         `json:"title"`
		Content  string         `json:"content"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}

	// Base is a read-only keyword index over a small document set.
	Base struct {
		docs []Document
	}
)

func New(docs ...Document) *Base {
	return &Base{docs: docs}
}

// LoadFile reads a JSON array of objects. Missing files yield an empty base.
func LoadFile(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read knowledge base %s", path)
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "failed to decode knowledge base %s", path)
	}

	return FromMaps(items), nil
}

// FromMaps converts loosely structured items into documents. Items without
// a content field are indexed on their remaining text values.
func FromMaps(items []map[string]any) *Base {
	docs := make([]Document, 0, len(items))
	for _, item := range items {
		title, _ := item["title"].(string)
		if title == "" {
			title, _ = item["name"].(string)
		}
		content, _ := item["content"].(string)
		if content == "" {
			content = ExtractText(lo.OmitByKeys(item, []string{"title", "name"}))
		}
		if title == "" && content == "" {
			continue
		}

		docs = append(docs, Document{
			Title:    title,
			Content:  content,
			Metadata: lo.OmitByKeys(item, []string{"title", "content"}),
		})
	}

	return New(docs...)
}

// ExtractText renders the string values of item as "key: value" pairs in
// key order, preferring the common text fields when any are present.
func ExtractText(item map[string]any) string {
	var parts []string
	for _, field := range []string{"description", "summary", "text"} {
		if str, ok := item[field].(string); ok && str != "" {
			parts = append(parts, str)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	keys := lo.Keys(item)
	sort.Strings(keys)
	for _, key := range keys {
		if str, ok := item[key].(string); ok && str != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", key, str))
		}
	}

	return strings.Join(parts, " ")
}

func (b *Base) Len() int {
	return len(b.docs)
}

func (b *Base) Documents() []Document {
	return append([]Document(nil), b.docs...)
}

// Match returns the documents whose title or content contains any query
// word longer than two characters, in load order.
func (b *Base) Match(query string) []Document {
	words := queryWords(query)
	if len(words) == 0 {
		return nil
	}

	return lo.Filter(b.docs, func(doc Document, _ int) bool {
		title, content := strings.ToLower(doc.Title), strings.ToLower(doc.Content)
		return lo.SomeBy(words, func(w string) bool {
			return strings.Contains(title, w) || strings.Contains(content, w)
		})
	})
}

// Search renders the first MaxResults matches for the agent.
func (b *Base) Search(query string) string {
	if len(queryWords(query)) == 0 {
		return NoWordsResult
	}

	matches := b.Match(query)
	if len(matches) == 0 {
		return fmt.Sprintf("No relevant documents found for query: '%s'. Try simpler or different keywords.", strings.ToLower(query))
	}

	rendered := gog.Map(lo.Slice(matches, 0, MaxResults), func(doc Document) string {
		return fmt.Sprintf("Title: %s\nContent: %s", doc.Title, doc.Content)
	})
	return strings.Join(rendered, "\n\n")
}

func queryWords(query string) []string {
	return lo.Filter(strings.Fields(strings.ToLower(query)), func(w string, _ int) bool {
		return len(w) > 2
	})
}
