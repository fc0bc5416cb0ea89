package tool

import (
	"context"

	"github.com/habiliai/spoar/knowledge"
)

type KnowledgeSearchRequest struct {
	Query string `json:"query" jsonschema_description:"Keywords to look up in the internal knowledge base"`
}

func RegisterKnowledgeBase(r *Registry, base *knowledge.Base) error {
	return RegisterFunc(r,
		"search_knowledge_base",
		"Search internal company documents (policies, how-to guides). Use this for 'how to', 'what is', or policy questions. Args: query.",
		func(ctx context.Context, req KnowledgeSearchRequest) (string, error) {
			return base.Search(req.Query), nil
		},
	)
}
