package tool

import "strings"

// kbArticle is one knowledge base entry.
type kbArticle struct {
	ID       string
	Title    string
	Keywords []string
	Steps    []string
}

// KnowledgeBaseTool is a simulated runbook search over a small built-in
// article set.
type KnowledgeBaseTool struct {
	Base
	articles []kbArticle
}

// NewKnowledgeBaseTool constructs the simulated knowledge base.
func NewKnowledgeBaseTool() *KnowledgeBaseTool {
	return &KnowledgeBaseTool{
		Base: Base{
			BaseID:          "knowledge-base",
			BaseType:        TypeKnowledgeBase,
			BaseName:        "Knowledge Base",
			BaseDescription: "Searches runbooks and past incident resolutions",
			BaseParameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "Search query"},
				},
				"required": []string{"query"},
			},
		},
		articles: []kbArticle{
			{
				ID:       "KB-1001",
				Title:    "Recovering from database connection pool exhaustion",
				Keywords: []string{"database", "connection", "pool", "timeout"},
				Steps: []string{
					"Increase the connection pool ceiling on the affected service",
					"Recycle leaked connections by restarting the worker fleet",
					"Enable slow-query logging to find the blocking statements",
				},
			},
			{
				ID:       "KB-1002",
				Title:    "Draining a node with critical disk usage",
				Keywords: []string{"disk", "storage", "full", "aggregator"},
				Steps: []string{
					"Rotate and compress logs older than 24h",
					"Move cold archives to object storage",
				},
			},
			{
				ID:       "KB-1003",
				Title:    "Mitigating elevated API error rates",
				Keywords: []string{"api", "5xx", "error", "gateway"},
				Steps: []string{
					"Roll back the most recent gateway deployment",
					"Shed non-critical traffic at the edge",
				},
			},
		},
	}
}

// Execute searches article titles and keywords for query terms.
func (t *KnowledgeBaseTool) Execute(params map[string]any) (Result, error) {
	if err := t.Validate(params); err != nil {
		return Result{}, err
	}
	query, _ := params["query"].(string)

	terms := strings.Fields(strings.ToLower(query))
	var matches []any
	for _, a := range t.articles {
		if matchesArticle(a, terms) {
			matches = append(matches, map[string]any{
				"article_id": a.ID,
				"title":      a.Title,
				"steps":      append([]string(nil), a.Steps...),
			})
		}
	}

	return Success(map[string]any{"query": query, "articles": matches}), nil
}

func matchesArticle(a kbArticle, terms []string) bool {
	haystack := strings.ToLower(a.Title + " " + strings.Join(a.Keywords, " "))
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
