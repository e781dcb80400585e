package pipeline

import (
	"context"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/pkg/serper"
)

// Searcher returns organic results for one query in provider order.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
}

// SerperSearcher adapts a serper.Client to Searcher.
type SerperSearcher struct {
	Client serper.Client
}

// Search implements Searcher.
func (s SerperSearcher) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	res, err := s.Client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]model.SearchResult, len(res))
	for i, r := range res {
		out[i] = model.SearchResult{Title: r.Title, Link: r.Link, Snippet: r.Snippet}
	}
	return out, nil
}
