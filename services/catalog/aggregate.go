package catalog

import (
	"context"
	"log"

	"github.com/sourcegraph/conc/pool"

	"dramafeed/models"
)

// fetchFunc is the per-provider call the aggregator fans out; list and search
// bind their page/query arguments before dispatch.
type fetchFunc func(ctx context.Context, p Provider) (*PageResult, error)

// aggregate fans out one fetch per provider concurrently and flattens whatever
// succeeded, in provider order. A provider that fails contributes zero items
// and is logged; it never aborts the batch. One provider timing out does not
// cancel the others: each fetch runs on the shared request context but carries
// no cross-provider cancellation.
func aggregate(ctx context.Context, providers []Provider, fetch fetchFunc) ([]models.ContentItem, bool) {
	results := make([]*PageResult, len(providers))

	p := pool.New()
	for i, prov := range providers {
		p.Go(func() {
			res, err := fetch(ctx, prov)
			if err != nil {
				log.Printf("[catalog] source %s failed: %v", prov.Key(), err)
				return
			}
			results[i] = res
		})
	}
	p.Wait()

	var items []models.ContentItem
	hasMore := false
	for _, res := range results {
		if res == nil {
			continue
		}
		items = append(items, res.Items...)
		if res.HasMore {
			hasMore = true
		}
	}
	return items, hasMore
}
