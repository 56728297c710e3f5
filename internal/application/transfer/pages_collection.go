package transferapp

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/transfer"
)

type pageRecord struct {
	ID      uint   `json:"id" validate:"required"`
	Title   string `json:"title" validate:"required,max=200"`
	Slug    string `json:"slug" validate:"max=200"`
	Content string `json:"content"`
}

// PagesCollection transfers static content pages.
type PagesCollection struct {
	repo content.PageRepository
}

// Export implements transfer.Exporter
func (c *PagesCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, p := range all {
		out = append(out, transfer.Record{
			"id":      p.ID,
			"title":   p.Title,
			"slug":    p.Slug,
			"content": p.Content,
		})
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *PagesCollection) Import(ctx context.Context, records []transfer.Record, _ transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[pageRecord](transfer.Pages, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		page, err := content.NewPage(row.Title, row.Slug, row.Content)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Pages, i, err)
		}
		if err := c.repo.Create(ctx, page); err != nil {
			return nil, fmt.Errorf("create page %q: %w", page.Title, err)
		}
		ids[row.ID] = page.ID
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *PagesCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}
