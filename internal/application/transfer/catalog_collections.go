package transferapp

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/transfer"
)

type productRecord struct {
	ID          uint            `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	Visible     bool            `json:"visible"`
	Created     time.Time       `json:"created"`
}

// ProductsCollection transfers the product catalog.
type ProductsCollection struct {
	repo catalog.ProductRepository
}

// Export implements transfer.Exporter
func (c *ProductsCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, p := range all {
		out = append(out, transfer.Record{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"price":       money(p.Price),
			"stock":       p.Stock,
			"visible":     p.Visible,
			"created":     timestamp(p.CreatedAt),
		})
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *ProductsCollection) Import(ctx context.Context, records []transfer.Record, _ transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[productRecord](transfer.Products, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		product, err := catalog.NewProduct(row.Name, row.Description, row.Price, row.Stock, row.Visible)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Products, i, err)
		}
		product.CreatedAt = row.Created
		if err := c.repo.Create(ctx, product); err != nil {
			return nil, fmt.Errorf("create product %q: %w", product.Name, err)
		}
		ids[row.ID] = product.ID
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *ProductsCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}

type productPhotoRecord struct {
	ID        uint   `json:"id" validate:"required"`
	ProductID uint   `json:"productId" validate:"required"`
	Path      string `json:"path" validate:"required,max=255"`
	MimeType  string `json:"mimeType" validate:"required"`
}

// ProductPhotosCollection transfers product photo metadata. The binaries
// themselves travel through the archive codec.
type ProductPhotosCollection struct {
	repo catalog.ProductPhotoRepository
}

// Export implements transfer.Exporter
func (c *ProductPhotosCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, p := range all {
		out = append(out, transfer.Record{
			"id":        p.ID,
			"productId": p.ProductID,
			"path":      p.Path,
			"mimeType":  p.MimeType,
		})
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *ProductPhotosCollection) Import(ctx context.Context, records []transfer.Record, idMaps transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[productPhotoRecord](transfer.ProductPhotos, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		productID, err := idMaps.MustResolve(transfer.Products, row.ProductID)
		if err != nil {
			return nil, transfer.NewParseError(transfer.ProductPhotos, i, err)
		}
		photo, err := catalog.NewProductPhoto(productID, row.Path, row.MimeType)
		if err != nil {
			return nil, transfer.NewParseError(transfer.ProductPhotos, i, err)
		}
		if err := c.repo.Create(ctx, photo); err != nil {
			return nil, fmt.Errorf("create product photo %q: %w", photo.Path, err)
		}
		ids[row.ID] = photo.ID
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *ProductPhotosCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}

type categoryRecord struct {
	ID               uint   `json:"id" validate:"required"`
	Name             string `json:"name" validate:"required,max=100"`
	Description      string `json:"description"`
	Slug             string `json:"slug" validate:"max=120"`
	ParentCategoryID *uint  `json:"parentCategoryId"`
	Products         []uint `json:"products"`
}

// CategoriesCollection transfers the category tree. Parents are linked in a
// second pass so a child may appear before its parent in the archive.
type CategoriesCollection struct {
	repo catalog.CategoryRepository
}

// Export implements transfer.Exporter
func (c *CategoriesCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, cat := range all {
		var parent any
		if cat.ParentCategoryID != nil {
			parent = *cat.ParentCategoryID
		}
		out = append(out, transfer.Record{
			"id":               cat.ID,
			"name":             cat.Name,
			"description":      cat.Description,
			"slug":             cat.Slug,
			"parentCategoryId": parent,
			"products":         idList(cat.ProductIDs),
		})
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *CategoriesCollection) Import(ctx context.Context, records []transfer.Record, idMaps transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[categoryRecord](transfer.Categories, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		productIDs, err := resolveAll(idMaps, transfer.Products, row.Products)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Categories, i, err)
		}
		category, err := catalog.NewCategory(row.Name, row.Description, row.Slug, productIDs)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Categories, i, err)
		}
		if err := c.repo.Create(ctx, category); err != nil {
			return nil, fmt.Errorf("create category %q: %w", category.Name, err)
		}
		ids[row.ID] = category.ID
	}

	for i, row := range rows {
		if row.ParentCategoryID == nil {
			continue
		}
		parentID, ok := ids[*row.ParentCategoryID]
		if !ok {
			return nil, transfer.NewParseError(transfer.Categories, i,
				fmt.Errorf("unknown parent category id %d", *row.ParentCategoryID))
		}
		if err := c.repo.SetParent(ctx, ids[row.ID], &parentID); err != nil {
			return nil, fmt.Errorf("link category %d to parent: %w", row.ID, err)
		}
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *CategoriesCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}

type attributeTypeRecord struct {
	ID        uint   `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required,max=100"`
	ValueType string `json:"valueType" validate:"required,oneof=string number boolean"`
}

// AttributeTypesCollection transfers product attribute declarations.
type AttributeTypesCollection struct {
	repo catalog.AttributeTypeRepository
}

// Export implements transfer.Exporter
func (c *AttributeTypesCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, a := range all {
		out = append(out, transfer.Record{
			"id":        a.ID,
			"name":      a.Name,
			"valueType": string(a.ValueType),
		})
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *AttributeTypesCollection) Import(ctx context.Context, records []transfer.Record, _ transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[attributeTypeRecord](transfer.AttributeTypes, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		attr, err := catalog.NewAttributeType(row.Name, catalog.AttributeValueType(row.ValueType))
		if err != nil {
			return nil, transfer.NewParseError(transfer.AttributeTypes, i, err)
		}
		if err := c.repo.Create(ctx, attr); err != nil {
			return nil, fmt.Errorf("create attribute type %q: %w", attr.Name, err)
		}
		ids[row.ID] = attr.ID
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *AttributeTypesCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}
