package catalog

import (
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// ProductPhoto is an image of a product. Path is the extension-less key of
// the image in photo storage.
type ProductPhoto struct {
	ID        uint
	ProductID uint
	Path      string
	MimeType  string
}

// photoExtensions maps supported image types to the extension used in archives.
var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// NewProductPhoto creates a product photo
func NewProductPhoto(productID uint, path, mimeType string) (*ProductPhoto, error) {
	if productID == 0 {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Photo must belong to a product")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, shared.NewDomainError("INVALID_PATH", "Photo path cannot be empty")
	}
	if _, ok := photoExtensions[mimeType]; !ok {
		return nil, shared.NewDomainError("INVALID_MIME_TYPE", fmt.Sprintf("Unsupported photo type: %s", mimeType))
	}
	return &ProductPhoto{ProductID: productID, Path: path, MimeType: mimeType}, nil
}

// PhotoExtension returns the file extension for mimeType, or "" when unsupported.
func PhotoExtension(mimeType string) string {
	return photoExtensions[mimeType]
}

// ProductPhotoRepository persists product photos
type ProductPhotoRepository interface {
	shared.BulkRepository[ProductPhoto]
}
