package transfer

import "context"

// Exporter returns a collection's rows with every reference flattened to a plain id.
type Exporter interface {
	Export(ctx context.Context) ([]Record, error)
}

// Importer persists a collection from an archive and can wipe it beforehand.
type Importer interface {
	// Import persists records one at a time, translating foreign keys through
	// idMaps, and returns the archive id to store id mapping of the new rows.
	Import(ctx context.Context, records []Record, idMaps IDMaps) (IDMap, error)
	// Clear deletes the collection's rows and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
}

// Collection is the full contract one domain module implements.
type Collection interface {
	Exporter
	Importer
}
