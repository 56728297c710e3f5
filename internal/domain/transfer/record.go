package transfer

import (
	"fmt"
)

// Record is one row of a collection in transit form: field name to an
// untyped scalar, or a nested slice/map for embedded data.
type Record map[string]any

// Dataset is a decoded archive keyed by collection name. Elements stay
// untyped until the collection they belong to has been validated.
type Dataset map[string][]any

// Names returns the collection names present in the dataset.
func (d Dataset) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	return names
}

// Lookup returns the raw rows stored under t, accepting either spelling of the name.
func (d Dataset) Lookup(t DataType) []any {
	if rows, ok := d[string(t)]; ok {
		return rows
	}
	return d[enumName(t)]
}

// AsRecords converts raw archive rows into Records. A row that is not an
// object yields a ParseError.
func AsRecords(collection DataType, rows []any) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		switch v := row.(type) {
		case Record:
			records = append(records, v)
		case map[string]any:
			records = append(records, Record(v))
		default:
			return nil, NewParseError(collection, i, fmt.Errorf("expected object, got %T", row))
		}
	}
	return records, nil
}

// IDMap translates archive-local ids of one collection into ids assigned by the store.
type IDMap map[uint]uint

// IDMaps accumulates the IDMap of every collection imported so far.
// It lives for one import call only.
type IDMaps map[DataType]IDMap

// Resolve translates oldID of collection t.
func (m IDMaps) Resolve(t DataType, oldID uint) (uint, bool) {
	ids, ok := m[t]
	if !ok {
		return 0, false
	}
	newID, ok := ids[oldID]
	return newID, ok
}

// ResolveOptional translates a nullable reference. A nil reference stays nil;
// a reference that cannot be resolved becomes nil and ok is false.
func (m IDMaps) ResolveOptional(t DataType, oldID *uint) (newID *uint, ok bool) {
	if oldID == nil {
		return nil, true
	}
	id, found := m.Resolve(t, *oldID)
	if !found {
		return nil, false
	}
	return &id, true
}

// MustResolve translates oldID or returns an error naming the dangling reference.
func (m IDMaps) MustResolve(t DataType, oldID uint) (uint, error) {
	id, ok := m.Resolve(t, oldID)
	if !ok {
		return 0, fmt.Errorf("unknown %s id %d", t, oldID)
	}
	return id, nil
}
