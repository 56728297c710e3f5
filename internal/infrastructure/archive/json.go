package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/storefront/backend/internal/domain/transfer"
)

// DecodeJSON parses a {"<collection>": [ ... ]} document. Numbers are kept as
// json.Number so integer ids survive unchanged.
func DecodeJSON(r io.Reader) (transfer.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, transfer.NewGenericError(fmt.Sprintf("archive is not a valid JSON object: %v", err))
	}

	dataset := make(transfer.Dataset, len(raw))
	for name, body := range raw {
		inner := json.NewDecoder(bytes.NewReader(body))
		inner.UseNumber()
		var rows []any
		if err := inner.Decode(&rows); err != nil {
			return nil, transfer.NewGenericError(fmt.Sprintf("%q is not a list of records", name))
		}
		if rows == nil {
			rows = []any{}
		}
		dataset[name] = rows
	}
	return dataset, nil
}

// EncodeJSON writes the collections in the given order as one compact JSON
// object. Record keys are sorted and there is no trailing newline.
func EncodeJSON(w io.Writer, order []transfer.DataType, data map[transfer.DataType][]transfer.Record) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCompact(&buf, string(t)); err != nil {
			return err
		}
		buf.WriteByte(':')

		records := data[t]
		if records == nil {
			records = []transfer.Record{}
		}
		if err := writeCompact(&buf, records); err != nil {
			return fmt.Errorf("encode %s: %w", t, err)
		}
	}
	buf.WriteByte('}')

	_, err := w.Write(buf.Bytes())
	return err
}

func writeCompact(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
	return nil
}
