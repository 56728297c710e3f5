package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/storefront/backend/internal/domain/transfer"
)

// DecodeCSV parses one collection file into records keyed by header name.
//
// Column typing follows the first data row: a column whose cell there is
// wrapped in quotes keeps every value as a string; any other column is
// auto-typed (empty to nil, true/false to bool, numerals to json.Number).
func DecodeCSV(r io.Reader) ([]transfer.Record, error) {
	parser, err := NewCSVParser(r)
	if err != nil {
		return nil, err
	}
	if parser.IsEmpty() {
		return []transfer.Record{}, nil
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	headers := parser.Headers()
	quoted := parser.QuotedColumns()
	records := []transfer.Record{}
	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}

		record := make(transfer.Record, len(headers))
		for i, header := range headers {
			value := ""
			if i < len(row.Fields) {
				value = row.Fields[i]
			}
			if quoted[i] {
				record[header] = value
			} else {
				record[header] = inferValue(value)
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func inferValue(raw string) any {
	value := strings.TrimSpace(raw)
	switch value {
	case "":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if isJSONNumber(value) {
		return json.Number(value)
	}
	return raw
}

// isJSONNumber accepts JSON number syntax only, so NaN, Inf, hex floats,
// "+1" and "007" stay strings.
func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

// EncodeCSV writes records as a CSV file. The header is the union of record
// keys with "id" first and the rest sorted. Strings and nested values are
// always quote-wrapped so DecodeCSV types the columns back the same way.
// No records produce an empty file.
func EncodeCSV(w io.Writer, records []transfer.Record) error {
	if len(records) == 0 {
		return nil
	}

	headers := csvHeaders(records)
	bw := bufio.NewWriter(w)
	for i, h := range headers {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteString(quoteIfNeeded(h))
	}
	bw.WriteByte('\n')

	for _, record := range records {
		for i, h := range headers {
			if i > 0 {
				bw.WriteByte(',')
			}
			cell, err := formatCell(record[h])
			if err != nil {
				return fmt.Errorf("field %q: %w", h, err)
			}
			bw.WriteString(cell)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func csvHeaders(records []transfer.Record) []string {
	seen := map[string]bool{}
	for _, record := range records {
		for key := range record {
			seen[key] = true
		}
	}
	headers := make([]string, 0, len(seen))
	for key := range seen {
		if key != "id" {
			headers = append(headers, key)
		}
	}
	sort.Strings(headers)
	if seen["id"] {
		headers = append([]string{"id"}, headers...)
	}
	return headers
}

func formatCell(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return quote(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return fmt.Sprint(v), nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return quote(s), nil
		}
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return quote(string(data)), nil
	}
	return string(data), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
