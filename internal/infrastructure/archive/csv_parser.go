package archive

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads one collection file. Besides the parsed values it keeps the
// raw text so it can tell which cells of the first data row were quote-wrapped.
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	content    []byte
	headers    []string
	quoted     []bool
	currentRow int
	reader     *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// NewCSVParser buffers r, strips a UTF-8 BOM and checks the encoding.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
	}
	for _, opt := range opts {
		opt(parser)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}

	parser.content = content
	parser.reader = csv.NewReader(bytes.NewReader(content))
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.FieldsPerRecord = -1
	return parser, nil
}

// IsEmpty reports whether the file holds nothing but whitespace.
func (p *CSVParser) IsEmpty() bool {
	return len(bytes.TrimSpace(p.content)) == 0
}

// ParseHeader reads the header row and inspects the raw first data row.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		p.headers[i] = strings.TrimSpace(h)
	}
	p.currentRow = 1

	_, rest := nextRawRecord(p.content, p.delimiter)
	firstRow, _ := nextRawRecord(rest, p.delimiter)
	p.quoted = make([]bool, len(p.headers))
	for i, cell := range firstRow {
		if i < len(p.quoted) {
			p.quoted[i] = isQuoteWrapped(cell)
		}
	}
	return nil
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// QuotedColumns reports, per header, whether the first data row's cell was
// fully quote-wrapped in the raw file.
func (p *CSVParser) QuotedColumns() []bool {
	return p.quoted
}

// Row is one parsed data row
type Row struct {
	LineNumber int
	Fields     []string
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Fields {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row from the CSV
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	return &Row{LineNumber: p.currentRow, Fields: record}, nil
}

// nextRawRecord returns the raw cells of the first record in data, honouring
// quotes so that delimiters and newlines inside quoted cells do not split it,
// along with the remaining bytes.
func nextRawRecord(data []byte, delimiter rune) ([]string, []byte) {
	if len(data) == 0 {
		return nil, nil
	}
	var (
		cells    []string
		cell     strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cell.WriteRune(r)
		case !inQuotes && r == delimiter:
			cells = append(cells, cell.String())
			cell.Reset()
		case !inQuotes && (r == '\n' || r == '\r'):
			cells = append(cells, cell.String())
			rest := data[i+size:]
			if r == '\r' && len(rest) > 0 && rest[0] == '\n' {
				rest = rest[1:]
			}
			return cells, rest
		default:
			cell.WriteRune(r)
		}
		i += size
	}
	return append(cells, cell.String()), nil
}

func isQuoteWrapped(cell string) bool {
	return len(cell) >= 2 && cell[0] == '"' && cell[len(cell)-1] == '"'
}
