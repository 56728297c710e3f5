package archive

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSV(t *testing.T) {
	t.Run("quoted first row cells make string columns", func(t *testing.T) {
		csv := "id,name,zip,active,price\n" +
			"1,\"Mug\",\"01234\",true,9.5\n" +
			"2,\"42\",\"99\",false,\n"
		records, err := DecodeCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, json.Number("1"), records[0]["id"])
		assert.Equal(t, "Mug", records[0]["name"])
		assert.Equal(t, "01234", records[0]["zip"])
		assert.Equal(t, true, records[0]["active"])
		assert.Equal(t, json.Number("9.5"), records[0]["price"])

		assert.Equal(t, "42", records[1]["name"], "string column keeps numerals as text")
		assert.Equal(t, false, records[1]["active"])
		assert.Nil(t, records[1]["price"])
	})

	t.Run("unquoted first row cell auto-types the whole column", func(t *testing.T) {
		csv := "code\n7\n\"8\"\nabc\n"
		records, err := DecodeCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, json.Number("7"), records[0]["code"])
		assert.Equal(t, json.Number("8"), records[1]["code"])
		assert.Equal(t, "abc", records[2]["code"])
	})

	t.Run("quoted cell with delimiter and newline", func(t *testing.T) {
		csv := "id,content\n1,\"a,b\nc\"\n"
		records, err := DecodeCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "a,b\nc", records[0]["content"])
	})

	t.Run("nested json stays a string", func(t *testing.T) {
		csv := "id,items\n1,\"[{\"\"productId\"\":1}]\"\n"
		records, err := DecodeCSV(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, `[{"productId":1}]`, records[0]["items"])
	})

	t.Run("BOM and CRLF", func(t *testing.T) {
		csv := "\xEF\xBB\xBFid,name\r\n1,\"x\"\r\n"
		records, err := DecodeCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "x", records[0]["name"])
	})

	t.Run("empty file", func(t *testing.T) {
		records, err := DecodeCSV(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("header only", func(t *testing.T) {
		records, err := DecodeCSV(strings.NewReader("id,name\n"))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := DecodeCSV(bytes.NewReader([]byte{'i', 'd', '\n', 0xff, 0xfe}))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

func TestEncodeCSV(t *testing.T) {
	t.Run("header order and cell quoting", func(t *testing.T) {
		records := []transfer.Record{
			{"id": json.Number("1"), "name": `Say "hi"`, "visible": true, "parent": nil,
				"items": []any{map[string]any{"productId": 1}}},
			{"id": 2, "name": "", "visible": false, "extra": 1.5},
		}
		var buf bytes.Buffer
		require.NoError(t, EncodeCSV(&buf, records))

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "id,extra,items,name,parent,visible", lines[0])
		assert.Equal(t, `1,,"[{""productId"":1}]","Say ""hi""",,true`, lines[1])
		assert.Equal(t, `2,1.5,,"",,false`, lines[2])
	})

	t.Run("empty collection writes an empty file", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeCSV(&buf, nil))
		assert.Zero(t, buf.Len())
	})

	t.Run("round trip keeps types", func(t *testing.T) {
		in := []transfer.Record{
			{"id": json.Number("3"), "name": "007", "builtin": true, "value": "USD"},
			{"id": json.Number("4"), "name": "tax", "builtin": false, "value": ""},
		}
		var buf bytes.Buffer
		require.NoError(t, EncodeCSV(&buf, in))

		out, err := DecodeCSV(&buf)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestInferValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"42", json.Number("42")},
		{"-3.5", json.Number("-3.5")},
		{"1e3", json.Number("1e3")},
		{"0", json.Number("0")},
		{"true", true},
		{"false", false},
		{"", nil},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"-Infinity", "-Infinity"},
		{"0x1p-2", "0x1p-2"},
		{"+1", "+1"},
		{"007", "007"},
		{"1.", "1."},
		{"-", "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferValue(tt.raw), tt.raw)
	}

	out, err := json.Marshal(transfer.Record{"v": inferValue("NaN")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"NaN"}`, string(out))
}
