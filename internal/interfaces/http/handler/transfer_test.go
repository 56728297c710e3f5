package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	transferapp "github.com/storefront/backend/internal/application/transfer"
	"github.com/storefront/backend/internal/domain/bulk"
	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/storefront/backend/internal/infrastructure/archive"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImporter struct {
	got    transferapp.ImportInput
	body   []byte
	report *transfer.Report
	err    error
}

func (s *stubImporter) Import(_ context.Context, in transferapp.ImportInput) (*transfer.Report, error) {
	s.got = in
	if in.Body != nil {
		s.body, _ = io.ReadAll(in.Body)
	}
	return s.report, s.err
}

type stubExporter struct {
	got    transferapp.ExportInput
	result *transferapp.ExportResult
	err    error
}

func (s *stubExporter) Export(_ context.Context, in transferapp.ExportInput) (*transferapp.ExportResult, error) {
	s.got = in
	return s.result, s.err
}

type stubHistory struct {
	runs      []bulk.TransferRun
	err       error
	requested int
}

func (s *stubHistory) Limit(requested int) int {
	if requested <= 0 {
		return 20
	}
	return requested
}

func (s *stubHistory) Recent(_ context.Context, limit int) ([]bulk.TransferRun, error) {
	s.requested = limit
	return s.runs, s.err
}

func newTransferRouter(h *TransferHandler) *gin.Engine {
	r := gin.New()
	r.POST("/import", h.Import)
	r.POST("/export", h.Export)
	r.GET("/transfer/types", h.Types)
	r.GET("/transfer/history", h.History)
	return r
}

type uploadPart struct {
	fileName    string
	contentType string
	content     []byte
}

func multipartRequest(t *testing.T, file *uploadPart, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+file.fileName+`"`)
		if file.contentType != "" {
			hdr.Set("Content-Type", file.contentType)
		}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTransferHandler_Import(t *testing.T) {
	t.Run("returns the report with 201", func(t *testing.T) {
		report := transfer.NewReport()
		report.RecordDeleted(transfer.Users, 3, nil)
		report.RecordAdded(transfer.Users, transfer.IDMap{1: 10, 2: 11}, nil)
		imp := &stubImporter{report: report}
		r := newTransferRouter(NewTransferHandler(imp, &stubExporter{}, &stubHistory{}, time.Minute))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t,
			&uploadPart{fileName: "export.json", contentType: archive.MIMEJSON, content: []byte(`{"users":[]}`)},
			map[string]string{"clear": "true", "noImport": "false"},
		))

		require.Equal(t, http.StatusCreated, w.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, map[string]any{"users": float64(3)}, got["deleted"])
		assert.Equal(t, map[string]any{"users": float64(2)}, got["added"])
		assert.Equal(t, []any{}, got["errors"])

		assert.True(t, imp.got.Clear)
		assert.False(t, imp.got.NoImport)
		assert.Equal(t, "export.json", imp.got.FileName)
		assert.Equal(t, archive.MIMEJSON, imp.got.MimeType)
		assert.Equal(t, `{"users":[]}`, string(imp.body))
	})

	t.Run("missing file", func(t *testing.T) {
		imp := &stubImporter{}
		r := newTransferRouter(NewTransferHandler(imp, &stubExporter{}, &stubHistory{}, 0))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, nil, map[string]string{"clear": "true"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidationRequired, resp.Error.Code)
		assert.Empty(t, imp.got.FileName)
	})

	t.Run("invalid clear flag", func(t *testing.T) {
		r := newTransferRouter(NewTransferHandler(&stubImporter{}, &stubExporter{}, &stubHistory{}, 0))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t,
			&uploadPart{fileName: "a.json", content: []byte(`{}`)},
			map[string]string{"clear": "maybe"},
		))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidationFormat, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "clear")
	})

	t.Run("generic error aborts with 400", func(t *testing.T) {
		imp := &stubImporter{err: transfer.NewGenericError(`"orders" depends on "users"`)}
		r := newTransferRouter(NewTransferHandler(imp, &stubExporter{}, &stubHistory{}, 0))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t,
			&uploadPart{fileName: "a.json", contentType: archive.MIMEJSON, content: []byte(`{}`)},
			nil,
		))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, `"orders" depends on "users"`, resp.Error.Message)
	})

	t.Run("unexpected error is 500", func(t *testing.T) {
		imp := &stubImporter{err: errors.New("disk on fire")}
		r := newTransferRouter(NewTransferHandler(imp, &stubExporter{}, &stubHistory{}, 0))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t,
			&uploadPart{fileName: "a.json", contentType: archive.MIMEJSON, content: []byte(`{}`)},
			nil,
		))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "disk on fire")
	})
}

func TestArchiveType(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		want        string
	}{
		{"explicit json", "upload", "application/json; charset=utf-8", archive.MIMEJSON},
		{"explicit x-gzip", "upload", archive.MIMEXGzip, archive.MIMEXGzip},
		{"octet stream json", "export.JSON", "application/octet-stream", archive.MIMEJSON},
		{"tar.gz extension", "export-2024.tar.gz", "", archive.MIMEGzip},
		{"tgz extension", "export.tgz", "", archive.MIMEGzip},
		{"unknown", "export.zip", "", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fh := &multipart.FileHeader{Filename: tt.fileName, Header: textproto.MIMEHeader{}}
			if tt.contentType != "" {
				fh.Header.Set("Content-Type", tt.contentType)
			}
			assert.Equal(t, tt.want, archiveType(fh))
		})
	}
}

func TestTransferHandler_Export(t *testing.T) {
	t.Run("sends an attachment", func(t *testing.T) {
		exp := &stubExporter{result: &transferapp.ExportResult{
			ContentType: archive.MIMEGzip,
			FileName:    "export-2024-05-01T10:00:00.000Z.tar.gz",
			Data:        []byte{0x1f, 0x8b},
		}}
		r := newTransferRouter(NewTransferHandler(&stubImporter{}, exp, &stubHistory{}, 0))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"data":["users","orders"],"format":"csv"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, archive.MIMEGzip, w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="export-2024-05-01T10:00:00.000Z.tar.gz"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, []byte{0x1f, 0x8b}, w.Body.Bytes())
		assert.Equal(t, []string{"users", "orders"}, exp.got.Types)
		assert.Equal(t, "csv", exp.got.Format)
	})

	t.Run("unsupported format", func(t *testing.T) {
		exp := &stubExporter{err: transfer.NewGenericError(`"xml" is not supported export format`)}
		r := newTransferRouter(NewTransferHandler(&stubImporter{}, exp, &stubHistory{}, 0))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"data":["users"],"format":"xml"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, `"xml" is not supported export format`, resp.Error.Message)
	})

	t.Run("empty data list", func(t *testing.T) {
		exp := &stubExporter{}
		r := newTransferRouter(NewTransferHandler(&stubImporter{}, exp, &stubHistory{}, 0))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"data":[],"format":"json"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, exp.got.Format)
	})
}

func TestTransferHandler_Types(t *testing.T) {
	r := newTransferRouter(NewTransferHandler(&stubImporter{}, &stubExporter{}, &stubHistory{}, 0))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transfer/types", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []dto.DataTypeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, len(transfer.DependencyOrder()))
	assert.Equal(t, "settings", body.Data[0].Name)
	assert.NotNil(t, body.Data[0].Dependencies)
}

func TestTransferHandler_History(t *testing.T) {
	t.Run("lists runs", func(t *testing.T) {
		started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		hist := &stubHistory{runs: []bulk.TransferRun{
			{ID: 2, Kind: bulk.RunKindExport, Format: "json", Status: bulk.RunStatusCompleted, StartedAt: started},
			{ID: 1, Kind: bulk.RunKindImport, Format: "json", Status: bulk.RunStatusPartial, StartedAt: started},
		}}
		r := newTransferRouter(NewTransferHandler(&stubImporter{}, &stubExporter{}, hist, 0))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transfer/history?limit=5", nil))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 2, resp.Meta.Total)
		assert.Equal(t, 5, resp.Meta.Limit)
		assert.Equal(t, 5, hist.requested)
	})

	t.Run("limit out of range", func(t *testing.T) {
		r := newTransferRouter(NewTransferHandler(&stubImporter{}, &stubExporter{}, &stubHistory{}, 0))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transfer/history?limit=500", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
