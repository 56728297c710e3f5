package dto

import (
	"time"

	"github.com/storefront/backend/internal/domain/bulk"
	"github.com/storefront/backend/internal/domain/transfer"
)

// ExportRequest is the body of POST /export
type ExportRequest struct {
	Data   []string `json:"data" binding:"required,min=1,dive,required"`
	Format string   `json:"format" binding:"required"`
}

// ImportForm holds the non-file fields of the import upload
type ImportForm struct {
	Clear    string `form:"clear"`
	NoImport string `form:"noImport"`
}

// HistoryQuery is the query of GET /transfer/history
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// DataTypeResponse describes one registered collection
type DataTypeResponse struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
}

// TransferRunResponse is one entry of the transfer history
type TransferRunResponse struct {
	ID          uint       `json:"id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	FileName    string     `json:"file_name,omitempty"`
	Format      string     `json:"format"`
	Clear       bool       `json:"clear"`
	NoImport    bool       `json:"no_import"`
	Collections []string   `json:"collections"`
	Added       int        `json:"added"`
	Deleted     int64      `json:"deleted"`
	Errors      []string   `json:"errors"`
	RequestedBy string     `json:"requested_by,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	DurationMS  int64      `json:"duration_ms"`
}

// NewDataTypeResponses lists the registry in dependency order
func NewDataTypeResponses(order []transfer.Dependency) []DataTypeResponse {
	out := make([]DataTypeResponse, 0, len(order))
	for _, d := range order {
		deps := make([]string, 0, len(d.DependsOn))
		for _, dep := range d.DependsOn {
			deps = append(deps, dep.String())
		}
		out = append(out, DataTypeResponse{Name: d.Type.String(), Dependencies: deps})
	}
	return out
}

// NewTransferRunResponse converts a domain run
func NewTransferRunResponse(run bulk.TransferRun) TransferRunResponse {
	collections := run.Collections
	if collections == nil {
		collections = []string{}
	}
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	return TransferRunResponse{
		ID:          run.ID,
		Kind:        string(run.Kind),
		Status:      string(run.Status),
		FileName:    run.FileName,
		Format:      run.Format,
		Clear:       run.Clear,
		NoImport:    run.NoImport,
		Collections: collections,
		Added:       run.Added,
		Deleted:     run.Deleted,
		Errors:      errs,
		RequestedBy: run.RequestedBy,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		DurationMS:  run.Duration().Milliseconds(),
	}
}

// NewTransferRunResponses converts a page of runs
func NewTransferRunResponses(runs []bulk.TransferRun) []TransferRunResponse {
	out := make([]TransferRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, NewTransferRunResponse(r))
	}
	return out
}
