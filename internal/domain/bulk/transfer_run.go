// Package bulk records the history of import and export runs.
package bulk

import (
	"fmt"
	"sort"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/transfer"
)

// RunKind tells imports and exports apart
type RunKind string

const (
	RunKindImport RunKind = "import"
	RunKindExport RunKind = "export"
)

// RunStatus is the outcome of a run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	// RunStatusPartial means some collections failed while others were applied.
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// IsTerminal returns true if this is a terminal state
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusPartial || s == RunStatusFailed
}

// TransferRun is one import or export invocation.
type TransferRun struct {
	ID          uint       `json:"id"`
	Kind        RunKind    `json:"kind"`
	FileName    string     `json:"file_name"`
	Format      string     `json:"format"`
	Clear       bool       `json:"clear"`
	NoImport    bool       `json:"no_import"`
	Collections []string   `json:"collections"`
	Added       int        `json:"added"`
	Deleted     int64      `json:"deleted"`
	Errors      []string   `json:"errors"`
	Status      RunStatus  `json:"status"`
	RequestedBy string     `json:"requested_by,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// NewImportRun starts tracking an import of fileName
func NewImportRun(fileName, format string, clear, noImport bool, requestedBy string) *TransferRun {
	return &TransferRun{
		Kind:        RunKindImport,
		FileName:    fileName,
		Format:      format,
		Clear:       clear,
		NoImport:    noImport,
		Collections: []string{},
		Errors:      []string{},
		Status:      RunStatusRunning,
		RequestedBy: requestedBy,
		StartedAt:   time.Now(),
	}
}

// NewExportRun starts tracking an export of the given collections
func NewExportRun(format string, collections []string, requestedBy string) *TransferRun {
	return &TransferRun{
		Kind:        RunKindExport,
		Format:      format,
		Collections: append([]string{}, collections...),
		Errors:      []string{},
		Status:      RunStatusRunning,
		RequestedBy: requestedBy,
		StartedAt:   time.Now(),
	}
}

// CompleteImport copies the totals of report onto the run.
func (r *TransferRun) CompleteImport(report *transfer.Report) error {
	if err := r.finish(); err != nil {
		return err
	}

	seen := map[string]bool{}
	for name := range report.Added {
		seen[name] = true
	}
	for name := range report.Deleted {
		seen[name] = true
	}
	r.Collections = r.Collections[:0]
	for name := range seen {
		r.Collections = append(r.Collections, name)
	}
	sort.Strings(r.Collections)

	r.Added = report.TotalAdded()
	r.Deleted = report.TotalDeleted()
	r.Errors = append([]string{}, report.Errors...)
	r.Status = RunStatusCompleted
	if len(r.Errors) > 0 {
		r.Status = RunStatusPartial
	}
	return nil
}

// CompleteExport marks an export as delivered under fileName
func (r *TransferRun) CompleteExport(fileName string) error {
	if err := r.finish(); err != nil {
		return err
	}
	r.FileName = fileName
	r.Status = RunStatusCompleted
	return nil
}

// Fail marks the run as failed with cause
func (r *TransferRun) Fail(cause error) error {
	if err := r.finish(); err != nil {
		return err
	}
	r.Status = RunStatusFailed
	if cause != nil {
		r.Errors = append(r.Errors, cause.Error())
	}
	return nil
}

func (r *TransferRun) finish() error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finish run in state: %s", r.Status))
	}
	now := time.Now()
	r.FinishedAt = &now
	return nil
}

// Duration returns how long the run took, or has taken so far
func (r *TransferRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
