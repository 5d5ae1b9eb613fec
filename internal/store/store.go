// Package store keeps the history of saved reviews and their gate verdicts.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/chris-regnier/quill/internal/report"
)

// ErrNotFound is returned when no review has the requested id.
var ErrNotFound = errors.New("review not found")

// Verdict is the gate decision for a review.
type Verdict struct {
	Decision       string         `json:"decision"`
	Reason         string         `json:"reason"`
	RelevantIssues []report.Issue `json:"relevant_issues,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Record is one saved review of a single source.
type Record struct {
	ID        string         `json:"id"`
	Path      string         `json:"path,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Report    *report.Report `json:"report"`
}

type Store interface {
	// WriteReport saves rec and returns its id. ID and CreatedAt are
	// assigned when empty.
	WriteReport(ctx context.Context, rec *Record) (string, error)
	WriteVerdict(ctx context.Context, id string, verdict *Verdict) error
	ReadReport(ctx context.Context, id string) (*Record, error)
	ReadVerdict(ctx context.Context, id string) (*Verdict, error)
	// List returns review ids, newest first.
	List(ctx context.Context) ([]string, error)
	Close() error
}
