package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var storeTracer = otel.Tracer("github.com/chris-regnier/quill/internal/store")

const (
	reportFile  = "report.json"
	verdictFile = "verdict.json"
)

// FileStore keeps one directory per review holding report.json and
// verdict.json.
type FileStore struct {
	dir string
	now func() time.Time
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// generateID returns a timestamp-prefixed id so that directory names sort
// chronologically.
func (s *FileStore) generateID(t time.Time) string {
	return fmt.Sprintf("%s-%s", t.UTC().Format("2006-01-02T15-04-05Z"), uuid.NewString()[:8])
}

// resultDir maps an id to its directory. Ids that are not a single path
// element cannot name a stored review and are reported as not found.
func (s *FileStore) resultDir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return filepath.Join(s.dir, id), nil
}

func (s *FileStore) WriteReport(ctx context.Context, rec *Record) (string, error) {
	_, span := storeTracer.Start(ctx, "write report")
	defer span.End()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.ID == "" {
		rec.ID = s.generateID(rec.CreatedAt)
	}

	dir, err := s.resultDir(rec.ID)
	if err != nil {
		return "", fail(span, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fail(span, err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fail(span, err)
	}
	if err := os.WriteFile(filepath.Join(dir, reportFile), data, 0644); err != nil {
		return "", fail(span, err)
	}

	issueCount := 0
	if rec.Report != nil {
		issueCount = len(rec.Report.Issues)
	}
	span.SetAttributes(
		attribute.String("quill.store.id", rec.ID),
		attribute.Int("quill.store.issue_count", issueCount),
	)
	return rec.ID, nil
}

func (s *FileStore) WriteVerdict(ctx context.Context, id string, verdict *Verdict) error {
	_, span := storeTracer.Start(ctx, "write verdict")
	defer span.End()

	dir, err := s.resultDir(id)
	if err != nil {
		return fail(span, err)
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fail(span, err)
	}
	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return fail(span, err)
	}
	if err := os.WriteFile(filepath.Join(dir, verdictFile), data, 0644); err != nil {
		return fail(span, err)
	}

	span.SetAttributes(
		attribute.String("quill.store.id", id),
		attribute.String("quill.decision", verdict.Decision),
	)
	return nil
}

func (s *FileStore) ReadReport(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := s.readJSON(id, reportFile, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *FileStore) ReadVerdict(ctx context.Context, id string) (*Verdict, error) {
	var v Verdict
	if err := s.readJSON(id, verdictFile, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *FileStore) readJSON(id, name string, v any) error {
	dir, err := s.resultDir(id)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s of %s: %w", name, id, err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
