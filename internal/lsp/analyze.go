package lsp

import (
	"context"

	"github.com/chris-regnier/quill/internal/analyzer"
	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

// AnalyzeFunc reviews one document. A nil report with a nil error means
// the document is not reviewable.
type AnalyzeFunc func(ctx context.Context, path, content string) (*report.Report, error)

// AnalyzerFunc adapts a to an AnalyzeFunc, choosing the language from the
// path's extension and falling back to the client's language id.
func AnalyzerFunc(a *analyzer.Analyzer) AnalyzeFunc {
	return func(ctx context.Context, path, content string) (*report.Report, error) {
		language, ok := languageOf(ctx, path)
		if !ok {
			return nil, nil
		}
		return a.Review(ctx, content, language)
	}
}

type languageIDKey struct{}

// withLanguageID records the languageId sent with didOpen.
func withLanguageID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, languageIDKey{}, id)
}

func languageOf(ctx context.Context, path string) (lang.Language, bool) {
	if l, ok := lang.Detect(path); ok {
		return l, true
	}
	if id, ok := ctx.Value(languageIDKey{}).(string); ok {
		if l, err := lang.Parse(id); err == nil {
			return l, true
		}
	}
	return "", false
}
