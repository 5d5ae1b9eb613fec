// Package analyzer is the entry point of the review engine. It runs the
// lint scanner and the naming checker over one snippet and builds the
// report.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/chris-regnier/quill/internal/cache"
	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/metrics"
	"github.com/chris-regnier/quill/internal/naming"
	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/rules"
	"github.com/chris-regnier/quill/internal/scanner"
)

var tracer = otel.Tracer("github.com/chris-regnier/quill/internal/analyzer")

var builtin = New()

// Review analyzes source with the built-in rules of language. It fails
// with lang.ErrUnsupportedLanguage for an unknown language.
func Review(source string, language lang.Language) (*report.Report, error) {
	return builtin.Review(context.Background(), source, language)
}

// Analyzer reviews snippets with a configurable rule set. It is safe for
// concurrent use.
type Analyzer struct {
	custom     rules.CustomRules
	disabled   map[string]bool
	severities map[string]report.Severity

	cache       *cache.Cache[*report.Report]
	recorder    *metrics.Recorder
	logger      *slog.Logger
	fingerprint string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCustomRules adds custom rules. A custom rule replaces a built-in rule
// with the same id.
func WithCustomRules(custom rules.CustomRules) Option {
	return func(a *Analyzer) {
		a.custom = custom
	}
}

// WithDisabledRules removes rules by id, including naming rules such as
// "naming/variable".
func WithDisabledRules(ids ...string) Option {
	return func(a *Analyzer) {
		for _, id := range ids {
			a.disabled[id] = true
		}
	}
}

// WithSeverityOverrides replaces the severity of issues by rule id.
// Overrides naming an unknown severity are dropped by New.
func WithSeverityOverrides(overrides map[string]report.Severity) Option {
	return func(a *Analyzer) {
		maps.Copy(a.severities, overrides)
	}
}

// WithCache reuses reports for identical (language, rule set, source) inputs.
func WithCache(c *cache.Cache[*report.Report]) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithRecorder records one metrics event per review.
func WithRecorder(r *metrics.Recorder) Option {
	return func(a *Analyzer) {
		a.recorder = r
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		disabled:   make(map[string]bool),
		severities: make(map[string]report.Severity),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	for rule, sev := range a.severities {
		if _, err := report.ParseSeverity(string(sev)); err != nil {
			a.logger.Warn("ignoring severity override", "rule", rule, "err", err)
			delete(a.severities, rule)
		}
	}
	a.fingerprint = a.rulesetFingerprint()
	return a
}

// Review analyzes source written in language. The returned report must
// not be modified; cached reports are shared between callers.
func (a *Analyzer) Review(ctx context.Context, source string, language lang.Language) (*report.Report, error) {
	ctx, span := tracer.Start(ctx, "review")
	defer span.End()
	span.SetAttributes(
		attribute.String("quill.language", string(language)),
		attribute.Int("quill.source.bytes", len(source)),
	)

	var rec *metrics.AnalysisBuilder
	if a.recorder != nil {
		rec = a.recorder.StartAnalysis(string(language)).WithSource(source)
	}

	rep, cacheResult, err := a.review(source, language)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Debug("review failed", "language", language, "err", err)
		if rec != nil {
			rec.WithCacheResult(cacheResult).CompleteWithError(ctx, err)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("quill.code_lines", rep.CodeLines),
		attribute.Int("quill.issues", rep.Summary.Total),
		attribute.String("quill.cache", string(cacheResult)),
	)
	a.logger.Debug("review complete",
		"language", language,
		"lines", rep.CodeLines,
		"issues", rep.Summary.Total,
		"cache", cacheResult)
	if rec != nil {
		rec.WithCacheResult(cacheResult).Complete(ctx, map[string]int{
			string(report.SeverityError):   rep.Summary.Errors,
			string(report.SeverityWarning): rep.Summary.Warnings,
			string(report.SeverityInfo):    rep.Summary.Infos,
			string(report.SeverityHint):    rep.Summary.Hints,
		})
	}
	return rep, nil
}

func (a *Analyzer) review(source string, language lang.Language) (*report.Report, metrics.CacheResult, error) {
	if err := language.Validate(); err != nil {
		return nil, metrics.CacheDisabled, err
	}

	if a.cache == nil {
		rep, err := a.run(source, language)
		return rep, metrics.CacheDisabled, err
	}

	key := cache.ReportKey(string(language), a.fingerprint, source)
	if cached, ok := a.cache.Get(key); ok {
		return cached, metrics.CacheHit, nil
	}
	rep, err := a.run(source, language)
	if err != nil {
		return nil, metrics.CacheMiss, err
	}
	a.cache.Set(key, rep)
	return rep, metrics.CacheMiss, nil
}

func (a *Analyzer) run(source string, language lang.Language) (*report.Report, error) {
	table, err := a.Table(language)
	if err != nil {
		return nil, err
	}

	lint, err := scanner.Scan(source, table)
	if err != nil {
		return nil, fmt.Errorf("scanning %s source: %w", language, err)
	}
	names, err := naming.Check(source, language)
	if err != nil {
		return nil, fmt.Errorf("checking %s names: %w", language, err)
	}

	names = slices.DeleteFunc(names, func(i report.Issue) bool { return a.disabled[i.Rule] })
	a.applySeverities(lint)
	a.applySeverities(names)

	return report.Build(lint, names, language, source), nil
}

func (a *Analyzer) applySeverities(issues []report.Issue) {
	if len(a.severities) == 0 {
		return
	}
	for i := range issues {
		if sev, ok := a.severities[issues[i].Rule]; ok {
			issues[i].Severity = sev
		}
	}
}

// Table returns the effective rule table for language: built-in rules with
// custom rules merged in and disabled rules removed.
func (a *Analyzer) Table(language lang.Language) (rules.Table, error) {
	table, err := rules.For(language)
	if err != nil {
		return rules.Table{}, err
	}
	return table.With(a.custom.For(language)).Without(a.disabled), nil
}
