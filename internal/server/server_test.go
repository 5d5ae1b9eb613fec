package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-regnier/quill/internal/analyzer"
	"github.com/chris-regnier/quill/internal/metrics"
	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/store"
)

const jsSource = "var total = 0;\nlet result = eval(\"2 + 2\");\n"

func newTestServer(t *testing.T) (*httptest.Server, *metrics.Collector) {
	t.Helper()
	collector := metrics.NewCollector()
	a := analyzer.New(analyzer.WithRecorder(metrics.NewRecorder(collector)))
	s := New(Config{
		Analyzer:  a,
		Collector: collector,
		Store:     store.NewFileStore(filepath.Join(t.TempDir(), "reports")),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Version:   "test",
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, collector
}

func postReview(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/review", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
	body := decode[healthResponse](t, resp)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "test", body.Version)
}

func TestLanguages(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/languages")
	require.NoError(t, err)
	defer resp.Body.Close()

	langs := decode[[]languageInfo](t, resp)
	require.Len(t, langs, 5)
	assert.Equal(t, "javascript", string(langs[0].ID))
	for _, l := range langs {
		assert.NotEmpty(t, l.Label)
		assert.NotEmpty(t, l.Extension)
	}
}

func TestRules(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("known language", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/rules?language=go")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		infos := decode[[]analyzer.RuleInfo](t, resp)
		require.NotEmpty(t, infos)

		var naming int
		for _, info := range infos {
			if info.Origin == analyzer.OriginNaming {
				naming++
			}
		}
		assert.Positive(t, naming)
	})

	t.Run("unsupported language", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/rules?language=cobol")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decode[errorResponse](t, resp).Error, "unsupported language")
	})
}

func TestReview(t *testing.T) {
	ts, collector := newTestServer(t)

	body, _ := json.Marshal(ReviewRequest{Code: jsSource, Language: "js"})
	resp := postReview(t, ts, string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[ReviewResponse](t, resp)
	require.NotNil(t, out.Report)
	assert.Empty(t, out.ID)
	assert.Equal(t, "javascript", string(out.Language))
	assert.Equal(t, 3, out.CodeLines)
	assert.Equal(t, len(out.Issues), out.Summary.Total)

	rules := make(map[string]report.Severity)
	for _, issue := range out.Issues {
		rules[issue.Rule] = issue.Severity
	}
	assert.Equal(t, report.SeverityError, rules["no-eval"])
	assert.Contains(t, rules, "no-var")

	assert.EqualValues(t, 1, collector.GetStats().TotalAnalyses)
}

func TestReview_BadRequests(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"code": `, "decoding request"},
		{"unsupported language", `{"code": "x", "language": "cobol"}`, "unsupported language"},
		{"missing language", `{"code": "x"}`, "unsupported language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postReview(t, ts, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decode[errorResponse](t, resp).Error, tt.want)
		})
	}
}

func TestReview_BodyTooLarge(t *testing.T) {
	s := New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	code := strings.Repeat("x", maxBodyBytes+1)
	body, _ := json.Marshal(ReviewRequest{Code: code, Language: "go"})
	req := httptest.NewRequest(http.MethodPost, "/v1/review", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReview_SaveAndFetch(t *testing.T) {
	ts, _ := newTestServer(t)

	body, _ := json.Marshal(ReviewRequest{Code: jsSource, Language: "javascript", Path: "web/app.js", Save: true})
	resp := postReview(t, ts, string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[ReviewResponse](t, resp)
	require.NotEmpty(t, saved.ID)

	list, err := http.Get(ts.URL + "/v1/reviews")
	require.NoError(t, err)
	defer list.Body.Close()
	ids := decode[map[string][]string](t, list)["ids"]
	assert.Equal(t, []string{saved.ID}, ids)

	got, err := http.Get(ts.URL + "/v1/reviews/" + saved.ID)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)

	rec := decode[storedReview](t, got)
	require.NotNil(t, rec.Record)
	assert.Equal(t, saved.ID, rec.ID)
	assert.Equal(t, "web/app.js", rec.Path)
	assert.Equal(t, saved.Summary, rec.Report.Summary)
	assert.Nil(t, rec.Verdict)
}

func TestReviews_NotFoundAndLimit(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/reviews/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	parent, err := http.Get(ts.URL + "/v1/reviews/%2e%2e")
	require.NoError(t, err)
	defer parent.Body.Close()
	assert.Equal(t, http.StatusNotFound, parent.StatusCode)

	empty, err := http.Get(ts.URL + "/v1/reviews?limit=3")
	require.NoError(t, err)
	defer empty.Body.Close()
	assert.Equal(t, []string{}, decode[map[string][]string](t, empty)["ids"])

	bad, err := http.Get(ts.URL + "/v1/reviews?limit=-1")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestReview_SaveWithoutStore(t *testing.T) {
	s := New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := postReview(t, ts, `{"code": "x = 1\n", "language": "python", "save": true}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	stats, err := http.Get(ts.URL + "/v1/stats")
	require.NoError(t, err)
	defer stats.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, stats.StatusCode)
}

func TestStats(t *testing.T) {
	ts, _ := newTestServer(t)

	postReview(t, ts, `{"code": "print(1)\n", "language": "python"}`)
	postReview(t, ts, `{"code": "print(1)\n", "language": "python"}`)

	resp, err := http.Get(ts.URL + "/v1/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	stats := decode[metrics.AggregateStats](t, resp)
	assert.EqualValues(t, 2, stats.TotalAnalyses)
	require.Contains(t, stats.ByLanguage, "python")
	assert.EqualValues(t, 2, stats.ByLanguage["python"].Count)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	s := New(Config{Logger: slog.New(slog.NewTextHandler(&buf, nil))})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "path=/healthz")
	assert.Contains(t, buf.String(), "status=200")
}
