package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rsrini-dev/vectorrank/internal/search/executor"
)

type fakeExecutor struct {
	result    *executor.Result
	err       error
	lastQuery string
	lastLimit int
}

func (f *fakeExecutor) Execute(ctx context.Context, rawQuery string, limit int) (*executor.Result, error) {
	f.lastQuery = rawQuery
	f.lastLimit = limit
	return f.result, f.err
}

func newTestHandler(exec QueryExecutor) *Handler {
	return New(exec, nil, nil, nil, 10, 100)
}

func doSearch(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func TestSearchMissingQuery(t *testing.T) {
	h := newTestHandler(&fakeExecutor{})

	rec := doSearch(t, h, "/api/v1/search")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message in the body")
	}
}

func TestSearchInvalidLimit(t *testing.T) {
	h := newTestHandler(&fakeExecutor{})

	for _, limit := range []string{"abc", "0", "-5"} {
		rec := doSearch(t, h, "/api/v1/search?q=cat&limit="+limit)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestSearchLimitClampedToMax(t *testing.T) {
	fake := &fakeExecutor{result: &executor.Result{Query: "cat", Outcome: executor.OutcomeRanked}}
	h := newTestHandler(fake)

	rec := doSearch(t, h, "/api/v1/search?q=cat&limit=500")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fake.lastLimit != 100 {
		t.Errorf("executor limit = %d, want clamped 100", fake.lastLimit)
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	fake := &fakeExecutor{result: &executor.Result{Query: "cat", Outcome: executor.OutcomeRanked}}
	h := newTestHandler(fake)

	doSearch(t, h, "/api/v1/search?q=cat")
	if fake.lastLimit != 10 {
		t.Errorf("executor limit = %d, want default 10", fake.lastLimit)
	}
	if fake.lastQuery != "cat" {
		t.Errorf("executor query = %q, want cat", fake.lastQuery)
	}
}

func TestSearchRankedResponse(t *testing.T) {
	fake := &fakeExecutor{result: &executor.Result{
		Query:   "cat dog",
		Outcome: executor.OutcomeRanked,
		Results: []executor.ScoredDoc{
			{Document: "doc3", Score: 0.82},
		},
		TotalHits: 1,
	}}
	h := newTestHandler(fake)

	rec := doSearch(t, h, "/api/v1/search?q=cat+dog")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body executor.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Outcome != executor.OutcomeRanked || len(body.Results) != 1 {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Results[0].Document != "doc3" {
		t.Errorf("top document = %q, want doc3", body.Results[0].Document)
	}
}

func TestSearchEmptyOutcomesAreOK(t *testing.T) {
	for _, outcome := range []executor.Outcome{executor.OutcomeNoQueryTerms, executor.OutcomeNoMatch} {
		fake := &fakeExecutor{result: &executor.Result{Query: "x", Outcome: outcome}}
		h := newTestHandler(fake)

		rec := doSearch(t, h, "/api/v1/search?q=x")
		if rec.Code != http.StatusOK {
			t.Errorf("outcome %s: status = %d, want 200", outcome, rec.Code)
		}
		var body executor.Result
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if body.Outcome != outcome {
			t.Errorf("body outcome = %s, want %s", body.Outcome, outcome)
		}
	}
}

func TestSearchExecutorError(t *testing.T) {
	h := newTestHandler(&fakeExecutor{err: errors.New("boom")})

	rec := doSearch(t, h, "/api/v1/search?q=cat")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	h := newTestHandler(&fakeExecutor{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
	rec := httptest.NewRecorder()
	h.CacheStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "disabled" {
		t.Errorf("status = %q, want disabled", body["status"])
	}
}

func TestCacheInvalidateDisabled(t *testing.T) {
	h := newTestHandler(&fakeExecutor{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil)
	rec := httptest.NewRecorder()
	h.CacheInvalidate(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
