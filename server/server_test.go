package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/mailscope/pkg/domain"
	"github.com/umputun/mailscope/pkg/pipeline"
	"github.com/umputun/mailscope/pkg/repository"
	"github.com/umputun/mailscope/pkg/scheduler"
	"github.com/umputun/mailscope/server/mocks"
)

var created = time.Date(2025, 10, 31, 9, 0, 0, 0, time.UTC)

func testDocs() map[string]domain.Document {
	return map[string]domain.Document{
		"p1": {ID: "p1", Title: "Reuters Daily", SenderTag: "Reuters", Summary: domain.SplitSummary(2),
			Handler: "newsbrief_english", CreatedAt: created},
		"p1_story_0": {ID: "p1_story_0", ParentID: "p1", Title: "Fed holds", SenderTag: "Reuters - NewsBrief",
			Summary: "Rule: NewsBrief\n\n<b>Fed</b> holds<script>alert(1)</script>", Handler: "newsbrief_english",
			Actors: []string{"Fed"}, Category: "NEWS_BRIEF", RelevanceScore: 8, Link: "https://www.reuters.com/fed",
			MatchConfidence: 0.8, Ordinal: 1, CreatedAt: created},
		"a1": {ID: "a1", Title: "Chartbook", SenderTag: "Adam Tooze", Summary: "Rule: Gold Standard Enhanced\n\ntext",
			Handler: "gold_standard_enhanced", Category: "THEMATIC_ANALYSIS", RelevanceScore: 9, CreatedAt: created},
	}
}

func testDatabase() *mocks.DatabaseMock {
	docs := testDocs()
	return &mocks.DatabaseMock{
		LookupFunc: func(ctx context.Context, id string) (*domain.Document, error) {
			if id == "broken" {
				return nil, errors.New("db is down")
			}
			d, ok := docs[id]
			if !ok {
				return nil, fmt.Errorf("lookup %s: %w", id, repository.ErrNotFound)
			}
			return &d, nil
		},
		ScanFunc: func(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
			if filter.ParentID == "p1" {
				return []domain.Document{docs["p1_story_0"]}, nil
			}
			if filter.ParentID != "" {
				return []domain.Document{}, nil
			}
			return []domain.Document{docs["a1"], docs["p1"]}, nil
		},
		StatsFunc: func(ctx context.Context) (repository.Stats, error) {
			return repository.Stats{Total: 3, Parents: 2, Stories: 1, Split: 1}, nil
		},
	}
}

func testScheduler() *mocks.SchedulerMock {
	return &mocks.SchedulerMock{
		EnrichNowFunc: func(ctx context.Context, id string) (pipeline.RunStats, error) {
			if id == "a1" {
				return pipeline.RunStats{Processed: 1}, nil
			}
			return pipeline.RunStats{}, errors.New("model unavailable")
		},
		StatusFunc: func() scheduler.Status { return scheduler.Status{Runs: 4} },
	}
}

func testServer(t *testing.T, database Database, sched Scheduler) *Server {
	t.Helper()
	cfg := &mocks.ConfigProviderMock{GetServerConfigFunc: func() (string, time.Duration) { return ":0", time.Second }}
	return New(cfg, database, sched, "test", false)
}

func doRequest(t *testing.T, srv *Server, method, target string) (int, map[string]any, []map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	var obj map[string]any
	var list []map[string]any
	if len(body) > 0 && body[0] == '[' {
		require.NoError(t, json.Unmarshal(body, &list))
	} else if len(body) > 0 && body[0] == '{' {
		require.NoError(t, json.Unmarshal(body, &obj))
	}
	return rec.Code, obj, list
}

func TestServer_Status(t *testing.T) {
	srv := testServer(t, testDatabase(), testScheduler())
	code, obj, _ := doRequest(t, srv, "GET", "/api/v1/status")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", obj["status"])
	assert.Equal(t, "test", obj["version"])
	docs := obj["documents"].(map[string]any)
	assert.InDelta(t, 3, docs["total"], 0.001)
	assert.InDelta(t, 4, obj["scheduler"].(map[string]any)["runs"], 0.001)

	t.Run("stats failure", func(t *testing.T) {
		database := testDatabase()
		database.StatsFunc = func(ctx context.Context) (repository.Stats, error) {
			return repository.Stats{}, errors.New("locked")
		}
		code, obj, _ := doRequest(t, testServer(t, database, testScheduler()), "GET", "/api/v1/status")
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "locked", obj["error"])
	})
}

func TestServer_Ping(t *testing.T) {
	srv := testServer(t, testDatabase(), testScheduler())
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.Equal(t, "mailscope", rec.Header().Get("App-Name"))
}

func TestServer_ListDocuments(t *testing.T) {
	database := testDatabase()
	srv := testServer(t, database, testScheduler())

	code, _, list := doRequest(t, srv, "GET", "/api/v1/documents?tag=Reuters&min_score=7.5&limit=1000&unenriched=true&parents=1")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, list, 2)
	assert.Equal(t, "a1", list[0]["id"])
	assert.Nil(t, list[0]["link"], "empty link rendered as null")
	assert.Equal(t, []any{}, list[0]["actors"])
	assert.Equal(t, true, list[1]["split"])

	require.Len(t, database.ScanCalls(), 1)
	assert.Equal(t, domain.DocumentFilter{SenderTag: "Reuters", MinScore: 7.5, Limit: maxLimit, Unenriched: true,
		ParentsOnly: true}, database.ScanCalls()[0].Filter)

	t.Run("defaults", func(t *testing.T) {
		code, _, _ := doRequest(t, srv, "GET", "/api/v1/documents")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, domain.DocumentFilter{Limit: defaultLimit}, database.ScanCalls()[1].Filter)
	})

	t.Run("bad parameters", func(t *testing.T) {
		for _, q := range []string{"limit=abc", "limit=-1", "min_score=11", "min_score=x", "unenriched=maybe"} {
			code, obj, _ := doRequest(t, srv, "GET", "/api/v1/documents?"+q)
			assert.Equal(t, http.StatusBadRequest, code, q)
			assert.Contains(t, obj["error"], "invalid", q)
		}
	})
}

func TestServer_GetDocument(t *testing.T) {
	srv := testServer(t, testDatabase(), testScheduler())

	code, obj, _ := doRequest(t, srv, "GET", "/api/v1/documents/p1_story_0")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "p1", obj["parent_id"])
	assert.Equal(t, "https://www.reuters.com/fed", obj["link"])
	assert.Equal(t, "Rule: NewsBrief\n\n<b>Fed</b> holds<script>alert(1)</script>", obj["summary"])
	assert.Equal(t, "Rule: NewsBrief\n\n<b>Fed</b> holds", obj["summary_html"])
	assert.Equal(t, "2025-10-31T09:00:00Z", obj["created_at"])
	assert.InDelta(t, 8, obj["relevance_score"], 0.001)

	code, obj, _ = doRequest(t, srv, "GET", "/api/v1/documents/nope")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "document not found", obj["error"])

	code, _, _ = doRequest(t, srv, "GET", "/api/v1/documents/broken")
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestServer_Stories(t *testing.T) {
	srv := testServer(t, testDatabase(), testScheduler())

	code, _, list := doRequest(t, srv, "GET", "/api/v1/documents/p1/stories")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, list, 1)
	assert.Equal(t, "p1_story_0", list[0]["id"])
	assert.InDelta(t, 1, list[0]["ordinal"], 0.001)

	code, _, list = doRequest(t, srv, "GET", "/api/v1/documents/a1/stories")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, list)

	code, _, _ = doRequest(t, srv, "GET", "/api/v1/documents/nope/stories")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_Enrich(t *testing.T) {
	sched := testScheduler()
	srv := testServer(t, testDatabase(), sched)

	code, obj, _ := doRequest(t, srv, "POST", "/api/v1/documents/a1/enrich")
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 1, obj["stats"].(map[string]any)["processed"], 0.001)
	assert.Equal(t, "a1", obj["document"].(map[string]any)["id"])
	require.Len(t, sched.EnrichNowCalls(), 1)

	code, obj, _ = doRequest(t, srv, "POST", "/api/v1/documents/p1_story_0/enrich")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, obj["error"], "is a story of p1")

	code, _, _ = doRequest(t, srv, "POST", "/api/v1/documents/nope/enrich")
	assert.Equal(t, http.StatusNotFound, code)

	code, obj, _ = doRequest(t, srv, "POST", "/api/v1/documents/p1/enrich")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "model unavailable", obj["error"])
	assert.Len(t, sched.EnrichNowCalls(), 2)

	code, _, _ = doRequest(t, srv, "GET", "/api/v1/documents/a1/enrich")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestServer_Run(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	cfg := &mocks.ConfigProviderMock{GetServerConfigFunc: func() (string, time.Duration) {
		return fmt.Sprintf("127.0.0.1:%d", port), 5 * time.Second
	}}
	srv := New(cfg, testDatabase(), testScheduler(), "1.0.0", true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/status", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:gosec // test url
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
