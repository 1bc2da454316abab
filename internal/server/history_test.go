package server

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/usagedeck/usagedeck/internal/db"
	"github.com/usagedeck/usagedeck/internal/snapshot"
)

func newHistoryServer(t *testing.T, recorded int) *Server {
	t.Helper()
	cfg := testConfig(t)
	database, err := db.Open(filepath.Join(cfg.DataDir, "usagedeck.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctx := context.Background()
	for i := range recorded {
		snap := &snapshot.Snapshot{
			FetchedAt: time.Date(2024, 6, 1, i, 0, 0, 0, time.UTC),
			DateRange: snapshot.DateRange{Start: "2024-05-01", End: "2024-05-31"},
		}
		if err := database.RecordSnapshot(ctx, snap); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	return New(cfg, snapshot.NewStore(nil), nil, database)
}

func TestHistoryEndpoint(t *testing.T) {
	s := newHistoryServer(t, 3)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[[]db.SnapshotRecord](t, rec)
	if len(got) != 3 {
		t.Fatalf("records = %d, want 3", len(got))
	}
	if !got[0].FetchedAt.After(got[1].FetchedAt) {
		t.Error("history not newest first")
	}
}

func TestHistoryEndpointLimit(t *testing.T) {
	s := newHistoryServer(t, 5)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/history?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody[[]db.SnapshotRecord](t, rec)
	if len(got) != 2 {
		t.Errorf("records = %d, want 2", len(got))
	}
}

func TestHistoryEndpointInvalidLimit(t *testing.T) {
	s := newHistoryServer(t, 0)

	for _, target := range []string{
		"/api/v1/history?limit=0",
		"/api/v1/history?limit=501",
		"/api/v1/history?limit=abc",
	} {
		rec := doRequest(t, s, http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestHistoryEndpointEmpty(t *testing.T) {
	s := newHistoryServer(t, 0)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// An empty history serializes as [], not null.
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty array", body)
	}
}
