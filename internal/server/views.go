package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/usagedeck/usagedeck/internal/aggregate"
	"github.com/usagedeck/usagedeck/internal/db"
	"github.com/usagedeck/usagedeck/internal/leaderboard"
	"github.com/usagedeck/usagedeck/internal/snapshot"
)

// currentSnapshot returns the active snapshot, writing a 503
// when none is loaded yet (no fetch has succeeded).
func (s *Server) currentSnapshot(
	w http.ResponseWriter,
) (*snapshot.Snapshot, bool) {
	snap := s.store.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable,
			"no snapshot loaded: run a fetch first")
		return nil, false
	}
	return snap, true
}

// parseWindow extracts and validates the range query param.
func parseWindow(
	w http.ResponseWriter, r *http.Request,
) (aggregate.Window, bool) {
	win, err := aggregate.ParseWindow(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return win, true
}

// handleSnapshot serves the whole snapshot with the daily
// series sliced to the requested window. User, tool, and
// project aggregates stay whole-window; only the time series
// narrows.
func (s *Server) handleSnapshot(
	w http.ResponseWriter, r *http.Request,
) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	win, ok := parseWindow(w, r)
	if !ok {
		return
	}

	sliced := *snap
	sliced.Daily = aggregate.SliceWindow(snap.Daily, win, s.now())
	writeJSON(w, http.StatusOK, &sliced)
}

func (s *Server) handleDaily(
	w http.ResponseWriter, r *http.Request,
) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	win, ok := parseWindow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK,
		aggregate.SliceWindow(snap.Daily, win, s.now()))
}

func (s *Server) handleUsers(
	w http.ResponseWriter, r *http.Request,
) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}

	users := make([]aggregate.UserAggregate, len(snap.Users))
	copy(users, snap.Users)

	switch sortKey := r.URL.Query().Get("sort"); sortKey {
	case "", "sessions":
		aggregate.SortBySessions(users)
	case "linesAdded":
		aggregate.SortByLinesAdded(users)
	default:
		writeError(w, http.StatusBadRequest,
			"invalid sort: must be sessions or linesAdded")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleTools(
	w http.ResponseWriter, _ *http.Request,
) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Tools)
}

func (s *Server) handleProjects(
	w http.ResponseWriter, _ *http.Request,
) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Projects)
}

func (s *Server) handleLeaderboard(
	w http.ResponseWriter, _ *http.Request,
) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK,
		leaderboard.Build(snap.Users, snap.UserDaily))
}

// handleRefresh runs a full fetch cycle and atomically swaps
// the active snapshot, persisting the artifact and history.
func (s *Server) handleRefresh(
	w http.ResponseWriter, r *http.Request,
) {
	if s.engine == nil {
		writeError(w, http.StatusServiceUnavailable,
			"refresh unavailable: no API key configured")
		return
	}

	snap, err := s.engine.Run(r.Context())
	if err != nil {
		if handleContextError(err) {
			return
		}
		log.Printf("refresh error: %v", err)
		writeError(w, http.StatusBadGateway,
			"fetch failed: "+err.Error())
		return
	}

	if err := snapshot.Write(s.cfg.SnapshotPath, snap); err != nil {
		log.Printf("writing snapshot: %v", err)
	}
	if s.db != nil {
		if err := s.db.RecordSnapshot(r.Context(), snap); err != nil {
			log.Printf("recording snapshot: %v", err)
		}
	}
	s.store.Swap(snap)

	writeJSON(w, http.StatusOK, map[string]any{
		"fetchedAt": snap.FetchedAt,
		"dateRange": snap.DateRange,
		"days":      len(snap.Daily),
		"users":     len(snap.Users),
	})
}

func (s *Server) handleHistory(
	w http.ResponseWriter, r *http.Request,
) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable,
			"history unavailable: no database configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest,
				"limit must be 1-500")
			return
		}
		limit = n
	}

	records, err := s.db.History(r.Context(), limit)
	if err != nil {
		if handleContextError(err) {
			return
		}
		log.Printf("history error: %v", err)
		writeError(w, http.StatusInternalServerError,
			"internal server error")
		return
	}
	if records == nil {
		records = []db.SnapshotRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
